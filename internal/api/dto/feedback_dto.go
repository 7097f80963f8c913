package dto

// RatingRequest payload. Range checks are business rules and happen in the service.
type RatingRequest struct {
	Rating *int `json:"rating"`
}

type FeedbackStatsResponse struct {
	ComplaintID string  `json:"complaintId"`
	Avg         float64 `json:"avg"`
	Count       int64   `json:"count"`
	MyRating    *int    `json:"myRating,omitempty"`
}

type MyRatingResponse struct {
	Rating *int `json:"rating"`
}
