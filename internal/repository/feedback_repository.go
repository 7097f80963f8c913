package repository

import (
	"context"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// FeedbackRepository stores one rating per (complaint, citizen).
type FeedbackRepository interface {
	Upsert(ctx context.Context, fb *domain.Feedback) (created bool, err error)
	Get(ctx context.Context, complaintID, citizenID string) (*domain.Feedback, error)
	Stats(ctx context.Context, complaintID string) (domain.FeedbackStats, error)
}

type feedbackRepository struct {
	db DBTX
}

// NewFeedbackRepository builds repository.
func NewFeedbackRepository(db DBTX) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Upsert relies on the unique (complaint_id, citizen_id) constraint so concurrent
// submissions converge on one row.
func (r *feedbackRepository) Upsert(ctx context.Context, fb *domain.Feedback) (bool, error) {
	const query = `
        INSERT INTO feedback (complaint_id, citizen_id, rating, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$4)
        ON CONFLICT (complaint_id, citizen_id)
        DO UPDATE SET rating = EXCLUDED.rating, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`
	var created bool
	err := r.db.QueryRow(ctx, query,
		fb.ComplaintID,
		fb.CitizenID,
		fb.Rating,
		fb.UpdatedAt,
	).Scan(&fb.ID, &fb.CreatedAt, &fb.UpdatedAt, &created)
	return created, err
}

func (r *feedbackRepository) Get(ctx context.Context, complaintID, citizenID string) (*domain.Feedback, error) {
	const query = `
        SELECT id, complaint_id, citizen_id, rating, created_at, updated_at
        FROM feedback WHERE complaint_id=$1 AND citizen_id=$2`
	var fb domain.Feedback
	if err := r.db.QueryRow(ctx, query, complaintID, citizenID).Scan(
		&fb.ID,
		&fb.ComplaintID,
		&fb.CitizenID,
		&fb.Rating,
		&fb.CreatedAt,
		&fb.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *feedbackRepository) Stats(ctx context.Context, complaintID string) (domain.FeedbackStats, error) {
	const query = `
        SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
        FROM feedback WHERE complaint_id=$1`
	var stats domain.FeedbackStats
	err := r.db.QueryRow(ctx, query, complaintID).Scan(&stats.Avg, &stats.Count)
	return stats, err
}
