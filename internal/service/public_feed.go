package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/repository"
)

const maskPlaceholder = "****"

// MaskTrackingCode keeps the first 3 and last 2 characters of code. Codes of 6
// characters or fewer are fully hidden.
func MaskTrackingCode(code string) string {
	if len(code) <= 6 {
		return maskPlaceholder
	}
	return code[:3] + maskPlaceholder + code[len(code)-2:]
}

// FeedCache stores rendered feed pages in generations. Get reports the generation
// it read; Set writes into that generation so an Invalidate in between discards the
// page instead of publishing it.
type FeedCache interface {
	Get(ctx context.Context, key string, dest any) (version int64, hit bool, err error)
	Set(ctx context.Context, version int64, key string, value any) error
	Invalidate(ctx context.Context) error
}

// PublicFeedItem is a resolved complaint as shown to anonymous visitors. It never
// carries the unmasked tracking code.
type PublicFeedItem struct {
	ID                 string     `json:"id"`
	MaskedTrackingCode string     `json:"maskedTrackingCode"`
	Title              string     `json:"title"`
	CategoryName       string     `json:"categoryName"`
	DepartmentName     string     `json:"departmentName"`
	ResolvedAt         *time.Time `json:"resolvedAt"`
	PublicAnswer       string     `json:"publicAnswer"`
	AvgRating          float64    `json:"avgRating"`
	RatingCount        int64      `json:"ratingCount"`
}

// PublicFeedPage is one page of the public feed.
type PublicFeedPage struct {
	Items []PublicFeedItem `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

// PublicFeedQuery selects a feed page.
type PublicFeedQuery struct {
	CategoryID   string
	DepartmentID string
	Page         int
	Size         int
}

// PublicFeedProjector is the read-only projection of resolved complaints.
type PublicFeedProjector struct {
	complaints  repository.ComplaintRepository
	cache       FeedCache
	logger      *zap.Logger
	metrics     *observability.Metrics
	defaultSize int
	maxSize     int
}

// NewPublicFeedProjector builds the projector. cache may be nil.
func NewPublicFeedProjector(complaints repository.ComplaintRepository, cache FeedCache, defaultSize, maxSize int, logger *zap.Logger, metrics *observability.Metrics) *PublicFeedProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultSize <= 0 {
		defaultSize = 20
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	return &PublicFeedProjector{
		complaints:  complaints,
		cache:       cache,
		logger:      logger,
		metrics:     metrics,
		defaultSize: defaultSize,
		maxSize:     maxSize,
	}
}

// Feed returns resolved complaints ordered by resolution time, newest first.
func (p *PublicFeedProjector) Feed(ctx context.Context, q PublicFeedQuery) (*PublicFeedPage, error) {
	page, size := normalizePaging(q.Page, q.Size, p.defaultSize, p.maxSize)
	key := fmt.Sprintf("page=%d:size=%d:cat=%s:dept=%s", page, size, q.CategoryID, q.DepartmentID)

	var (
		version   int64
		cacheable bool
	)
	if p.cache != nil {
		var cached PublicFeedPage
		v, hit, err := p.cache.Get(ctx, key, &cached)
		if err != nil {
			p.logger.Warn("feed cache read failed", zap.Error(err))
		}
		p.metrics.CacheLookup("feed", hit)
		if hit {
			return &cached, nil
		}
		version, cacheable = v, err == nil
	}

	filter := repository.PublicFeedFilter{Limit: size, Offset: page * size}
	if q.CategoryID != "" {
		if !validID(q.CategoryID) {
			return &PublicFeedPage{Items: []PublicFeedItem{}, Page: page, Size: size}, nil
		}
		filter.CategoryID = &q.CategoryID
	}
	if q.DepartmentID != "" {
		if !validID(q.DepartmentID) {
			return &PublicFeedPage{Items: []PublicFeedItem{}, Page: page, Size: size}, nil
		}
		filter.DepartmentID = &q.DepartmentID
	}

	rows, total, err := p.complaints.ListPublicFeed(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := &PublicFeedPage{Items: project(rows), Total: total, Page: page, Size: size}

	if cacheable {
		if err := p.cache.Set(ctx, version, key, result); err != nil {
			p.logger.Warn("feed cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// Invalidate drops cached feed pages.
func (p *PublicFeedProjector) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Invalidate(ctx)
}

func project(rows []domain.PublicFeedRow) []PublicFeedItem {
	items := make([]PublicFeedItem, 0, len(rows))
	for _, row := range rows {
		if row.Status != domain.ComplaintStatusResolved {
			continue
		}
		items = append(items, PublicFeedItem{
			ID:                 row.ID,
			MaskedTrackingCode: MaskTrackingCode(row.TrackingCode),
			Title:              row.Title,
			CategoryName:       row.CategoryName,
			DepartmentName:     row.DepartmentName,
			ResolvedAt:         row.ResolvedAt,
			PublicAnswer:       deref(row.PublicAnswer),
			AvgRating:          row.Stats.Avg,
			RatingCount:        row.Stats.Count,
		})
	}
	return items
}
