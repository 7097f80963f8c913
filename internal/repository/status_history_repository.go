package repository

import (
	"context"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// StatusHistoryRepository appends and reads audit entries. There is no update or delete.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.StatusHistory) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.StatusHistory, error)
}

type statusHistoryRepository struct {
	db DBTX
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(db DBTX) StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.StatusHistory) error {
	const query = `
        INSERT INTO complaint_status_history (complaint_id, from_status, to_status, actor_id, note, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.FromStatus,
		entry.ToStatus,
		entry.ActorID,
		entry.Note,
		entry.CreatedAt,
	).Scan(&entry.ID)
}

func (r *statusHistoryRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.StatusHistory, error) {
	const query = `
        SELECT id, complaint_id, from_status, to_status, actor_id, note, created_at
        FROM complaint_status_history WHERE complaint_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistory
	for rows.Next() {
		var entry domain.StatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.ActorID,
			&entry.Note,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
