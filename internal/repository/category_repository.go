package repository

import (
	"context"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// CategoryRepository reads complaint categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ComplaintCategory, error)
	ListActive(ctx context.Context) ([]domain.ComplaintCategory, error)
}

type categoryRepository struct {
	db DBTX
}

// NewCategoryRepository constructs repository.
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.ComplaintCategory, error) {
	const query = `
        SELECT id, name, description, is_active, default_department_id, created_at, updated_at
        FROM complaint_categories WHERE id=$1`
	var cat domain.ComplaintCategory
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&cat.ID,
		&cat.Name,
		&cat.Description,
		&cat.IsActive,
		&cat.DefaultDepartmentID,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]domain.ComplaintCategory, error) {
	const query = `
        SELECT id, name, description, is_active, default_department_id, created_at, updated_at
        FROM complaint_categories WHERE is_active = TRUE ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintCategory
	for rows.Next() {
		var cat domain.ComplaintCategory
		if err := rows.Scan(
			&cat.ID,
			&cat.Name,
			&cat.Description,
			&cat.IsActive,
			&cat.DefaultDepartmentID,
			&cat.CreatedAt,
			&cat.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}
