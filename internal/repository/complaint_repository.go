package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// ComplaintFilter captures complaint search parameters. An empty DepartmentIDs slice
// means no department restriction.
type ComplaintFilter struct {
	OwnerID       *string
	DepartmentIDs []string
	Statuses      []domain.ComplaintStatus
	SearchTerm    string
	Limit         int
	Offset        int
}

// PublicFeedFilter narrows the public feed. Status is always RESOLVED.
type PublicFeedFilter struct {
	CategoryID   *string
	DepartmentID *string
	Limit        int
	Offset       int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	UpdateState(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error)
	GetByTrackingCode(ctx context.Context, code string) (*domain.Complaint, error)
	ExistsByTrackingCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, int, error)
	ListPublicFeed(ctx context.Context, filter PublicFeedFilter) ([]domain.PublicFeedRow, int, error)
}

type complaintRepository struct {
	db DBTX
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(db DBTX) ComplaintRepository {
	return &complaintRepository{db: db}
}

const complaintSelect = `
        SELECT c.id, c.tracking_code, c.owner_id, c.category_id, c.department_id, c.title, c.description,
               c.status, c.lat, c.lon, c.public_answer, c.created_at, c.updated_at, c.resolved_at, c.closed_at,
               cat.name, COALESCE(d.name, ''), u.email
        FROM complaints c
        JOIN complaint_categories cat ON cat.id = c.category_id
        JOIN users u ON u.id = c.owner_id
        LEFT JOIN departments d ON d.id = c.department_id`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (tracking_code, owner_id, category_id, department_id, title, description,
                                status, lat, lon, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		complaint.TrackingCode,
		complaint.OwnerID,
		complaint.CategoryID,
		complaint.DepartmentID,
		complaint.Title,
		complaint.Description,
		complaint.Status,
		complaint.Lat,
		complaint.Lon,
		complaint.CreatedAt,
		complaint.UpdatedAt,
	).Scan(&complaint.ID)
}

// UpdateState writes the lifecycle-managed columns only. Resolved and closed
// timestamps are kept once set.
func (r *complaintRepository) UpdateState(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET status=$1, public_answer=$2, updated_at=$3,
            resolved_at=COALESCE(resolved_at, $4), closed_at=COALESCE(closed_at, $5)
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		complaint.Status,
		complaint.PublicAnswer,
		complaint.UpdatedAt,
		complaint.ResolvedAt,
		complaint.ClosedAt,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	return r.fetchSingle(ctx, complaintSelect+` WHERE c.id=$1`, id)
}

// GetByIDForUpdate locks the complaint row until the surrounding transaction ends.
func (r *complaintRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	return r.fetchSingle(ctx, complaintSelect+` WHERE c.id=$1 FOR UPDATE OF c`, id)
}

func (r *complaintRepository) GetByTrackingCode(ctx context.Context, code string) (*domain.Complaint, error) {
	return r.fetchSingle(ctx, complaintSelect+` WHERE c.tracking_code=$1`, code)
}

func (r *complaintRepository) ExistsByTrackingCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM complaints WHERE tracking_code=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *complaintRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Complaint, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result, err := scanComplaints(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &result[0], nil
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, int, error) {
	var where whereBuilder
	if filter.OwnerID != nil {
		where.add("c.owner_id = %s", *filter.OwnerID)
	}
	if len(filter.DepartmentIDs) > 0 {
		where.add("c.department_id = ANY(%s::uuid[])", filter.DepartmentIDs)
	}
	statuses := make([]string, len(filter.Statuses))
	for i, s := range filter.Statuses {
		statuses[i] = string(s)
	}
	where.addIn("c.status", statuses)
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		where.add("(LOWER(c.tracking_code) LIKE %s OR LOWER(c.title) LIKE %s)", "%"+strings.ToLower(term)+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM complaints c WHERE ` + where.sql()
	if err := r.db.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC, c.id LIMIT %d OFFSET %d`,
		complaintSelect, where.sql(), limit, offset)

	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	result, err := scanComplaints(rows)
	return result, total, err
}

func (r *complaintRepository) ListPublicFeed(ctx context.Context, filter PublicFeedFilter) ([]domain.PublicFeedRow, int, error) {
	var where whereBuilder
	where.add("c.status = %s", string(domain.ComplaintStatusResolved))
	if filter.CategoryID != nil {
		where.add("c.category_id = %s", *filter.CategoryID)
	}
	if filter.DepartmentID != nil {
		where.add("c.department_id = %s", *filter.DepartmentID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM complaints c WHERE `+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
        SELECT c.id, c.tracking_code, c.title, cat.name, COALESCE(d.name, ''), c.status, c.resolved_at, c.public_answer,
               COALESCE(AVG(f.rating), 0)::float8, COUNT(f.id)
        FROM complaints c
        JOIN complaint_categories cat ON cat.id = c.category_id
        LEFT JOIN departments d ON d.id = c.department_id
        LEFT JOIN feedback f ON f.complaint_id = c.id
        WHERE %s
        GROUP BY c.id, cat.name, d.name
        ORDER BY c.resolved_at DESC NULLS LAST, c.id
        LIMIT %d OFFSET %d`, where.sql(), limit, offset)

	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.PublicFeedRow
	for rows.Next() {
		var row domain.PublicFeedRow
		if err := rows.Scan(
			&row.ID,
			&row.TrackingCode,
			&row.Title,
			&row.CategoryName,
			&row.DepartmentName,
			&row.Status,
			&row.ResolvedAt,
			&row.PublicAnswer,
			&row.Stats.Avg,
			&row.Stats.Count,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var c domain.Complaint
		if err := rows.Scan(
			&c.ID,
			&c.TrackingCode,
			&c.OwnerID,
			&c.CategoryID,
			&c.DepartmentID,
			&c.Title,
			&c.Description,
			&c.Status,
			&c.Lat,
			&c.Lon,
			&c.PublicAnswer,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.ResolvedAt,
			&c.ClosedAt,
			&c.CategoryName,
			&c.DepartmentName,
			&c.OwnerEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
