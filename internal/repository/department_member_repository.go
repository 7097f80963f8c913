package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// DepartmentMemberRepository manages (department, user) memberships. Rows are never
// deleted; removal clears the active flag.
type DepartmentMemberRepository interface {
	Get(ctx context.Context, departmentID, userID string) (*domain.DepartmentMember, error)
	Create(ctx context.Context, member *domain.DepartmentMember) error
	Update(ctx context.Context, member *domain.DepartmentMember) error
	ListByDepartment(ctx context.Context, departmentID string) ([]domain.DepartmentMember, error)
	ActiveDepartmentIDs(ctx context.Context, userID string) ([]string, error)
	IsActiveMember(ctx context.Context, userID, departmentID string) (bool, error)
}

type departmentMemberRepository struct {
	db DBTX
}

// NewDepartmentMemberRepository instantiates the repository.
func NewDepartmentMemberRepository(db DBTX) DepartmentMemberRepository {
	return &departmentMemberRepository{db: db}
}

func (r *departmentMemberRepository) Get(ctx context.Context, departmentID, userID string) (*domain.DepartmentMember, error) {
	const query = `
        SELECT m.id, m.department_id, m.user_id, m.member_role, m.active, m.created_at, m.updated_at, u.email, u.phone
        FROM department_members m JOIN users u ON u.id = m.user_id
        WHERE m.department_id=$1 AND m.user_id=$2`
	rows, err := r.db.Query(ctx, query, departmentID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members, err := scanMembers(rows)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &members[0], nil
}

func (r *departmentMemberRepository) Create(ctx context.Context, member *domain.DepartmentMember) error {
	const query = `
        INSERT INTO department_members (department_id, user_id, member_role, active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		member.DepartmentID,
		member.UserID,
		member.Role,
		member.Active,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *departmentMemberRepository) Update(ctx context.Context, member *domain.DepartmentMember) error {
	const query = `
        UPDATE department_members SET member_role=$1, active=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		member.Role,
		member.Active,
		member.ID,
	).Scan(&member.UpdatedAt)
}

func (r *departmentMemberRepository) ListByDepartment(ctx context.Context, departmentID string) ([]domain.DepartmentMember, error) {
	const query = `
        SELECT m.id, m.department_id, m.user_id, m.member_role, m.active, m.created_at, m.updated_at, u.email, u.phone
        FROM department_members m JOIN users u ON u.id = m.user_id
        WHERE m.department_id=$1
        ORDER BY m.active DESC, m.created_at ASC`
	rows, err := r.db.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *departmentMemberRepository) ActiveDepartmentIDs(ctx context.Context, userID string) ([]string, error) {
	const query = `
        SELECT m.department_id
        FROM department_members m JOIN departments d ON d.id = m.department_id
        WHERE m.user_id=$1 AND m.active = TRUE
        ORDER BY m.department_id`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *departmentMemberRepository) IsActiveMember(ctx context.Context, userID, departmentID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM department_members
            WHERE user_id=$1 AND department_id=$2 AND active = TRUE
        )`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, departmentID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanMembers(rows pgx.Rows) ([]domain.DepartmentMember, error) {
	var result []domain.DepartmentMember
	for rows.Next() {
		var m domain.DepartmentMember
		if err := rows.Scan(
			&m.ID,
			&m.DepartmentID,
			&m.UserID,
			&m.Role,
			&m.Active,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.UserEmail,
			&m.UserPhone,
		); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
