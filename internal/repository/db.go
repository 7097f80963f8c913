package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both the pool and an open transaction.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Repositories bundles every repository bound to the same DBTX.
type Repositories struct {
	Users         UserRepository
	Departments   DepartmentRepository
	Categories    CategoryRepository
	Members       DepartmentMemberRepository
	Complaints    ComplaintRepository
	History       StatusHistoryRepository
	Notifications NotificationRepository
	Feedback      FeedbackRepository
}

// TxRunner executes fn inside one database transaction. fn receives repositories
// bound to that transaction; returning an error rolls everything back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

// NewRepositories binds all repositories to db.
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Users:         NewUserRepository(db),
		Departments:   NewDepartmentRepository(db),
		Categories:    NewCategoryRepository(db),
		Members:       NewDepartmentMemberRepository(db),
		Complaints:    NewComplaintRepository(db),
		History:       NewStatusHistoryRepository(db),
		Notifications: NewNotificationRepository(db),
		Feedback:      NewFeedbackRepository(db),
	}
}

// Store owns the pool and hands out pool-bound or transaction-bound repositories.
type Store struct {
	pool  *pgxpool.Pool
	repos Repositories
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, repos: NewRepositories(pool)}
}

// Repositories returns pool-bound repositories for reads outside a transaction.
func (s *Store) Repositories() Repositories {
	return s.repos
}

// WithinTx implements TxRunner.
func (s *Store) WithinTx(ctx context.Context, fn func(Repositories) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure, optionally
// restricted to the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// whereBuilder accumulates AND-joined predicates with positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

// add appends a predicate. Every %s in clause is replaced by the placeholder for arg.
func (w *whereBuilder) add(clause string, arg any) {
	w.args = append(w.args, arg)
	placeholder := fmt.Sprintf("$%d", len(w.args))
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "%s", placeholder))
}

// addRaw appends a predicate without arguments.
func (w *whereBuilder) addRaw(clause string) {
	w.clauses = append(w.clauses, clause)
}

// addIn appends "column IN (...)" for a non-empty value list.
func (w *whereBuilder) addIn(column string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return "1=1"
	}
	return strings.Join(w.clauses, " AND ")
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
