package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
)

// memStore is an in-memory stand-in for the Postgres schema. WithinTx serializes
// transactions and restores a snapshot when the callback fails.
type memStore struct {
	txMu sync.Mutex

	users         map[string]domain.User
	departments   map[string]domain.Department
	categories    map[string]domain.ComplaintCategory
	members       map[string]domain.DepartmentMember
	complaints    map[string]domain.Complaint
	history       []domain.StatusHistory
	notifications []domain.Notification
	feedback      map[string]domain.Feedback

	failNotificationInsert error
	lockedComplaints       []string
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]domain.User{},
		departments: map[string]domain.Department{},
		categories:  map[string]domain.ComplaintCategory{},
		members:     map[string]domain.DepartmentMember{},
		complaints:  map[string]domain.Complaint{},
		feedback:    map[string]domain.Feedback{},
	}
}

func (m *memStore) repos() repository.Repositories {
	return repository.Repositories{
		Users:         memUsers{m},
		Departments:   memDepartments{m},
		Categories:    memCategories{m},
		Members:       memMembers{m},
		Complaints:    memComplaints{m},
		History:       memHistory{m},
		Notifications: memNotifications{m},
		Feedback:      memFeedback{m},
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(m.repos()); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	members       map[string]domain.DepartmentMember
	complaints    map[string]domain.Complaint
	history       []domain.StatusHistory
	notifications []domain.Notification
	feedback      map[string]domain.Feedback
	users         map[string]domain.User
}

func (m *memStore) snapshot() memSnapshot {
	return memSnapshot{
		members:       cloneMap(m.members),
		complaints:    cloneMap(m.complaints),
		history:       append([]domain.StatusHistory(nil), m.history...),
		notifications: append([]domain.Notification(nil), m.notifications...),
		feedback:      cloneMap(m.feedback),
		users:         cloneMap(m.users),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.members = s.members
	m.complaints = s.complaints
	m.history = s.history
	m.notifications = s.notifications
	m.feedback = s.feedback
	m.users = s.users
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// seed helpers

func (m *memStore) addUser(email string, roles ...domain.Role) domain.User {
	u := domain.User{ID: uuid.NewString(), Email: email, Roles: roles, Enabled: true}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addDepartment(name string, active bool) domain.Department {
	d := domain.Department{ID: uuid.NewString(), Name: name, IsActive: active}
	m.departments[d.ID] = d
	return d
}

func (m *memStore) addCategory(name string, active bool, deptID *string) domain.ComplaintCategory {
	c := domain.ComplaintCategory{ID: uuid.NewString(), Name: name, IsActive: active, DefaultDepartmentID: deptID}
	m.categories[c.ID] = c
	return c
}

func (m *memStore) addMember(deptID, userID string, active bool) {
	m.members[deptID+"|"+userID] = domain.DepartmentMember{
		ID: uuid.NewString(), DepartmentID: deptID, UserID: userID, Role: domain.MemberRoleMember, Active: active,
	}
}

func (m *memStore) historyFor(complaintID string) []domain.StatusHistory {
	var out []domain.StatusHistory
	for _, h := range m.history {
		if h.ComplaintID == complaintID {
			out = append(out, h)
		}
	}
	return out
}

func (m *memStore) notificationsFor(complaintID string) []domain.Notification {
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.ComplaintID == complaintID {
			out = append(out, n)
		}
	}
	return out
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return uniqueViolation("uq_users_email")
		}
	}
	user.ID = uuid.NewString()
	r.m.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memDepartments struct{ m *memStore }

func (r memDepartments) GetByID(_ context.Context, id string) (*domain.Department, error) {
	d, ok := r.m.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

func (r memDepartments) ListActive(context.Context) ([]domain.Department, error) {
	var out []domain.Department
	for _, d := range r.m.departments {
		if d.IsActive {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memCategories struct{ m *memStore }

func (r memCategories) GetByID(_ context.Context, id string) (*domain.ComplaintCategory, error) {
	c, ok := r.m.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r memCategories) ListActive(context.Context) ([]domain.ComplaintCategory, error) {
	var out []domain.ComplaintCategory
	for _, c := range r.m.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memMembers struct{ m *memStore }

func (r memMembers) Get(_ context.Context, departmentID, userID string) (*domain.DepartmentMember, error) {
	mem, ok := r.m.members[departmentID+"|"+userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &mem, nil
}

func (r memMembers) Create(_ context.Context, member *domain.DepartmentMember) error {
	key := member.DepartmentID + "|" + member.UserID
	if _, ok := r.m.members[key]; ok {
		return uniqueViolation("uq_department_members_department_user")
	}
	member.ID = uuid.NewString()
	r.m.members[key] = *member
	return nil
}

func (r memMembers) Update(_ context.Context, member *domain.DepartmentMember) error {
	key := member.DepartmentID + "|" + member.UserID
	if _, ok := r.m.members[key]; !ok {
		return pgx.ErrNoRows
	}
	r.m.members[key] = *member
	return nil
}

func (r memMembers) ListByDepartment(_ context.Context, departmentID string) ([]domain.DepartmentMember, error) {
	var out []domain.DepartmentMember
	for _, mem := range r.m.members {
		if mem.DepartmentID == departmentID {
			out = append(out, mem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Active && !out[j].Active })
	return out, nil
}

func (r memMembers) ActiveDepartmentIDs(_ context.Context, userID string) ([]string, error) {
	var out []string
	for _, mem := range r.m.members {
		if mem.UserID == userID && mem.Active {
			out = append(out, mem.DepartmentID)
		}
	}
	return out, nil
}

func (r memMembers) IsActiveMember(_ context.Context, userID, departmentID string) (bool, error) {
	mem, ok := r.m.members[departmentID+"|"+userID]
	return ok && mem.Active, nil
}

type memComplaints struct{ m *memStore }

func (r memComplaints) Create(_ context.Context, c *domain.Complaint) error {
	for _, existing := range r.m.complaints {
		if existing.TrackingCode == c.TrackingCode {
			return uniqueViolation("uq_complaints_tracking_code")
		}
	}
	c.ID = uuid.NewString()
	r.m.complaints[c.ID] = *c
	return nil
}

func (r memComplaints) UpdateState(_ context.Context, c *domain.Complaint) error {
	stored, ok := r.m.complaints[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = c.Status
	stored.PublicAnswer = c.PublicAnswer
	stored.UpdatedAt = c.UpdatedAt
	if stored.ResolvedAt == nil {
		stored.ResolvedAt = c.ResolvedAt
	}
	if stored.ClosedAt == nil {
		stored.ClosedAt = c.ClosedAt
	}
	r.m.complaints[c.ID] = stored
	return nil
}

func (r memComplaints) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	c, ok := r.m.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r memComplaints) GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	r.m.lockedComplaints = append(r.m.lockedComplaints, id)
	return r.GetByID(ctx, id)
}

func (r memComplaints) GetByTrackingCode(_ context.Context, code string) (*domain.Complaint, error) {
	for _, c := range r.m.complaints {
		if c.TrackingCode == code {
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memComplaints) ExistsByTrackingCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByTrackingCode(ctx, code)
	return err == nil, nil
}

func (r memComplaints) List(_ context.Context, f repository.ComplaintFilter) ([]domain.Complaint, int, error) {
	var out []domain.Complaint
	for _, c := range r.m.complaints {
		if f.OwnerID != nil && c.OwnerID != *f.OwnerID {
			continue
		}
		if f.DepartmentIDs != nil && (c.DepartmentID == nil || !contains(f.DepartmentIDs, *c.DepartmentID)) {
			continue
		}
		if len(f.Statuses) > 0 && !contains(f.Statuses, c.Status) {
			continue
		}
		if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" &&
			!strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.TrackingCode), term) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r memComplaints) ListPublicFeed(ctx context.Context, f repository.PublicFeedFilter) ([]domain.PublicFeedRow, int, error) {
	var rows []domain.PublicFeedRow
	for _, c := range r.m.complaints {
		if c.Status != domain.ComplaintStatusResolved {
			continue
		}
		if f.CategoryID != nil && c.CategoryID != *f.CategoryID {
			continue
		}
		if f.DepartmentID != nil && (c.DepartmentID == nil || *c.DepartmentID != *f.DepartmentID) {
			continue
		}
		stats, _ := memFeedback{r.m}.Stats(ctx, c.ID)
		rows = append(rows, domain.PublicFeedRow{
			ID:             c.ID,
			TrackingCode:   c.TrackingCode,
			Title:          c.Title,
			CategoryName:   c.CategoryName,
			DepartmentName: c.DepartmentName,
			Status:         c.Status,
			ResolvedAt:     c.ResolvedAt,
			PublicAnswer:   c.PublicAnswer,
			Stats:          stats,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return resolvedAtOrZero(rows[i].ResolvedAt).After(resolvedAtOrZero(rows[j].ResolvedAt))
	})
	return paginate(rows, f.Limit, f.Offset), len(rows), nil
}

func resolvedAtOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

type memHistory struct{ m *memStore }

func (r memHistory) Create(_ context.Context, entry *domain.StatusHistory) error {
	entry.ID = uuid.NewString()
	r.m.history = append(r.m.history, *entry)
	return nil
}

func (r memHistory) ListByComplaint(_ context.Context, complaintID string) ([]domain.StatusHistory, error) {
	return r.m.historyFor(complaintID), nil
}

type memNotifications struct{ m *memStore }

func (r memNotifications) Create(_ context.Context, n *domain.Notification) error {
	if r.m.failNotificationInsert != nil {
		return r.m.failNotificationInsert
	}
	n.ID = uuid.NewString()
	r.m.notifications = append(r.m.notifications, *n)
	return nil
}

func (r memNotifications) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Notification, int, error) {
	var out []domain.Notification
	for i := len(r.m.notifications) - 1; i >= 0; i-- {
		if r.m.notifications[i].UserID == userID {
			out = append(out, r.m.notifications[i])
		}
	}
	return paginate(out, limit, offset), len(out), nil
}

func (r memNotifications) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range r.m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r memNotifications) MarkRead(_ context.Context, userID, id string) (bool, error) {
	for i := range r.m.notifications {
		if r.m.notifications[i].ID == id && r.m.notifications[i].UserID == userID {
			r.m.notifications[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r memNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var changed int64
	for i := range r.m.notifications {
		if r.m.notifications[i].UserID == userID && !r.m.notifications[i].IsRead {
			r.m.notifications[i].IsRead = true
			changed++
		}
	}
	return changed, nil
}

type memFeedback struct{ m *memStore }

func (r memFeedback) Upsert(_ context.Context, fb *domain.Feedback) (bool, error) {
	key := fb.ComplaintID + "|" + fb.CitizenID
	existing, ok := r.m.feedback[key]
	if ok {
		existing.Rating = fb.Rating
		existing.UpdatedAt = fb.UpdatedAt
		r.m.feedback[key] = existing
		*fb = existing
		return false, nil
	}
	fb.ID = uuid.NewString()
	fb.CreatedAt = fb.UpdatedAt
	r.m.feedback[key] = *fb
	return true, nil
}

func (r memFeedback) Get(_ context.Context, complaintID, citizenID string) (*domain.Feedback, error) {
	fb, ok := r.m.feedback[complaintID+"|"+citizenID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &fb, nil
}

func (r memFeedback) Stats(_ context.Context, complaintID string) (domain.FeedbackStats, error) {
	var sum, count int64
	for _, fb := range r.m.feedback {
		if fb.ComplaintID == complaintID {
			sum += int64(fb.Rating)
			count++
		}
	}
	if count == 0 {
		return domain.FeedbackStats{}, nil
	}
	return domain.FeedbackStats{Avg: float64(sum) / float64(count), Count: count}, nil
}

func contains[T comparable](items []T, v T) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
