package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/workflow"
	"github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const (
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeComplaintNotFound     = "COMPLAINT_NOT_FOUND"
	CodeCategoryNotFound      = "CATEGORY_NOT_FOUND"
	CodeDepartmentNotFound    = "DEPARTMENT_NOT_FOUND"
	CodeCategoryNotActive     = "CATEGORY_NOT_ACTIVE"
	CodeCategoryNoDefaultDept = "CATEGORY_HAS_NO_DEFAULT_DEPARTMENT"
	CodeDefaultDeptNotActive  = "DEFAULT_DEPARTMENT_NOT_ACTIVE"
	CodeNotOwner              = "NOT_OWNER"
)

const (
	receivedNote             = "Your complaint has been received and will be reviewed shortly."
	tracerName               = "github.com/civicdesk/complaint-service/internal/service"
	defaultComplaintPageSize = 20
	maxComplaintPageSize     = 100
)

// ComplaintService coordinates the complaint lifecycle.
type ComplaintService struct {
	repos      repository.Repositories
	tx         repository.TxRunner
	tracking   *TrackingCodeGenerator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	Repos      repository.Repositories
	Tx         repository.TxRunner
	Tracking   *TrackingCodeGenerator
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      func() time.Time
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	s := &ComplaintService{
		repos:      deps.Repos,
		tx:         deps.Tx,
		tracking:   deps.Tracking,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		tracer:     otel.Tracer(tracerName),
		now:        deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateComplaintInput describes a citizen submission.
type CreateComplaintInput struct {
	CitizenID   string
	Title       string
	Description string
	CategoryID  string
	Lat         *float64
	Lon         *float64
}

// ChangeStatusInput describes a staff status change. Blank PublicAnswer counts as absent.
type ChangeStatusInput struct {
	ActorID      string
	ComplaintID  string
	ToStatus     domain.ComplaintStatus
	Note         *string
	PublicAnswer *string
}

// AgentListInput filters the staff work queue.
type AgentListInput struct {
	ActorID  string
	Query    string
	Statuses []domain.ComplaintStatus
	Page     int
	Size     int
}

// ComplaintPage is one page of complaints.
type ComplaintPage struct {
	Items []domain.Complaint
	Total int
	Page  int
	Size  int
}

// Create stores a NEW complaint with its initial history entry and receipt
// notification in one transaction.
func (s *ComplaintService) Create(ctx context.Context, in CreateComplaintInput) (complaint *domain.Complaint, err error) {
	ctx, span := s.tracer.Start(ctx, "ComplaintService.Create",
		trace.WithAttributes(attribute.String("category.id", in.CategoryID)))
	defer func() { endSpan(span, err) }()

	if !validID(in.CitizenID) {
		return nil, errorutil.NewNotFound(CodeUserNotFound, "user not found")
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if err := validateSubmission(title, description, in.Lat, in.Lon); err != nil {
		return nil, err
	}

	// The tracking code is probed through the pool, so it is generated before the
	// transaction takes its own connection.
	if _, err := s.repos.Users.GetByID(ctx, in.CitizenID); err != nil {
		return nil, notFoundOr(err, CodeUserNotFound, "user not found")
	}
	if _, _, err := resolveRouting(ctx, s.repos, in.CategoryID); err != nil {
		return nil, err
	}
	code, err := s.tracking.Generate(ctx)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		citizen, err := r.Users.GetByID(ctx, in.CitizenID)
		if err != nil {
			return notFoundOr(err, CodeUserNotFound, "user not found")
		}
		category, dept, err := resolveRouting(ctx, r, in.CategoryID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		complaint = &domain.Complaint{
			TrackingCode:   code,
			OwnerID:        citizen.ID,
			CategoryID:     category.ID,
			DepartmentID:   &dept.ID,
			Title:          title,
			Description:    description,
			Status:         domain.ComplaintStatusNew,
			Lat:            in.Lat,
			Lon:            in.Lon,
			CreatedAt:      now,
			UpdatedAt:      now,
			CategoryName:   category.Name,
			DepartmentName: dept.Name,
			OwnerEmail:     citizen.Email,
		}
		if err := r.Complaints.Create(ctx, complaint); err != nil {
			if repository.IsUniqueViolation(err, "uq_complaints_tracking_code") {
				return errorutil.NewExhausted(CodeTrackingExhausted, "tracking code collided, retry the request")
			}
			return fmt.Errorf("insert complaint: %w", err)
		}

		note := receivedNote
		if err := r.History.Create(ctx, &domain.StatusHistory{
			ComplaintID: complaint.ID,
			ToStatus:    domain.ComplaintStatusNew,
			ActorID:     citizen.ID,
			Note:        &note,
			CreatedAt:   now,
		}); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}

		notification := statusNotification(complaint, domain.ComplaintStatusNew, note, "")
		notification.CreatedAt = now
		if err := r.Notifications.Create(ctx, &notification); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("complaint.id", complaint.ID))
	s.metrics.ComplaintCreated()
	s.logger.Info("complaint created",
		zap.String("complaint_id", complaint.ID),
		zap.String("tracking_code", complaint.TrackingCode),
		zap.String("department_id", deref(complaint.DepartmentID)))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		ActorID:     complaint.OwnerID,
		Payload: events.ComplaintCreatedPayload{
			TrackingCode: complaint.TrackingCode,
			CategoryID:   complaint.CategoryID,
			DepartmentID: deref(complaint.DepartmentID),
		},
	})
	return complaint, nil
}

// ChangeStatus moves a complaint along the lifecycle. The complaint row is locked
// for the duration so concurrent changes serialize on the committed status.
func (s *ComplaintService) ChangeStatus(ctx context.Context, in ChangeStatusInput) (complaint *domain.Complaint, err error) {
	ctx, span := s.tracer.Start(ctx, "ComplaintService.ChangeStatus", trace.WithAttributes(
		attribute.String("complaint.id", in.ComplaintID),
		attribute.String("status.to", string(in.ToStatus)),
	))
	defer func() { endSpan(span, err) }()

	if !in.ToStatus.Valid() {
		return nil, errorutil.NewValidationError("invalid status", map[string]any{"toStatus": in.ToStatus})
	}
	if !validID(in.ComplaintID) {
		return nil, errorutil.NewNotFound(CodeComplaintNotFound, "complaint not found")
	}

	var from domain.ComplaintStatus
	note := trimmedOrNil(in.Note)
	answer := trimmedOrNil(in.PublicAnswer)

	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		actor, err := r.Users.GetByID(ctx, in.ActorID)
		if err != nil {
			return notFoundOr(err, CodeUserNotFound, "user not found")
		}
		complaint, err = r.Complaints.GetByIDForUpdate(ctx, in.ComplaintID)
		if err != nil {
			return notFoundOr(err, CodeComplaintNotFound, "complaint not found")
		}
		if err := NewDepartmentAuthorizer(r.Members).Authorize(ctx, actor, complaint); err != nil {
			return err
		}

		effects, err := workflow.Validate(complaint.Status, in.ToStatus, answer != nil)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if !now.After(complaint.UpdatedAt) {
			now = complaint.UpdatedAt.Add(time.Microsecond)
		}
		from = complaint.Status
		complaint.Status = in.ToStatus
		complaint.UpdatedAt = now
		if effects.SetResolvedAt {
			complaint.ResolvedAt = &now
		}
		if effects.SetPublicAnswer {
			complaint.PublicAnswer = answer
		}
		if effects.SetClosedAt {
			complaint.ClosedAt = &now
		}
		if err := r.Complaints.UpdateState(ctx, complaint); err != nil {
			return fmt.Errorf("update complaint: %w", err)
		}

		fromStatus := from
		if err := r.History.Create(ctx, &domain.StatusHistory{
			ComplaintID: complaint.ID,
			FromStatus:  &fromStatus,
			ToStatus:    in.ToStatus,
			ActorID:     actor.ID,
			Note:        note,
			CreatedAt:   now,
		}); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}

		notification := statusNotification(complaint, in.ToStatus, deref(note), deref(answer))
		notification.CreatedAt = now
		if err := r.Notifications.Create(ctx, &notification); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("status change rejected",
			zap.String("complaint_id", in.ComplaintID),
			zap.String("actor_id", in.ActorID),
			zap.String("to", string(in.ToStatus)),
			zap.Error(err))
		return nil, err
	}

	s.metrics.StatusTransition(string(from), string(in.ToStatus))
	s.logger.Info("complaint status changed",
		zap.String("complaint_id", complaint.ID),
		zap.String("from", string(from)),
		zap.String("to", string(in.ToStatus)),
		zap.String("actor_id", in.ActorID))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaint.ID,
		ActorID:     in.ActorID,
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus:    from,
			NewStatus:    in.ToStatus,
			DepartmentID: deref(complaint.DepartmentID),
			Note:         deref(note),
		},
	})
	return complaint, nil
}

// ListMine returns the citizen's complaints newest first.
func (s *ComplaintService) ListMine(ctx context.Context, citizenID string, page, size int) (*ComplaintPage, error) {
	page, size = normalizePaging(page, size, defaultComplaintPageSize, maxComplaintPageSize)
	items, total, err := s.repos.Complaints.List(ctx, repository.ComplaintFilter{
		OwnerID: &citizenID,
		Limit:   size,
		Offset:  page * size,
	})
	if err != nil {
		return nil, err
	}
	return newComplaintPage(items, total, page, size), nil
}

// GetMine returns a complaint only to its owner.
func (s *ComplaintService) GetMine(ctx context.Context, complaintID, citizenID string) (*domain.Complaint, error) {
	complaint, err := s.loadComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.OwnerID != citizenID {
		return nil, errorutil.NewForbidden(CodeNotOwner, "complaint belongs to another citizen")
	}
	return complaint, nil
}

// TrackByCode looks a complaint up by tracking code. A missing complaint yields
// (nil, nil).
func (s *ComplaintService) TrackByCode(ctx context.Context, code string) (*domain.Complaint, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	complaint, err := s.repos.Complaints.GetByTrackingCode(ctx, code)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return complaint, nil
}

// GetHistory returns the audit trail to the owner or to staff allowed to act on the
// complaint.
func (s *ComplaintService) GetHistory(ctx context.Context, complaintID, requesterID string) ([]domain.StatusHistory, error) {
	complaint, err := s.loadComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.OwnerID != requesterID {
		requester, err := s.repos.Users.GetByID(ctx, requesterID)
		if err != nil {
			return nil, notFoundOr(err, CodeUserNotFound, "user not found")
		}
		if !requester.IsStaff() {
			return nil, errorutil.NewForbidden(CodeNotOwner, "complaint belongs to another citizen")
		}
		if err := NewDepartmentAuthorizer(s.repos.Members).Authorize(ctx, requester, complaint); err != nil {
			return nil, err
		}
	}
	history, err := s.repos.History.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.StatusHistory{}
	}
	return history, nil
}

// ListForAgent returns the staff work queue. Agents see their active departments
// only; admins see everything.
func (s *ComplaintService) ListForAgent(ctx context.Context, in AgentListInput) (*ComplaintPage, error) {
	actor, err := s.repos.Users.GetByID(ctx, in.ActorID)
	if err != nil {
		return nil, notFoundOr(err, CodeUserNotFound, "user not found")
	}
	requiresMembership, err := staffScope(actor)
	if err != nil {
		return nil, err
	}
	for _, st := range in.Statuses {
		if !st.Valid() {
			return nil, errorutil.NewValidationError("invalid status filter", map[string]any{"status": st})
		}
	}

	filter := repository.ComplaintFilter{Statuses: in.Statuses, SearchTerm: in.Query}
	if requiresMembership {
		deptIDs, err := s.repos.Members.ActiveDepartmentIDs(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if len(deptIDs) == 0 {
			return nil, errorutil.NewForbidden(CodeNotDepartmentMember, "not a member of any department")
		}
		filter.DepartmentIDs = deptIDs
	}

	page, size := normalizePaging(in.Page, in.Size, defaultComplaintPageSize, maxComplaintPageSize)
	filter.Limit = size
	filter.Offset = page * size
	items, total, err := s.repos.Complaints.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newComplaintPage(items, total, page, size), nil
}

func (s *ComplaintService) loadComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	if !validID(id) {
		return nil, errorutil.NewNotFound(CodeComplaintNotFound, "complaint not found")
	}
	complaint, err := s.repos.Complaints.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, CodeComplaintNotFound, "complaint not found")
	}
	return complaint, nil
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
}

// resolveRouting loads the category and its default department and checks both are
// accepting complaints.
func resolveRouting(ctx context.Context, r repository.Repositories, categoryID string) (*domain.ComplaintCategory, *domain.Department, error) {
	if !validID(categoryID) {
		return nil, nil, errorutil.NewNotFound(CodeCategoryNotFound, "category not found")
	}
	category, err := r.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, nil, notFoundOr(err, CodeCategoryNotFound, "category not found")
	}
	if !category.IsActive {
		return nil, nil, errorutil.NewBusinessRule(CodeCategoryNotActive, "category is not active", nil)
	}
	if category.DefaultDepartmentID == nil {
		return nil, nil, errorutil.NewBusinessRule(CodeCategoryNoDefaultDept, "category has no default department", nil)
	}
	dept, err := r.Departments.GetByID(ctx, *category.DefaultDepartmentID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil, errorutil.NewBusinessRule(CodeCategoryNoDefaultDept, "category default department does not exist", nil)
		}
		return nil, nil, err
	}
	if !dept.IsActive {
		return nil, nil, errorutil.NewBusinessRule(CodeDefaultDeptNotActive, "default department is not active", nil)
	}
	return category, dept, nil
}

func validateSubmission(title, description string, lat, lon *float64) error {
	details := map[string]any{}
	if title == "" {
		details["title"] = "required"
	} else if len(title) > 200 {
		details["title"] = "must be at most 200 characters"
	}
	if description == "" {
		details["description"] = "required"
	} else if len(description) > 4000 {
		details["description"] = "must be at most 4000 characters"
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		details["lat"] = "must be between -90 and 90"
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		details["lon"] = "must be between -180 and 180"
	}
	if len(details) > 0 {
		return errorutil.NewValidationError("invalid complaint", details)
	}
	return nil
}

func newComplaintPage(items []domain.Complaint, total, page, size int) *ComplaintPage {
	if items == nil {
		items = []domain.Complaint{}
	}
	return &ComplaintPage{Items: items, Total: total, Page: page, Size: size}
}

// notFoundOr maps a missing row to a named not-found error and passes other errors through.
func notFoundOr(err error, code, message string) error {
	if isNoRows(err) {
		return errorutil.NewNotFound(code, message)
	}
	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
