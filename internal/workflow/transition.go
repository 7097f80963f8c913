// Package workflow holds the complaint status state machine.
//
//	NEW -> IN_REVIEW -> RESOLVED -> CLOSED
//	           \___________________/
//
// CLOSED is terminal. Entering RESOLVED requires a public answer and no other
// target accepts one.
package workflow

import (
	"fmt"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const (
	CodeAlreadyClosed         = "COMPLAINT_ALREADY_CLOSED"
	CodeInvalidTransition     = "INVALID_STATUS_TRANSITION"
	CodeAnswerOnlyOnResolved  = "PUBLIC_ANSWER_ONLY_ALLOWED_ON_RESOLVED"
	CodeAnswerRequiredResolve = "PUBLIC_ANSWER_REQUIRED_ON_RESOLVED"
)

var allowedTransitions = map[domain.ComplaintStatus]map[domain.ComplaintStatus]bool{
	domain.ComplaintStatusNew:      {domain.ComplaintStatusInReview: true},
	domain.ComplaintStatusInReview: {domain.ComplaintStatusResolved: true, domain.ComplaintStatusClosed: true},
	domain.ComplaintStatusResolved: {domain.ComplaintStatusClosed: true},
	domain.ComplaintStatusClosed:   {},
}

// Effects lists the mutations a caller must apply alongside an allowed transition.
type Effects struct {
	SetResolvedAt   bool
	SetPublicAnswer bool
	SetClosedAt     bool
}

// CanTransition reports whether the edge from current to next exists.
func CanTransition(current, next domain.ComplaintStatus) bool {
	return allowedTransitions[current][next]
}

// Validate checks a requested status change. Checks run in a fixed order:
// terminal state, edge existence, then public answer rules.
func Validate(current, requested domain.ComplaintStatus, publicAnswerProvided bool) (Effects, error) {
	if current == domain.ComplaintStatusClosed {
		return Effects{}, errorutil.NewBusinessRule(CodeAlreadyClosed, "complaint is already closed", nil)
	}
	if !CanTransition(current, requested) {
		return Effects{}, errorutil.NewBusinessRule(CodeInvalidTransition,
			fmt.Sprintf("invalid status transition: %s -> %s", current, requested),
			map[string]any{"from": current, "to": requested})
	}
	if publicAnswerProvided && requested != domain.ComplaintStatusResolved {
		return Effects{}, errorutil.NewBusinessRule(CodeAnswerOnlyOnResolved, "public answer is only allowed when resolving", nil)
	}
	if requested == domain.ComplaintStatusResolved && !publicAnswerProvided {
		return Effects{}, errorutil.NewBusinessRule(CodeAnswerRequiredResolve, "public answer is required when resolving", nil)
	}

	switch requested {
	case domain.ComplaintStatusResolved:
		return Effects{SetResolvedAt: true, SetPublicAnswer: true}, nil
	case domain.ComplaintStatusClosed:
		return Effects{SetClosedAt: true}, nil
	}
	return Effects{}, nil
}
