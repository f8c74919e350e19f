package domain

import "strings"

// Status is the lifecycle state of an application.
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusAccepted    Status = "ACCEPTED"
	StatusRejected    Status = "REJECTED"
	StatusWaitlisted  Status = "WAITLISTED"
	StatusCancelled   Status = "CANCELLED"
)

var allStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusAccepted,
	StatusRejected,
	StatusWaitlisted,
	StatusCancelled,
}

// Statuses returns every application status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", invalidStatusError(raw)
	}
	return status, nil
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Terminal reports whether the guarded graph offers no way out of s.
func (s Status) Terminal() bool {
	next, ok := statusTransitions[s]
	return ok && len(next) == 0
}

// statusTransitions is the guarded progression graph. Administrative
// overrides bypass it.
var statusTransitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted, StatusCancelled},
	StatusSubmitted:   {StatusUnderReview, StatusCancelled},
	StatusUnderReview: {StatusAccepted, StatusRejected, StatusWaitlisted, StatusCancelled},
	StatusWaitlisted:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:    {},
	StatusRejected:    {},
	StatusCancelled:   {},
}

// CanTransition reports whether the guarded graph allows from -> to.
// Staying in the same valid status is always allowed.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one guarded step.
func NextStatuses(s Status) []Status {
	next := statusTransitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// StatusPresentation is the display metadata for a status.
type StatusPresentation struct {
	Label string
	Color string
	Icon  string
}

var statusPresentations = map[Status]StatusPresentation{
	StatusDraft:       {Label: "Draft", Color: "gray", Icon: "pencil"},
	StatusSubmitted:   {Label: "Submitted", Color: "blue", Icon: "inbox"},
	StatusUnderReview: {Label: "Under review", Color: "amber", Icon: "eye"},
	StatusAccepted:    {Label: "Accepted", Color: "green", Icon: "check-circle"},
	StatusRejected:    {Label: "Rejected", Color: "red", Icon: "x-circle"},
	StatusWaitlisted:  {Label: "Waitlisted", Color: "purple", Icon: "clock"},
	StatusCancelled:   {Label: "Cancelled", Color: "slate", Icon: "ban"},
}

// Presentation returns display metadata for s. Unknown statuses report false
// rather than a default style.
func (s Status) Presentation() (StatusPresentation, bool) {
	presentation, ok := statusPresentations[s]
	return presentation, ok
}
