// Package storage defines the persistence records and contracts of the review
// service.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested review record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write conflicts with a uniqueness or state guard.
	ErrConflict = errors.New("record conflict")
	// ErrInvalidPageToken indicates a page token that this store did not issue
	// for the requested ordering.
	ErrInvalidPageToken = errors.New("invalid page token")
)

// EventRecord stores one event.
type EventRecord struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// QuestionRecord stores one event question.
type QuestionRecord struct {
	ID       string
	EventID  string
	Key      string
	Prompt   string
	Required bool
	Position int
}

// ApplicantRecord stores one applicant profile and its admin annotations.
type ApplicantRecord struct {
	UserID         string
	Name           string
	Email          string
	AdminNotes     string
	AdminLabels    []string
	AdminUpdatedAt *time.Time
}

// ApplicationRecord stores one application.
type ApplicationRecord struct {
	ID          string
	EventID     string
	UserID      string
	Status      string
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplicationQuery selects application rows of one event. Where is a
// pre-translated SQL predicate with its positional arguments. PageToken
// resumes after the last row of a previous page with the same ordering.
type ApplicationQuery struct {
	EventID   string
	Status    string
	Where     string
	WhereArgs []any
	OrderBy   string
	Limit     int
	PageToken string
}

// ApplicationPage is one page of application rows. NextPageToken is empty on
// the last page.
type ApplicationPage struct {
	Applications  []ApplicationRecord
	NextPageToken string
}

// StatusUpdate applies one status write. FromStatus guards the write when set.
type StatusUpdate struct {
	ApplicationID string
	FromStatus    string
	ToStatus      string
	UpdatedAt     time.Time
	SubmittedAt   *time.Time
}

// ResponseRecord stores one answer keyed by question.
type ResponseRecord struct {
	ApplicationID string
	QuestionID    string
	QuestionKey   string
	Answer        string
	UpdatedAt     time.Time
}

// AssignmentRecord stores one reviewer assignment.
type AssignmentRecord struct {
	ApplicationID string
	ReviewerID    string
	Stage         string
	Priority      int
	Notes         string
	AssignedAt    time.Time
}

// EvaluationRecord stores one reviewer evaluation.
type EvaluationRecord struct {
	ApplicationID  string
	ReviewerID     string
	Stage          string
	OverallScore   *float64
	Recommendation string
	Comments       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EvaluatedApplicationRecord joins an application with everything consensus
// needs to rank it.
type EvaluatedApplicationRecord struct {
	Application ApplicationRecord
	Applicant   ApplicantRecord
	Evaluations []EvaluationRecord
	Responses   map[string]string
}

// EmailRecord stores one applicant email.
type EmailRecord struct {
	ID            string
	ApplicationID string
	Type          string
	Status        string
	Recipient     string
	Subject       string
	MissingFields []string
	HTMLContent   string
	TextContent   string
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SentAt        *time.Time
}

// EmailTransition moves an email between statuses while the stored status
// still equals FromStatus.
type EmailTransition struct {
	EmailID       string
	FromStatus    string
	ToStatus      string
	At            time.Time
	SentAt        *time.Time
	FailureReason string
}

// EventStore persists events, questions and applicants.
type EventStore interface {
	PutEvent(ctx context.Context, record EventRecord) error
	GetEvent(ctx context.Context, eventID string) (EventRecord, error)
	PutQuestion(ctx context.Context, record QuestionRecord) error
	ListEventQuestions(ctx context.Context, eventID string) ([]QuestionRecord, error)
	PutApplicant(ctx context.Context, record ApplicantRecord) error
	GetApplicant(ctx context.Context, userID string) (ApplicantRecord, error)
	UpdateApplicantAnnotations(ctx context.Context, userID string, notes string, labels []string, updatedAt time.Time) (ApplicantRecord, error)
}

// ApplicationStore persists applications and their responses.
type ApplicationStore interface {
	PutApplication(ctx context.Context, record ApplicationRecord) error
	GetApplication(ctx context.Context, applicationID string) (ApplicationRecord, error)
	ListEventApplications(ctx context.Context, query ApplicationQuery) (ApplicationPage, error)
	UpdateApplicationStatus(ctx context.Context, update StatusUpdate) (ApplicationRecord, error)
	PutResponse(ctx context.Context, record ResponseRecord) error
	ListApplicationResponses(ctx context.Context, applicationID string) ([]ResponseRecord, error)
}

// ReviewStore persists assignments and evaluations.
type ReviewStore interface {
	PutAssignment(ctx context.Context, record AssignmentRecord) error
	GetAssignment(ctx context.Context, applicationID string, reviewerID string, stage string) (AssignmentRecord, error)
	PutEvaluation(ctx context.Context, record EvaluationRecord) (EvaluationRecord, error)
	ListEvaluatedApplications(ctx context.Context, eventID string, responseKeys []string) ([]EvaluatedApplicationRecord, error)
}

// EmailStore persists applicant emails.
type EmailStore interface {
	PutEmail(ctx context.Context, record EmailRecord) error
	GetEmail(ctx context.Context, emailID string) (EmailRecord, error)
	ListApplicationEmails(ctx context.Context, applicationID string) ([]EmailRecord, error)
	TransitionEmail(ctx context.Context, transition EmailTransition) (EmailRecord, error)
	DeleteEmail(ctx context.Context, emailID string, requiredStatus string) error
	CountEmailsSentSince(ctx context.Context, since time.Time) (int, error)
}

// Store is the full review persistence contract.
type Store interface {
	EventStore
	ApplicationStore
	ReviewStore
	EmailStore
	Close() error
}
