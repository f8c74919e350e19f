package domain

import (
	"context"
	"time"
)

// EmailType identifies the purpose of an email.
type EmailType string

const (
	EmailTypeMissingInfo EmailType = "MISSING_INFO"
)

// EmailStatus is the lifecycle state of an email.
type EmailStatus string

const (
	EmailStatusDraft     EmailStatus = "DRAFT"
	EmailStatusQueued    EmailStatus = "QUEUED"
	EmailStatusSent      EmailStatus = "SENT"
	EmailStatusFailed    EmailStatus = "FAILED"
	EmailStatusCancelled EmailStatus = "CANCELLED"
)

// FailureReasonOutcomeUnknown marks an email whose delivery attempt never
// reported back.
const FailureReasonOutcomeUnknown = "delivery outcome unknown"

// Email is one applicant communication.
type Email struct {
	ID            string
	ApplicationID string
	Type          EmailType
	Status        EmailStatus
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

// EmailTransition moves an email from one status to another. The write only
// applies while the stored status still equals From.
type EmailTransition struct {
	EmailID       string
	From          EmailStatus
	To            EmailStatus
	At            time.Time
	SentAt        *time.Time
	FailureReason string
}

// SendResult is the business outcome of a send attempt.
type SendResult struct {
	Success bool
	Error   string
	Email   Email
}

// DeleteEmailResult reports whether a draft was removed.
type DeleteEmailResult struct {
	Deleted bool
	Status  EmailStatus
}

// SafetySnapshot is the current verdict of the outbound email policy.
type SafetySnapshot struct {
	Safe         bool
	Reason       string
	Paused       bool
	SentInWindow int
	Limit        int
	Window       time.Duration
	CheckedAt    time.Time
}

// SafetyChecker reports whether outbound email may be sent now.
type SafetyChecker interface {
	Snapshot(ctx context.Context) (SafetySnapshot, error)
}

// SendRecorder is implemented by safety checkers that count sends themselves.
type SendRecorder interface {
	RecordSend(ctx context.Context, email Email, sentAt time.Time) error
}

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// MissingField is one unanswered required question.
type MissingField struct {
	Key    string
	Prompt string
}

// MissingInfoContent is the input for rendering a missing-information email.
type MissingInfoContent struct {
	Locale        string
	ApplicantName string
	EventName     string
	MissingFields []MissingField
}

// RenderedEmail is rendered subject and body content.
type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

// EmailRenderer renders applicant email content.
type EmailRenderer interface {
	RenderMissingInfo(content MissingInfoContent) (RenderedEmail, error)
}

// CreateMissingInfoEmailInput requests a draft for an incomplete application.
// Check is the caller's last completeness result for the application.
type CreateMissingInfoEmailInput struct {
	ApplicationID string
	Check         CheckResult
	Locale        string
}
