package domain

import (
	"context"
	"time"
)

// Store is the domain persistence boundary for the review pipeline.
//
// Writes that violate a uniqueness or state guard return ErrConflict; missing
// records return ErrNotFound; other failures are treated as transient.
type Store interface {
	GetEvent(ctx context.Context, eventID string) (Event, error)
	ListEventQuestions(ctx context.Context, eventID string) ([]Question, error)

	GetApplicant(ctx context.Context, userID string) (Applicant, error)
	UpdateApplicantAnnotations(ctx context.Context, userID string, notes string, labels []string, updatedAt time.Time) (Applicant, error)

	PutApplication(ctx context.Context, application Application) error
	GetApplication(ctx context.Context, applicationID string) (Application, error)
	ListEventApplications(ctx context.Context, query ApplicationQuery) (ApplicationPage, error)
	UpdateApplicationStatus(ctx context.Context, update StatusUpdate) (Application, error)

	ListApplicationResponses(ctx context.Context, applicationID string) ([]Response, error)
	PutResponse(ctx context.Context, response Response) error

	PutAssignment(ctx context.Context, assignment Assignment) error
	GetAssignment(ctx context.Context, applicationID string, reviewerID string, stage Stage) (Assignment, error)
	PutEvaluation(ctx context.Context, evaluation Evaluation) (Evaluation, error)
	ListEvaluatedApplications(ctx context.Context, eventID string, responseKeys []string) ([]EvaluatedApplication, error)

	PutEmail(ctx context.Context, email Email) error
	GetEmail(ctx context.Context, emailID string) (Email, error)
	ListApplicationEmails(ctx context.Context, applicationID string) ([]Email, error)
	TransitionEmail(ctx context.Context, transition EmailTransition) (Email, error)
	DeleteEmail(ctx context.Context, emailID string, requiredStatus EmailStatus) error
}
