package domain

import (
	"errors"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
)

var (
	// ErrNotFound indicates a review record was not found.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "review record not found")
	// ErrConflict indicates a write conflicted with a uniqueness or state guard.
	ErrConflict = apperrors.New(apperrors.CodeAlreadyExists, "review record conflict")
	// ErrUnavailable indicates an external dependency failed and the call may be retried.
	ErrUnavailable = apperrors.New(apperrors.CodeUnavailable, "review dependency unavailable")
	// ErrInvalidPageToken indicates a listing token that cannot continue the requested listing.
	ErrInvalidPageToken = apperrors.New(apperrors.CodePageTokenInvalid, "invalid page token")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("review store is not configured")
	// ErrRendererNotConfigured indicates email drafting has no renderer.
	ErrRendererNotConfigured = errors.New("email renderer is not configured")

	// ErrApplicationIDRequired indicates an application ID is required.
	ErrApplicationIDRequired = apperrors.New(apperrors.CodeApplicationIDRequired, "application id is required")
	// ErrApplicationIDsRequired indicates a bulk call named no applications.
	ErrApplicationIDsRequired = apperrors.New(apperrors.CodeApplicationIDsRequired, "application ids are required")
	// ErrEventIDRequired indicates an event ID is required.
	ErrEventIDRequired = apperrors.New(apperrors.CodeApplicationEventIDRequired, "event id is required")
	// ErrUserIDRequired indicates an applicant user ID is required.
	ErrUserIDRequired = apperrors.New(apperrors.CodeApplicationUserIDRequired, "user id is required")
	// ErrQuestionKeyRequired indicates a response named no question.
	ErrQuestionKeyRequired = apperrors.New(apperrors.CodeResponseQuestionKeyRequired, "question key is required")
	// ErrReviewerIDRequired indicates a reviewer ID is required.
	ErrReviewerIDRequired = apperrors.New(apperrors.CodeAssignmentReviewerRequired, "reviewer id is required")
	// ErrAssignmentMissing indicates the reviewer holds no assignment for the stage.
	ErrAssignmentMissing = apperrors.New(apperrors.CodeAssignmentMissing, "reviewer is not assigned")
	// ErrEmailIDRequired indicates an email ID is required.
	ErrEmailIDRequired = apperrors.New(apperrors.CodeEmailIDRequired, "email id is required")
	// ErrEmailRecipientMissing indicates the applicant has no email address.
	ErrEmailRecipientMissing = apperrors.New(apperrors.CodeEmailRecipientMissing, "applicant email is missing")
	// ErrCheckRequired indicates a draft was requested without a prior completeness check.
	ErrCheckRequired = apperrors.New(apperrors.CodeCheckRequired, "completeness check is required")
	// ErrCheckMismatch indicates the supplied check belongs to another application.
	ErrCheckMismatch = apperrors.New(apperrors.CodeCheckApplicationMismatch, "completeness check is for a different application")
	// ErrCheckComplete indicates the supplied check reported nothing missing.
	ErrCheckComplete = apperrors.New(apperrors.CodeCheckApplicationComplete, "application has no missing information")
)

func invalidStatusError(raw string) error {
	return apperrors.WithMetadata(apperrors.CodeApplicationInvalidStatus, "invalid application status", map[string]string{"Status": raw})
}

func invalidTransitionError(from, to Status) error {
	return apperrors.WithMetadata(apperrors.CodeApplicationInvalidStatusTransition, "application status transition is not allowed", map[string]string{
		"From": string(from),
		"To":   string(to),
	})
}

func invalidStageError(raw string) error {
	return apperrors.WithMetadata(apperrors.CodeAssignmentInvalidStage, "invalid review stage", map[string]string{"Stage": raw})
}

func unknownQuestionError(key string) error {
	return apperrors.WithMetadata(apperrors.CodeResponseQuestionUnknown, "question does not belong to event", map[string]string{"QuestionKey": key})
}

func emailNotDraftError(status EmailStatus) error {
	return apperrors.WithMetadata(apperrors.CodeEmailNotDraft, "email is not a draft", map[string]string{"Status": string(status)})
}

// unavailable wraps a dependency failure so callers can detect the transient kind.
func unavailable(message string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.CodeOf(err) != apperrors.CodeUnknown {
		return err
	}
	return apperrors.Wrap(apperrors.CodeUnavailable, message, err)
}
