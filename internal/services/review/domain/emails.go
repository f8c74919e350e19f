package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ftcplatform/platform/internal/platform/timeouts"
)

// CheckApplication reports which required questions the application has not
// answered. It reads current responses and persists nothing.
func (s *Service) CheckApplication(ctx context.Context, applicationID string) (CheckResult, error) {
	if s == nil || s.store == nil {
		return CheckResult{}, ErrStoreNotConfigured
	}
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return CheckResult{}, ErrApplicationIDRequired
	}
	application, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return CheckResult{}, err
	}
	questions, err := s.store.ListEventQuestions(ctx, application.EventID)
	if err != nil {
		return CheckResult{}, err
	}
	return s.check(ctx, application.ID, questions)
}

// CheckEventApplications runs the completeness check for every application
// of an event, optionally narrowed to one status.
func (s *Service) CheckEventApplications(ctx context.Context, eventID string, status string) ([]CheckResult, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	applications, err := s.listAllEventApplications(ctx, ListApplicationsInput{
		EventID: eventID,
		Status:  status,
	})
	if err != nil {
		return nil, err
	}
	questions, err := s.store.ListEventQuestions(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return nil, err
	}
	results := make([]CheckResult, 0, len(applications))
	for _, application := range applications {
		result, err := s.check(ctx, application.ID, questions)
		if err != nil {
			return nil, fmt.Errorf("check application %s: %w", application.ID, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Service) check(ctx context.Context, applicationID string, questions []Question) (CheckResult, error) {
	responses, err := s.store.ListApplicationResponses(ctx, applicationID)
	if err != nil {
		return CheckResult{}, err
	}
	complete, missing := EvaluateCompleteness(questions, responses)
	return CheckResult{
		ApplicationID: applicationID,
		IsComplete:    complete,
		MissingFields: missing,
		CheckedAt:     s.nowUTC(),
	}, nil
}

// CreateMissingInfoEmail drafts a missing-information email from the caller's
// last completeness check. The check is trusted as given and not re-run, so
// the draft reflects responses as they were when the check ran.
func (s *Service) CreateMissingInfoEmail(ctx context.Context, input CreateMissingInfoEmailInput) (Email, error) {
	if s == nil || s.store == nil {
		return Email{}, ErrStoreNotConfigured
	}
	if s.renderer == nil {
		return Email{}, ErrRendererNotConfigured
	}
	applicationID := strings.TrimSpace(input.ApplicationID)
	if applicationID == "" {
		return Email{}, ErrApplicationIDRequired
	}
	check := input.Check
	if strings.TrimSpace(check.ApplicationID) == "" {
		return Email{}, ErrCheckRequired
	}
	if strings.TrimSpace(check.ApplicationID) != applicationID {
		return Email{}, ErrCheckMismatch
	}
	if check.IsComplete || len(check.MissingFields) == 0 {
		return Email{}, ErrCheckComplete
	}

	application, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return Email{}, err
	}
	applicant, err := s.store.GetApplicant(ctx, application.UserID)
	if err != nil {
		return Email{}, err
	}
	recipient := strings.TrimSpace(applicant.Email)
	if recipient == "" {
		return Email{}, ErrEmailRecipientMissing
	}
	event, err := s.store.GetEvent(ctx, application.EventID)
	if err != nil {
		return Email{}, err
	}
	questions, err := s.store.ListEventQuestions(ctx, application.EventID)
	if err != nil {
		return Email{}, err
	}
	prompts := make(map[string]string, len(questions))
	for _, question := range questions {
		prompts[question.Key] = question.Prompt
	}

	missingFields := append([]string(nil), check.MissingFields...)
	content := MissingInfoContent{
		Locale:        s.locale(input.Locale),
		ApplicantName: applicant.DisplayName(),
		EventName:     event.Name,
		MissingFields: make([]MissingField, 0, len(missingFields)),
	}
	for _, key := range missingFields {
		prompt := prompts[key]
		if prompt == "" {
			prompt = key
		}
		content.MissingFields = append(content.MissingFields, MissingField{Key: key, Prompt: prompt})
	}
	rendered, err := s.renderer.RenderMissingInfo(content)
	if err != nil {
		return Email{}, fmt.Errorf("render missing info email: %w", err)
	}

	emailID, err := s.newID()
	if err != nil {
		return Email{}, err
	}
	now := s.nowUTC()
	email := Email{
		ID:            emailID,
		ApplicationID: applicationID,
		Type:          EmailTypeMissingInfo,
		Status:        EmailStatusDraft,
		Recipient:     recipient,
		Subject:       rendered.Subject,
		MissingFields: missingFields,
		HTMLContent:   rendered.HTML,
		TextContent:   rendered.Text,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.PutEmail(ctx, email); err != nil {
		return Email{}, err
	}
	return email, nil
}

// SendEmail sends a DRAFT email. Unless bypassSafety is set, an unsafe
// policy snapshot leaves the email in DRAFT and reports an unsuccessful
// result. A failed safety lookup is returned as a transient error.
func (s *Service) SendEmail(ctx context.Context, emailID string, bypassSafety bool) (SendResult, error) {
	if s == nil || s.store == nil {
		return SendResult{}, ErrStoreNotConfigured
	}
	emailID = strings.TrimSpace(emailID)
	if emailID == "" {
		return SendResult{}, ErrEmailIDRequired
	}
	email, err := s.getEmail(ctx, emailID)
	if err != nil {
		return SendResult{}, err
	}
	if email.Status != EmailStatusDraft {
		return SendResult{Error: fmt.Sprintf("email is %s, only drafts can be sent", email.Status), Email: email}, nil
	}
	if !bypassSafety {
		snapshot, err := s.EmailSafety(ctx)
		if err != nil {
			return SendResult{}, err
		}
		if !snapshot.Safe {
			return SendResult{Error: unsafeReason(snapshot), Email: email}, nil
		}
	}

	queued, err := s.store.TransitionEmail(ctx, EmailTransition{
		EmailID: emailID,
		From:    EmailStatusDraft,
		To:      EmailStatusQueued,
		At:      s.nowUTC(),
	})
	if errors.Is(err, ErrConflict) {
		current, getErr := s.getEmail(ctx, emailID)
		if getErr != nil {
			current = email
		}
		return SendResult{Error: "email is no longer a draft", Email: current}, nil
	}
	if err != nil {
		return SendResult{}, err
	}

	// Once claimed, the outcome is written even if the caller goes away.
	outcomeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.EmailSend+timeouts.StoreWrite)
	defer cancel()

	if sendErr := s.deliver(ctx, queued); sendErr != nil {
		failed, err := s.store.TransitionEmail(outcomeCtx, EmailTransition{
			EmailID:       emailID,
			From:          EmailStatusQueued,
			To:            EmailStatusFailed,
			At:            s.nowUTC(),
			FailureReason: sendErr.Error(),
		})
		if err != nil {
			return SendResult{}, err
		}
		return SendResult{Error: sendErr.Error(), Email: failed}, nil
	}

	sentAt := s.nowUTC()
	sent, err := s.store.TransitionEmail(outcomeCtx, EmailTransition{
		EmailID: emailID,
		From:    EmailStatusQueued,
		To:      EmailStatusSent,
		At:      sentAt,
		SentAt:  &sentAt,
	})
	if err != nil {
		return SendResult{}, err
	}
	if recorder, ok := s.safety.(SendRecorder); ok {
		if err := recorder.RecordSend(outcomeCtx, sent, sentAt); err != nil {
			log.Printf("record email send %s: %v", sent.ID, err)
		}
	}
	return SendResult{Success: true, Email: sent}, nil
}

func (s *Service) deliver(ctx context.Context, email Email) error {
	if s.sender == nil {
		return errors.New("email sender is not configured")
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeouts.EmailSend)
	defer cancel()
	return s.sender.Send(sendCtx, email)
}

// EmailSafety returns the current outbound email policy verdict. Without a
// configured policy every send is unsafe.
func (s *Service) EmailSafety(ctx context.Context) (SafetySnapshot, error) {
	if s == nil || s.safety == nil {
		return SafetySnapshot{Safe: false, Reason: "email safety policy is not configured", CheckedAt: s.nowUTC()}, nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeouts.SafetyFetch)
	defer cancel()
	snapshot, err := s.safety.Snapshot(fetchCtx)
	if err != nil {
		return SafetySnapshot{}, unavailable("fetch email safety", err)
	}
	return snapshot, nil
}

// DeleteEmail permanently removes a DRAFT email. Any other status is left
// untouched and reported with Deleted false.
func (s *Service) DeleteEmail(ctx context.Context, emailID string) (DeleteEmailResult, error) {
	if s == nil || s.store == nil {
		return DeleteEmailResult{}, ErrStoreNotConfigured
	}
	emailID = strings.TrimSpace(emailID)
	if emailID == "" {
		return DeleteEmailResult{}, ErrEmailIDRequired
	}
	email, err := s.getEmail(ctx, emailID)
	if err != nil {
		return DeleteEmailResult{}, err
	}
	if email.Status != EmailStatusDraft {
		return DeleteEmailResult{Status: email.Status}, nil
	}
	err = s.store.DeleteEmail(ctx, emailID, EmailStatusDraft)
	if errors.Is(err, ErrConflict) {
		current, getErr := s.getEmail(ctx, emailID)
		if getErr != nil {
			return DeleteEmailResult{}, getErr
		}
		return DeleteEmailResult{Status: current.Status}, nil
	}
	if err != nil {
		return DeleteEmailResult{}, err
	}
	return DeleteEmailResult{Deleted: true, Status: EmailStatusDraft}, nil
}

// CancelEmail moves a DRAFT email to CANCELLED, keeping it for the audit trail.
func (s *Service) CancelEmail(ctx context.Context, emailID string) (Email, error) {
	if s == nil || s.store == nil {
		return Email{}, ErrStoreNotConfigured
	}
	emailID = strings.TrimSpace(emailID)
	if emailID == "" {
		return Email{}, ErrEmailIDRequired
	}
	cancelled, err := s.store.TransitionEmail(ctx, EmailTransition{
		EmailID: emailID,
		From:    EmailStatusDraft,
		To:      EmailStatusCancelled,
		At:      s.nowUTC(),
	})
	if errors.Is(err, ErrConflict) {
		current, getErr := s.getEmail(ctx, emailID)
		if getErr != nil {
			return Email{}, getErr
		}
		return Email{}, emailNotDraftError(current.Status)
	}
	return cancelled, err
}

// GetEmail returns one email.
func (s *Service) GetEmail(ctx context.Context, emailID string) (Email, error) {
	if s == nil || s.store == nil {
		return Email{}, ErrStoreNotConfigured
	}
	emailID = strings.TrimSpace(emailID)
	if emailID == "" {
		return Email{}, ErrEmailIDRequired
	}
	return s.getEmail(ctx, emailID)
}

// ListApplicationEmails lists an application's emails, oldest first.
func (s *Service) ListApplicationEmails(ctx context.Context, applicationID string) ([]Email, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return nil, ErrApplicationIDRequired
	}
	emails, err := s.store.ListApplicationEmails(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	for i, email := range emails {
		if emails[i], err = s.settleStaleQueued(ctx, email); err != nil {
			return nil, err
		}
	}
	return emails, nil
}

func (s *Service) getEmail(ctx context.Context, emailID string) (Email, error) {
	email, err := s.store.GetEmail(ctx, emailID)
	if err != nil {
		return Email{}, err
	}
	return s.settleStaleQueued(ctx, email)
}

// settleStaleQueued marks an email FAILED once it has been QUEUED longer
// than any delivery attempt may run. Whether that attempt reached the
// recipient is unknown, so it is never retried automatically.
func (s *Service) settleStaleQueued(ctx context.Context, email Email) (Email, error) {
	if email.Status != EmailStatusQueued {
		return email, nil
	}
	now := s.nowUTC()
	if now.Sub(email.UpdatedAt) < timeouts.QueuedStale {
		return email, nil
	}
	failed, err := s.store.TransitionEmail(ctx, EmailTransition{
		EmailID:       email.ID,
		From:          EmailStatusQueued,
		To:            EmailStatusFailed,
		At:            now,
		FailureReason: FailureReasonOutcomeUnknown,
	})
	if errors.Is(err, ErrConflict) {
		return s.store.GetEmail(ctx, email.ID)
	}
	if err != nil {
		return Email{}, err
	}
	return failed, nil
}

func (s *Service) locale(requested string) string {
	if locale := strings.TrimSpace(requested); locale != "" {
		return locale
	}
	return s.emailLocale
}

func unsafeReason(snapshot SafetySnapshot) string {
	if reason := strings.TrimSpace(snapshot.Reason); reason != "" {
		return reason
	}
	return "email sending is currently unsafe"
}
