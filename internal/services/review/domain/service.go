package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
	"github.com/ftcplatform/platform/internal/platform/id"
	"github.com/ftcplatform/platform/internal/platform/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ftcplatform/platform/internal/services/review/domain"

var (
	applicationPageSize = pagination.PageSizeConfig{Default: 200, Max: 1000}
	applicationOrderBy  = pagination.OrderByConfig{
		Default: "created_at",
		Allowed: []string{"created_at", "created_at desc", "submitted_at", "submitted_at desc", "updated_at", "updated_at desc"},
	}
)

// Service orchestrates the application review pipeline.
type Service struct {
	store       Store
	clock       func() time.Time
	newID       func() (string, error)
	safety      SafetyChecker
	sender      Sender
	renderer    EmailRenderer
	emailLocale string
	tracer      trace.Tracer
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithSafetyChecker sets the outbound email policy.
func WithSafetyChecker(checker SafetyChecker) Option {
	return func(s *Service) { s.safety = checker }
}

// WithSender sets the email transport.
func WithSender(sender Sender) Option {
	return func(s *Service) { s.sender = sender }
}

// WithRenderer sets the email renderer.
func WithRenderer(renderer EmailRenderer) Option {
	return func(s *Service) { s.renderer = renderer }
}

// WithEmailLocale sets the locale used when a draft request names none.
func WithEmailLocale(locale string) Option {
	return func(s *Service) { s.emailLocale = strings.TrimSpace(locale) }
}

// NewService constructs review use-cases.
func NewService(store Store, clock func() time.Time, newID func() (string, error), opts ...Option) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	s := &Service{
		store:  store,
		clock:  clock,
		newID:  newID,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateApplication creates a DRAFT application for an existing event.
func (s *Service) CreateApplication(ctx context.Context, input CreateApplicationInput) (Application, error) {
	if s == nil || s.store == nil {
		return Application{}, ErrStoreNotConfigured
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return Application{}, ErrEventIDRequired
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return Application{}, ErrUserIDRequired
	}
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return Application{}, err
	}
	if _, err := s.store.GetApplicant(ctx, userID); err != nil {
		return Application{}, err
	}
	applicationID, err := s.newID()
	if err != nil {
		return Application{}, err
	}
	now := s.nowUTC()
	application := Application{
		ID:        applicationID,
		EventID:   eventID,
		UserID:    userID,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.PutApplication(ctx, application); err != nil {
		return Application{}, err
	}
	return application, nil
}

// GetApplication returns one application.
func (s *Service) GetApplication(ctx context.Context, applicationID string) (Application, error) {
	if s == nil || s.store == nil {
		return Application{}, ErrStoreNotConfigured
	}
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return Application{}, ErrApplicationIDRequired
	}
	return s.store.GetApplication(ctx, applicationID)
}

// ListEventApplications lists one page of an event's applications,
// optionally narrowed to one status and a filter expression. Callers follow
// NextPageToken until it is empty to see every application.
func (s *Service) ListEventApplications(ctx context.Context, input ListApplicationsInput) (ApplicationPage, error) {
	if s == nil || s.store == nil {
		return ApplicationPage{}, ErrStoreNotConfigured
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return ApplicationPage{}, ErrEventIDRequired
	}
	query := ApplicationQuery{
		EventID:   eventID,
		Filter:    strings.TrimSpace(input.Filter),
		PageSize:  pagination.ClampPageSize(input.PageSize, applicationPageSize),
		PageToken: strings.TrimSpace(input.PageToken),
	}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			return ApplicationPage{}, err
		}
		query.Status = status
	}
	orderBy, err := pagination.NormalizeOrderBy(input.OrderBy, applicationOrderBy)
	if err != nil {
		return ApplicationPage{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "invalid order_by", err)
	}
	query.OrderBy = orderBy
	return s.store.ListEventApplications(ctx, query)
}

// listAllEventApplications walks every page of an event listing.
func (s *Service) listAllEventApplications(ctx context.Context, input ListApplicationsInput) ([]Application, error) {
	input.PageSize = applicationPageSize.Max
	input.PageToken = ""
	var applications []Application
	for {
		page, err := s.ListEventApplications(ctx, input)
		if err != nil {
			return nil, err
		}
		applications = append(applications, page.Applications...)
		if page.NextPageToken == "" || len(page.Applications) == 0 {
			return applications, nil
		}
		input.PageToken = page.NextPageToken
	}
}

// SetStatus is the administrative override: it applies any valid status
// without consulting the transition graph. Setting the current status again
// rewrites the same value.
func (s *Service) SetStatus(ctx context.Context, applicationID string, status string) (Application, error) {
	if s == nil || s.store == nil {
		return Application{}, ErrStoreNotConfigured
	}
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return Application{}, ErrApplicationIDRequired
	}
	target, err := ParseStatus(status)
	if err != nil {
		return Application{}, err
	}
	return s.store.UpdateApplicationStatus(ctx, s.statusUpdate(applicationID, "", target))
}

// TransitionStatus applies a guarded transition along the progression graph.
// Requesting the current status is a no-op.
func (s *Service) TransitionStatus(ctx context.Context, applicationID string, status string) (Application, error) {
	if s == nil || s.store == nil {
		return Application{}, ErrStoreNotConfigured
	}
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return Application{}, ErrApplicationIDRequired
	}
	target, err := ParseStatus(status)
	if err != nil {
		return Application{}, err
	}
	current, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}
	if current.Status == target {
		return current, nil
	}
	if !CanTransition(current.Status, target) {
		return Application{}, invalidTransitionError(current.Status, target)
	}
	updated, err := s.store.UpdateApplicationStatus(ctx, s.statusUpdate(applicationID, current.Status, target))
	if errors.Is(err, ErrConflict) {
		// The status moved between the read and the guarded write.
		return Application{}, invalidTransitionError(current.Status, target)
	}
	return updated, err
}

// BulkSetStatus applies the administrative override to each application
// independently. Failures never roll back applications already updated; the
// returned error joins the transient failures.
func (s *Service) BulkSetStatus(ctx context.Context, applicationIDs []string, status string) (BulkStatusResult, error) {
	if s == nil || s.store == nil {
		return BulkStatusResult{}, ErrStoreNotConfigured
	}
	ids := normalizeIDs(applicationIDs)
	if len(ids) == 0 {
		return BulkStatusResult{}, ErrApplicationIDsRequired
	}
	target, err := ParseStatus(status)
	if err != nil {
		return BulkStatusResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "review.BulkSetStatus", trace.WithAttributes(
		attribute.Int("review.bulk.size", len(ids)),
		attribute.String("review.status", string(target)),
	))
	defer span.End()

	result := BulkStatusResult{}
	var transient []error
	for i, applicationID := range ids {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, failRemaining(ids[i:], err)...)
			transient = append(transient, err)
			break
		}
		if _, err := s.store.UpdateApplicationStatus(ctx, s.statusUpdate(applicationID, "", target)); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ApplicationID: applicationID, Err: err})
			if apperrors.IsTransient(err) {
				transient = append(transient, err)
			}
			continue
		}
		result.Updated++
	}

	span.SetAttributes(
		attribute.Int("review.bulk.updated", result.Updated),
		attribute.Int("review.bulk.failed", len(result.Failed)),
	)
	return result, finishBulk(span, transient)
}

// SaveResponse upserts the applicant's answer to one event question.
func (s *Service) SaveResponse(ctx context.Context, input SaveResponseInput) (Response, error) {
	if s == nil || s.store == nil {
		return Response{}, ErrStoreNotConfigured
	}
	applicationID := strings.TrimSpace(input.ApplicationID)
	if applicationID == "" {
		return Response{}, ErrApplicationIDRequired
	}
	questionKey := strings.TrimSpace(input.QuestionKey)
	if questionKey == "" {
		return Response{}, ErrQuestionKeyRequired
	}
	application, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return Response{}, err
	}
	questions, err := s.store.ListEventQuestions(ctx, application.EventID)
	if err != nil {
		return Response{}, err
	}
	var question *Question
	for i := range questions {
		if questions[i].Key == questionKey {
			question = &questions[i]
			break
		}
	}
	if question == nil {
		return Response{}, unknownQuestionError(questionKey)
	}
	response := Response{
		ApplicationID: applicationID,
		QuestionID:    question.ID,
		QuestionKey:   question.Key,
		Answer:        input.Answer,
		UpdatedAt:     s.nowUTC(),
	}
	if err := s.store.PutResponse(ctx, response); err != nil {
		return Response{}, err
	}
	return response, nil
}

// UpdateApplicantAnnotations replaces the admin notes and labels of an applicant.
func (s *Service) UpdateApplicantAnnotations(ctx context.Context, input AnnotationsInput) (Applicant, error) {
	if s == nil || s.store == nil {
		return Applicant{}, ErrStoreNotConfigured
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return Applicant{}, ErrUserIDRequired
	}
	return s.store.UpdateApplicantAnnotations(ctx, userID, strings.TrimSpace(input.Notes), normalizeLabels(input.Labels), s.nowUTC())
}

func (s *Service) statusUpdate(applicationID string, from Status, to Status) StatusUpdate {
	now := s.nowUTC()
	update := StatusUpdate{
		ApplicationID: applicationID,
		From:          from,
		To:            to,
		UpdatedAt:     now,
	}
	if to == StatusSubmitted {
		update.SubmittedAt = &now
	}
	return update
}

func (s *Service) nowUTC() time.Time {
	if s == nil || s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

// normalizeIDs trims ids and drops blanks and duplicates, keeping order.
func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func failRemaining(ids []string, err error) []BulkFailure {
	failures := make([]BulkFailure, 0, len(ids))
	for _, applicationID := range ids {
		failures = append(failures, BulkFailure{ApplicationID: applicationID, Err: err})
	}
	return failures
}

func finishBulk(span trace.Span, transient []error) error {
	if len(transient) == 0 {
		return nil
	}
	err := errors.Join(transient...)
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, "bulk operation had transient failures")
	return err
}
