package server

import (
	"context"
	"errors"
	"slices"
	"time"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
	"github.com/ftcplatform/platform/internal/services/review/domain"
	"github.com/ftcplatform/platform/internal/services/review/filter"
	"github.com/ftcplatform/platform/internal/services/review/storage"
)

type domainStoreAdapter struct {
	store storage.Store
}

func newDomainStoreAdapter(store storage.Store) *domainStoreAdapter {
	return &domainStoreAdapter{store: store}
}

// NewDomainStore exposes a storage implementation through the domain store
// contract, translating records and storage errors.
func NewDomainStore(store storage.Store) domain.Store {
	return newDomainStoreAdapter(store)
}

func (a *domainStoreAdapter) ready() error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return nil
}

func (a *domainStoreAdapter) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	if err := a.ready(); err != nil {
		return domain.Event{}, err
	}
	record, err := a.store.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, mapStorageError(err)
	}
	return domain.Event{ID: record.ID, Name: record.Name}, nil
}

func (a *domainStoreAdapter) ListEventQuestions(ctx context.Context, eventID string) ([]domain.Question, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	records, err := a.store.ListEventQuestions(ctx, eventID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	questions := make([]domain.Question, 0, len(records))
	for _, record := range records {
		questions = append(questions, domain.Question{
			ID:       record.ID,
			EventID:  record.EventID,
			Key:      record.Key,
			Prompt:   record.Prompt,
			Required: record.Required,
			Order:    record.Position,
		})
	}
	return questions, nil
}

func (a *domainStoreAdapter) GetApplicant(ctx context.Context, userID string) (domain.Applicant, error) {
	if err := a.ready(); err != nil {
		return domain.Applicant{}, err
	}
	record, err := a.store.GetApplicant(ctx, userID)
	if err != nil {
		return domain.Applicant{}, mapStorageError(err)
	}
	return toDomainApplicant(record), nil
}

func (a *domainStoreAdapter) UpdateApplicantAnnotations(ctx context.Context, userID string, notes string, labels []string, updatedAt time.Time) (domain.Applicant, error) {
	if err := a.ready(); err != nil {
		return domain.Applicant{}, err
	}
	record, err := a.store.UpdateApplicantAnnotations(ctx, userID, notes, labels, updatedAt)
	if err != nil {
		return domain.Applicant{}, mapStorageError(err)
	}
	return toDomainApplicant(record), nil
}

func (a *domainStoreAdapter) PutApplication(ctx context.Context, application domain.Application) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapStorageError(a.store.PutApplication(ctx, toStorageApplication(application)))
}

func (a *domainStoreAdapter) GetApplication(ctx context.Context, applicationID string) (domain.Application, error) {
	if err := a.ready(); err != nil {
		return domain.Application{}, err
	}
	record, err := a.store.GetApplication(ctx, applicationID)
	if err != nil {
		return domain.Application{}, mapStorageError(err)
	}
	return toDomainApplication(record), nil
}

func (a *domainStoreAdapter) ListEventApplications(ctx context.Context, query domain.ApplicationQuery) (domain.ApplicationPage, error) {
	if err := a.ready(); err != nil {
		return domain.ApplicationPage{}, err
	}
	cond, err := filter.ParseApplicationFilter(query.Filter)
	if err != nil {
		return domain.ApplicationPage{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "invalid filter", err)
	}
	page, err := a.store.ListEventApplications(ctx, storage.ApplicationQuery{
		EventID:   query.EventID,
		Status:    string(query.Status),
		Where:     cond.Clause,
		WhereArgs: cond.Params,
		OrderBy:   query.OrderBy,
		Limit:     query.PageSize,
		PageToken: query.PageToken,
	})
	if err != nil {
		return domain.ApplicationPage{}, mapStorageError(err)
	}
	applications := make([]domain.Application, 0, len(page.Applications))
	for _, record := range page.Applications {
		applications = append(applications, toDomainApplication(record))
	}
	return domain.ApplicationPage{Applications: applications, NextPageToken: page.NextPageToken}, nil
}

func (a *domainStoreAdapter) UpdateApplicationStatus(ctx context.Context, update domain.StatusUpdate) (domain.Application, error) {
	if err := a.ready(); err != nil {
		return domain.Application{}, err
	}
	record, err := a.store.UpdateApplicationStatus(ctx, storage.StatusUpdate{
		ApplicationID: update.ApplicationID,
		FromStatus:    string(update.From),
		ToStatus:      string(update.To),
		UpdatedAt:     update.UpdatedAt,
		SubmittedAt:   update.SubmittedAt,
	})
	if err != nil {
		return domain.Application{}, mapStorageError(err)
	}
	return toDomainApplication(record), nil
}

func (a *domainStoreAdapter) ListApplicationResponses(ctx context.Context, applicationID string) ([]domain.Response, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	records, err := a.store.ListApplicationResponses(ctx, applicationID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	responses := make([]domain.Response, 0, len(records))
	for _, record := range records {
		responses = append(responses, domain.Response{
			ApplicationID: record.ApplicationID,
			QuestionID:    record.QuestionID,
			QuestionKey:   record.QuestionKey,
			Answer:        record.Answer,
			UpdatedAt:     record.UpdatedAt,
		})
	}
	return responses, nil
}

func (a *domainStoreAdapter) PutResponse(ctx context.Context, response domain.Response) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapStorageError(a.store.PutResponse(ctx, storage.ResponseRecord{
		ApplicationID: response.ApplicationID,
		QuestionID:    response.QuestionID,
		QuestionKey:   response.QuestionKey,
		Answer:        response.Answer,
		UpdatedAt:     response.UpdatedAt,
	}))
}

func (a *domainStoreAdapter) PutAssignment(ctx context.Context, assignment domain.Assignment) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapStorageError(a.store.PutAssignment(ctx, storage.AssignmentRecord{
		ApplicationID: assignment.ApplicationID,
		ReviewerID:    assignment.ReviewerID,
		Stage:         string(assignment.Stage),
		Priority:      assignment.Priority,
		Notes:         assignment.Notes,
		AssignedAt:    assignment.AssignedAt,
	}))
}

func (a *domainStoreAdapter) GetAssignment(ctx context.Context, applicationID string, reviewerID string, stage domain.Stage) (domain.Assignment, error) {
	if err := a.ready(); err != nil {
		return domain.Assignment{}, err
	}
	record, err := a.store.GetAssignment(ctx, applicationID, reviewerID, string(stage))
	if err != nil {
		return domain.Assignment{}, mapStorageError(err)
	}
	return domain.Assignment{
		ApplicationID: record.ApplicationID,
		ReviewerID:    record.ReviewerID,
		Stage:         domain.Stage(record.Stage),
		Priority:      record.Priority,
		Notes:         record.Notes,
		AssignedAt:    record.AssignedAt,
	}, nil
}

func (a *domainStoreAdapter) PutEvaluation(ctx context.Context, evaluation domain.Evaluation) (domain.Evaluation, error) {
	if err := a.ready(); err != nil {
		return domain.Evaluation{}, err
	}
	record, err := a.store.PutEvaluation(ctx, storage.EvaluationRecord{
		ApplicationID:  evaluation.ApplicationID,
		ReviewerID:     evaluation.ReviewerID,
		Stage:          string(evaluation.Stage),
		OverallScore:   evaluation.OverallScore,
		Recommendation: string(evaluation.Recommendation),
		Comments:       evaluation.Comments,
		CreatedAt:      evaluation.CreatedAt,
		UpdatedAt:      evaluation.UpdatedAt,
	})
	if err != nil {
		return domain.Evaluation{}, mapStorageError(err)
	}
	return toDomainEvaluation(record), nil
}

func (a *domainStoreAdapter) ListEvaluatedApplications(ctx context.Context, eventID string, responseKeys []string) ([]domain.EvaluatedApplication, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	records, err := a.store.ListEvaluatedApplications(ctx, eventID, responseKeys)
	if err != nil {
		return nil, mapStorageError(err)
	}
	candidates := make([]domain.EvaluatedApplication, 0, len(records))
	for _, record := range records {
		evaluations := make([]domain.Evaluation, 0, len(record.Evaluations))
		for _, evaluation := range record.Evaluations {
			evaluations = append(evaluations, toDomainEvaluation(evaluation))
		}
		candidates = append(candidates, domain.EvaluatedApplication{
			Application: toDomainApplication(record.Application),
			Applicant:   toDomainApplicant(record.Applicant),
			Evaluations: evaluations,
			Responses:   record.Responses,
		})
	}
	return candidates, nil
}

func (a *domainStoreAdapter) PutEmail(ctx context.Context, email domain.Email) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapStorageError(a.store.PutEmail(ctx, toStorageEmail(email)))
}

func (a *domainStoreAdapter) GetEmail(ctx context.Context, emailID string) (domain.Email, error) {
	if err := a.ready(); err != nil {
		return domain.Email{}, err
	}
	record, err := a.store.GetEmail(ctx, emailID)
	if err != nil {
		return domain.Email{}, mapStorageError(err)
	}
	return toDomainEmail(record), nil
}

func (a *domainStoreAdapter) ListApplicationEmails(ctx context.Context, applicationID string) ([]domain.Email, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	records, err := a.store.ListApplicationEmails(ctx, applicationID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	emails := make([]domain.Email, 0, len(records))
	for _, record := range records {
		emails = append(emails, toDomainEmail(record))
	}
	return emails, nil
}

func (a *domainStoreAdapter) TransitionEmail(ctx context.Context, transition domain.EmailTransition) (domain.Email, error) {
	if err := a.ready(); err != nil {
		return domain.Email{}, err
	}
	record, err := a.store.TransitionEmail(ctx, storage.EmailTransition{
		EmailID:       transition.EmailID,
		FromStatus:    string(transition.From),
		ToStatus:      string(transition.To),
		At:            transition.At,
		SentAt:        transition.SentAt,
		FailureReason: transition.FailureReason,
	})
	if err != nil {
		return domain.Email{}, mapStorageError(err)
	}
	return toDomainEmail(record), nil
}

func (a *domainStoreAdapter) DeleteEmail(ctx context.Context, emailID string, requiredStatus domain.EmailStatus) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapStorageError(a.store.DeleteEmail(ctx, emailID, string(requiredStatus)))
}

func toDomainApplicant(record storage.ApplicantRecord) domain.Applicant {
	return domain.Applicant{
		UserID:         record.UserID,
		Name:           record.Name,
		Email:          record.Email,
		AdminNotes:     record.AdminNotes,
		AdminLabels:    slices.Clone(record.AdminLabels),
		AdminUpdatedAt: record.AdminUpdatedAt,
	}
}

func toDomainApplication(record storage.ApplicationRecord) domain.Application {
	return domain.Application{
		ID:          record.ID,
		EventID:     record.EventID,
		UserID:      record.UserID,
		Status:      domain.Status(record.Status),
		SubmittedAt: record.SubmittedAt,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func toStorageApplication(application domain.Application) storage.ApplicationRecord {
	return storage.ApplicationRecord{
		ID:          application.ID,
		EventID:     application.EventID,
		UserID:      application.UserID,
		Status:      string(application.Status),
		SubmittedAt: application.SubmittedAt,
		CreatedAt:   application.CreatedAt,
		UpdatedAt:   application.UpdatedAt,
	}
}

func toDomainEvaluation(record storage.EvaluationRecord) domain.Evaluation {
	return domain.Evaluation{
		ApplicationID:  record.ApplicationID,
		ReviewerID:     record.ReviewerID,
		Stage:          domain.Stage(record.Stage),
		OverallScore:   record.OverallScore,
		Recommendation: domain.Recommendation(record.Recommendation),
		Comments:       record.Comments,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func toDomainEmail(record storage.EmailRecord) domain.Email {
	return domain.Email{
		ID:            record.ID,
		ApplicationID: record.ApplicationID,
		Type:          domain.EmailType(record.Type),
		Status:        domain.EmailStatus(record.Status),
		Recipient:     record.Recipient,
		Subject:       record.Subject,
		MissingFields: slices.Clone(record.MissingFields),
		HTMLContent:   record.HTMLContent,
		TextContent:   record.TextContent,
		FailureReason: record.FailureReason,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
		SentAt:        record.SentAt,
	}
}

func toStorageEmail(email domain.Email) storage.EmailRecord {
	return storage.EmailRecord{
		ID:            email.ID,
		ApplicationID: email.ApplicationID,
		Type:          string(email.Type),
		Status:        string(email.Status),
		Recipient:     email.Recipient,
		Subject:       email.Subject,
		MissingFields: slices.Clone(email.MissingFields),
		HTMLContent:   email.HTMLContent,
		TextContent:   email.TextContent,
		FailureReason: email.FailureReason,
		CreatedAt:     email.CreatedAt,
		UpdatedAt:     email.UpdatedAt,
		SentAt:        email.SentAt,
	}
}

// mapStorageError translates storage sentinels to domain errors. Any other
// failure is a dependency failure the caller may retry.
func mapStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return domain.ErrConflict
	case errors.Is(err, storage.ErrInvalidPageToken):
		return domain.ErrInvalidPageToken
	case apperrors.CodeOf(err) != apperrors.CodeUnknown:
		return err
	default:
		return apperrors.Wrap(apperrors.CodeUnavailable, "review store unavailable", err)
	}
}

var _ domain.Store = (*domainStoreAdapter)(nil)
