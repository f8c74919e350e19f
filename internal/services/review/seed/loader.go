package seed

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/ftcplatform/platform/internal/services/review/domain"
	"github.com/ftcplatform/platform/internal/services/review/storage"
)

// Target is the storage surface the loader writes through.
type Target interface {
	PutEvent(ctx context.Context, record storage.EventRecord) error
	PutQuestion(ctx context.Context, record storage.QuestionRecord) error
	PutApplicant(ctx context.Context, record storage.ApplicantRecord) error
	UpdateApplicantAnnotations(ctx context.Context, userID string, notes string, labels []string, updatedAt time.Time) (storage.ApplicantRecord, error)
	PutApplication(ctx context.Context, record storage.ApplicationRecord) error
	PutResponse(ctx context.Context, record storage.ResponseRecord) error
}

// Summary counts loaded records.
type Summary struct {
	Events       int
	Questions    int
	Applicants   int
	Applications int
	Responses    int
	Skipped      int
}

// Load writes the fixture into target. Applications that already exist are
// skipped so loading the same fixture twice is safe.
func Load(ctx context.Context, target Target, fixture Fixture, now time.Time) (Summary, error) {
	if target == nil {
		return Summary{}, fmt.Errorf("seed target is required")
	}
	if err := fixture.Validate(); err != nil {
		return Summary{}, err
	}
	now = now.UTC()
	summary := Summary{}

	questionIDs := make(map[string]map[string]string, len(fixture.Events))
	for _, event := range fixture.Events {
		if err := target.PutEvent(ctx, storage.EventRecord{ID: event.ID, Name: event.Name, CreatedAt: now}); err != nil {
			return summary, fmt.Errorf("event %s: %w", event.ID, err)
		}
		summary.Events++
		ids := make(map[string]string, len(event.Questions))
		for i, question := range event.Questions {
			record := storage.QuestionRecord{
				ID:       question.ID,
				EventID:  event.ID,
				Key:      question.Key,
				Prompt:   question.Prompt,
				Required: question.Required,
				Position: question.Order,
			}
			if strings.TrimSpace(record.ID) == "" {
				record.ID = event.ID + ":" + question.Key
			}
			if record.Position == 0 {
				record.Position = i + 1
			}
			if err := target.PutQuestion(ctx, record); err != nil {
				return summary, fmt.Errorf("event %s question %s: %w", event.ID, question.Key, err)
			}
			ids[question.Key] = record.ID
			summary.Questions++
		}
		questionIDs[event.ID] = ids
	}

	for _, applicant := range fixture.Applicants {
		record := storage.ApplicantRecord{UserID: applicant.UserID, Name: applicant.Name, Email: applicant.Email}
		if err := target.PutApplicant(ctx, record); err != nil {
			return summary, fmt.Errorf("applicant %s: %w", applicant.UserID, err)
		}
		if applicant.Notes != "" || len(applicant.Labels) > 0 {
			if _, err := target.UpdateApplicantAnnotations(ctx, applicant.UserID, applicant.Notes, applicant.Labels, now); err != nil {
				return summary, fmt.Errorf("applicant %s annotations: %w", applicant.UserID, err)
			}
		}
		summary.Applicants++
	}

	for _, application := range fixture.Applications {
		status := domain.StatusDraft
		if strings.TrimSpace(application.Status) != "" {
			parsed, err := domain.ParseStatus(application.Status)
			if err != nil {
				return summary, fmt.Errorf("application %s: %w", application.ID, err)
			}
			status = parsed
		}
		record := storage.ApplicationRecord{
			ID:        application.ID,
			EventID:   application.EventID,
			UserID:    application.UserID,
			Status:    string(status),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if status != domain.StatusDraft {
			submitted := now
			record.SubmittedAt = &submitted
		}
		err := target.PutApplication(ctx, record)
		if errors.Is(err, storage.ErrConflict) {
			summary.Skipped++
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("application %s: %w", application.ID, err)
		}
		summary.Applications++

		ids := questionIDs[application.EventID]
		for _, key := range slices.Sorted(maps.Keys(application.Responses)) {
			response := storage.ResponseRecord{
				ApplicationID: application.ID,
				QuestionID:    ids[key],
				QuestionKey:   key,
				Answer:        application.Responses[key],
				UpdatedAt:     now,
			}
			if err := target.PutResponse(ctx, response); err != nil {
				return summary, fmt.Errorf("application %s response %s: %w", application.ID, key, err)
			}
			summary.Responses++
		}
	}
	return summary, nil
}
