package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
	"github.com/ftcplatform/platform/internal/services/review/domain"
	"github.com/ftcplatform/platform/internal/services/review/storage"
	"github.com/ftcplatform/platform/internal/services/review/storage/sqlite"
)

var adapterNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func openAdapter(t *testing.T) (*domainStoreAdapter, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "review.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.PutEvent(ctx, storage.EventRecord{ID: "event-1", Name: "Summit", CreatedAt: adapterNow}); err != nil {
		t.Fatalf("put event: %v", err)
	}
	for i, key := range []string{"name", "nationality"} {
		if err := store.PutQuestion(ctx, storage.QuestionRecord{
			ID:       "q-" + key,
			EventID:  "event-1",
			Key:      key,
			Prompt:   key,
			Required: key == "name",
			Position: i + 1,
		}); err != nil {
			t.Fatalf("put question: %v", err)
		}
	}
	if err := store.PutApplicant(ctx, storage.ApplicantRecord{UserID: "user-1", Name: "Ana", Email: "ana@example.com"}); err != nil {
		t.Fatalf("put applicant: %v", err)
	}
	return newDomainStoreAdapter(store), store
}

func TestAdapterApplicationRoundTrip(t *testing.T) {
	adapter, _ := openAdapter(t)
	ctx := context.Background()

	application := domain.Application{
		ID:        "app-1",
		EventID:   "event-1",
		UserID:    "user-1",
		Status:    domain.StatusDraft,
		CreatedAt: adapterNow,
		UpdatedAt: adapterNow,
	}
	if err := adapter.PutApplication(ctx, application); err != nil {
		t.Fatalf("put application: %v", err)
	}
	if err := adapter.PutApplication(ctx, application); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate put = %v, want ErrConflict", err)
	}

	submittedAt := adapterNow.Add(time.Minute)
	updated, err := adapter.UpdateApplicationStatus(ctx, domain.StatusUpdate{
		ApplicationID: "app-1",
		From:          domain.StatusDraft,
		To:            domain.StatusSubmitted,
		UpdatedAt:     submittedAt,
		SubmittedAt:   &submittedAt,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.StatusSubmitted || updated.SubmittedAt == nil || !updated.SubmittedAt.Equal(submittedAt) {
		t.Fatalf("updated = %+v", updated)
	}

	_, err = adapter.UpdateApplicationStatus(ctx, domain.StatusUpdate{
		ApplicationID: "app-1",
		From:          domain.StatusDraft,
		To:            domain.StatusCancelled,
		UpdatedAt:     adapterNow,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("stale guard = %v, want ErrConflict", err)
	}

	if _, err := adapter.GetApplication(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
}

func TestAdapterListAppliesFilter(t *testing.T) {
	adapter, store := openAdapter(t)
	ctx := context.Background()
	for i, status := range []domain.Status{domain.StatusDraft, domain.StatusSubmitted} {
		userID := fmt.Sprintf("user-%d", i+10)
		if err := store.PutApplicant(ctx, storage.ApplicantRecord{UserID: userID, Name: userID}); err != nil {
			t.Fatalf("put applicant: %v", err)
		}
		if err := adapter.PutApplication(ctx, domain.Application{
			ID:        fmt.Sprintf("app-%d", i),
			EventID:   "event-1",
			UserID:    userID,
			Status:    status,
			CreatedAt: adapterNow.Add(time.Duration(i) * time.Minute),
			UpdatedAt: adapterNow,
		}); err != nil {
			t.Fatalf("put application: %v", err)
		}
	}

	page, err := adapter.ListEventApplications(ctx, domain.ApplicationQuery{
		EventID:  "event-1",
		Filter:   `status = "SUBMITTED"`,
		OrderBy:  "created_at",
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Applications) != 1 || page.Applications[0].ID != "app-1" || page.NextPageToken != "" {
		t.Fatalf("page = %+v", page)
	}

	first, err := adapter.ListEventApplications(ctx, domain.ApplicationQuery{EventID: "event-1", OrderBy: "created_at", PageSize: 1})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Applications) != 1 || first.Applications[0].ID != "app-0" || first.NextPageToken == "" {
		t.Fatalf("first page = %+v", first)
	}
	second, err := adapter.ListEventApplications(ctx, domain.ApplicationQuery{EventID: "event-1", OrderBy: "created_at", PageSize: 1, PageToken: first.NextPageToken})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Applications) != 1 || second.Applications[0].ID != "app-1" || second.NextPageToken != "" {
		t.Fatalf("second page = %+v", second)
	}
	_, err = adapter.ListEventApplications(ctx, domain.ApplicationQuery{EventID: "event-1", OrderBy: "created_at desc", PageSize: 1, PageToken: first.NextPageToken})
	if !errors.Is(err, domain.ErrInvalidPageToken) {
		t.Fatalf("token under other order = %v, want ErrInvalidPageToken", err)
	}

	_, err = adapter.ListEventApplications(ctx, domain.ApplicationQuery{EventID: "event-1", Filter: `rating > 2`})
	if got := apperrors.CodeOf(err); got != apperrors.CodeFilterInvalid {
		t.Fatalf("bad filter code = %s, want %s", got, apperrors.CodeFilterInvalid)
	}
}

func TestAdapterResponsesCarryQuestionKeys(t *testing.T) {
	adapter, _ := openAdapter(t)
	ctx := context.Background()
	if err := adapter.PutApplication(ctx, domain.Application{ID: "app-1", EventID: "event-1", UserID: "user-1", Status: domain.StatusDraft, CreatedAt: adapterNow, UpdatedAt: adapterNow}); err != nil {
		t.Fatalf("put application: %v", err)
	}
	if err := adapter.PutResponse(ctx, domain.Response{ApplicationID: "app-1", QuestionID: "q-nationality", Answer: "Chilean", UpdatedAt: adapterNow}); err != nil {
		t.Fatalf("put response: %v", err)
	}
	responses, err := adapter.ListApplicationResponses(ctx, "app-1")
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(responses) != 1 || responses[0].QuestionKey != "nationality" {
		t.Fatalf("responses = %+v", responses)
	}
	if err := adapter.PutResponse(ctx, domain.Response{ApplicationID: "app-1", QuestionID: "q-missing", Answer: "x", UpdatedAt: adapterNow}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown question = %v, want ErrNotFound", err)
	}
}

func TestAdapterEmailGuards(t *testing.T) {
	adapter, _ := openAdapter(t)
	ctx := context.Background()
	if err := adapter.PutApplication(ctx, domain.Application{ID: "app-1", EventID: "event-1", UserID: "user-1", Status: domain.StatusSubmitted, CreatedAt: adapterNow, UpdatedAt: adapterNow}); err != nil {
		t.Fatalf("put application: %v", err)
	}
	email := domain.Email{
		ID:            "email-1",
		ApplicationID: "app-1",
		Type:          domain.EmailTypeMissingInfo,
		Status:        domain.EmailStatusDraft,
		Recipient:     "ana@example.com",
		Subject:       "Missing information",
		MissingFields: []string{"name"},
		CreatedAt:     adapterNow,
		UpdatedAt:     adapterNow,
	}
	if err := adapter.PutEmail(ctx, email); err != nil {
		t.Fatalf("put email: %v", err)
	}
	sentAt := adapterNow.Add(time.Minute)
	if _, err := adapter.TransitionEmail(ctx, domain.EmailTransition{EmailID: "email-1", From: domain.EmailStatusDraft, To: domain.EmailStatusSent, At: sentAt, SentAt: &sentAt}); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := adapter.DeleteEmail(ctx, "email-1", domain.EmailStatusDraft); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("delete sent = %v, want ErrConflict", err)
	}
	stored, err := adapter.GetEmail(ctx, "email-1")
	if err != nil {
		t.Fatalf("get email: %v", err)
	}
	if stored.Status != domain.EmailStatusSent || len(stored.MissingFields) != 1 || stored.SentAt == nil {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestMapStorageError(t *testing.T) {
	coded := apperrors.New(apperrors.CodeFilterInvalid, "bad")
	cases := []struct {
		name string
		err  error
		want apperrors.Code
	}{
		{name: "not found", err: fmt.Errorf("wrap: %w", storage.ErrNotFound), want: apperrors.CodeNotFound},
		{name: "conflict", err: storage.ErrConflict, want: apperrors.CodeAlreadyExists},
		{name: "page token", err: storage.ErrInvalidPageToken, want: apperrors.CodePageTokenInvalid},
		{name: "coded", err: coded, want: apperrors.CodeFilterInvalid},
		{name: "other", err: errors.New("disk full"), want: apperrors.CodeUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := apperrors.CodeOf(mapStorageError(tc.err)); got != tc.want {
				t.Fatalf("code = %s, want %s", got, tc.want)
			}
		})
	}
	if mapStorageError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
	if !apperrors.IsTransient(mapStorageError(errors.New("timeout"))) {
		t.Fatal("expected unknown storage failures to be transient")
	}
}

func TestNilAdapterReportsNotConfigured(t *testing.T) {
	var adapter *domainStoreAdapter
	if _, err := adapter.GetEvent(context.Background(), "event-1"); !errors.Is(err, domain.ErrStoreNotConfigured) {
		t.Fatalf("err = %v, want ErrStoreNotConfigured", err)
	}
}
