package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
)

var testNow = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

func newTestStore() *fakeStore {
	store := newFakeStore()
	store.addEvent(Event{ID: "event-1", Name: "Summit"},
		Question{Key: "name", Prompt: "Full name", Required: true, Order: 1},
		Question{Key: "email", Prompt: "Email address", Required: true, Order: 2},
		Question{Key: "bio", Prompt: "Short bio", Required: true, Order: 3},
		Question{Key: "nationality", Prompt: "Nationality", Order: 4},
	)
	store.addApplicant(Applicant{UserID: "user-1", Name: "Ana Souza", Email: "ana@example.com"})
	store.addApplicant(Applicant{UserID: "user-2", Name: "Ben Park", Email: "ben@example.com"})
	store.addApplicant(Applicant{UserID: "user-3", Name: "Cy Noemail"})
	store.addApplication(Application{ID: "app-1", EventID: "event-1", UserID: "user-1", Status: StatusSubmitted})
	store.addApplication(Application{ID: "app-2", EventID: "event-1", UserID: "user-2", Status: StatusUnderReview})
	store.addApplication(Application{ID: "app-3", EventID: "event-1", UserID: "user-3", Status: StatusDraft})
	return store
}

func TestCreateApplicationStartsAsDraft(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	svc := NewService(store, fixedClock(testNow), sequentialIDGenerator("app-new"))

	application, err := svc.CreateApplication(context.Background(), CreateApplicationInput{EventID: " event-1 ", UserID: "user-2"})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if application.ID != "app-new" || application.Status != StatusDraft || application.EventID != "event-1" {
		t.Fatalf("application = %+v", application)
	}
	if !application.CreatedAt.Equal(testNow) || application.SubmittedAt != nil {
		t.Fatalf("timestamps = %+v", application)
	}

	if _, err := svc.CreateApplication(context.Background(), CreateApplicationInput{EventID: "missing", UserID: "user-2"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown event, got %v", err)
	}
	if _, err := svc.CreateApplication(context.Background(), CreateApplicationInput{EventID: "event-1"}); !errors.Is(err, ErrUserIDRequired) {
		t.Fatalf("expected user id required, got %v", err)
	}
}

func TestListEventApplicationsFiltersByStatus(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestStore(), fixedClock(testNow), nil)

	all, err := svc.ListEventApplications(context.Background(), ListApplicationsInput{EventID: "event-1"})
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(all.Applications) != 3 || all.NextPageToken != "" {
		t.Fatalf("applications = %d token = %q, want 3 and no token", len(all.Applications), all.NextPageToken)
	}
	underReview, err := svc.ListEventApplications(context.Background(), ListApplicationsInput{EventID: "event-1", Status: "under_review"})
	if err != nil {
		t.Fatalf("list under review: %v", err)
	}
	if len(underReview.Applications) != 1 || underReview.Applications[0].ID != "app-2" {
		t.Fatalf("under review = %+v", underReview)
	}
	if _, err := svc.ListEventApplications(context.Background(), ListApplicationsInput{EventID: "event-1", Status: "bogus"}); apperrors.CodeOf(err) != apperrors.CodeApplicationInvalidStatus {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := svc.ListEventApplications(context.Background(), ListApplicationsInput{EventID: "event-1", OrderBy: "name"}); apperrors.CodeOf(err) != apperrors.CodeFilterInvalid {
		t.Fatalf("expected invalid order, got %v", err)
	}
	if _, err := svc.ListEventApplications(context.Background(), ListApplicationsInput{}); !errors.Is(err, ErrEventIDRequired) {
		t.Fatalf("expected event id required, got %v", err)
	}
}

func TestSetStatusOverridesTransitionGraph(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	store.addApplication(Application{ID: "app-9", EventID: "event-1", UserID: "user-1", Status: StatusAccepted})
	svc := NewService(store, fixedClock(testNow), nil)

	updated, err := svc.SetStatus(context.Background(), "app-9", "DRAFT")
	if err != nil {
		t.Fatalf("override status: %v", err)
	}
	if updated.Status != StatusDraft {
		t.Fatalf("status = %s, want DRAFT", updated.Status)
	}

	again, err := svc.SetStatus(context.Background(), "app-9", "DRAFT")
	if err != nil {
		t.Fatalf("repeat override: %v", err)
	}
	if again.Status != StatusDraft {
		t.Fatalf("repeat status = %s, want DRAFT", again.Status)
	}

	if _, err := svc.SetStatus(context.Background(), "app-9", "ARCHIVED"); apperrors.CodeOf(err) != apperrors.CodeApplicationInvalidStatus {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), "missing", "DRAFT"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetStatusStampsSubmittedAtOnce(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	svc := NewService(store, fixedClock(testNow), nil)

	submitted, err := svc.SetStatus(context.Background(), "app-3", "SUBMITTED")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.SubmittedAt == nil || !submitted.SubmittedAt.Equal(testNow) {
		t.Fatalf("submittedAt = %v, want %s", submitted.SubmittedAt, testNow)
	}

	svc.clock = fixedClock(testNow.Add(time.Hour))
	if _, err := svc.SetStatus(context.Background(), "app-3", "DRAFT"); err != nil {
		t.Fatalf("back to draft: %v", err)
	}
	resubmitted, err := svc.SetStatus(context.Background(), "app-3", "SUBMITTED")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !resubmitted.SubmittedAt.Equal(testNow) {
		t.Fatalf("submittedAt changed to %s", resubmitted.SubmittedAt)
	}
}

func TestTransitionStatusIsGuarded(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	svc := NewService(store, fixedClock(testNow), nil)
	ctx := context.Background()

	if _, err := svc.TransitionStatus(ctx, "app-3", "ACCEPTED"); apperrors.CodeOf(err) != apperrors.CodeApplicationInvalidStatusTransition {
		t.Fatalf("expected guarded transition error, got %v", err)
	}
	if got, _ := store.GetApplication(ctx, "app-3"); got.Status != StatusDraft {
		t.Fatalf("status changed to %s after rejected transition", got.Status)
	}

	for _, step := range []Status{StatusSubmitted, StatusUnderReview, StatusWaitlisted, StatusAccepted} {
		updated, err := svc.TransitionStatus(ctx, "app-3", string(step))
		if err != nil {
			t.Fatalf("transition to %s: %v", step, err)
		}
		if updated.Status != step {
			t.Fatalf("status = %s, want %s", updated.Status, step)
		}
	}

	same, err := svc.TransitionStatus(ctx, "app-3", "ACCEPTED")
	if err != nil || same.Status != StatusAccepted {
		t.Fatalf("same-status transition = %+v, %v", same, err)
	}
	if _, err := svc.TransitionStatus(ctx, "app-3", "DRAFT"); apperrors.CodeOf(err) != apperrors.CodeApplicationInvalidStatusTransition {
		t.Fatalf("expected terminal status to reject transition, got %v", err)
	}
}

func TestTransitionStatusReportsConcurrentChange(t *testing.T) {
	t.Parallel()

	store := &racingStatusStore{fakeStore: newTestStore()}
	svc := NewService(store, fixedClock(testNow), nil)

	_, err := svc.TransitionStatus(context.Background(), "app-1", "UNDER_REVIEW")
	if apperrors.CodeOf(err) != apperrors.CodeApplicationInvalidStatusTransition {
		t.Fatalf("expected transition conflict, got %v", err)
	}
}

// racingStatusStore changes the status between the read and the guarded write.
type racingStatusStore struct {
	*fakeStore
}

func (s *racingStatusStore) UpdateApplicationStatus(ctx context.Context, update StatusUpdate) (Application, error) {
	if update.From != "" {
		if _, err := s.fakeStore.UpdateApplicationStatus(ctx, StatusUpdate{ApplicationID: update.ApplicationID, To: StatusCancelled}); err != nil {
			return Application{}, err
		}
	}
	return s.fakeStore.UpdateApplicationStatus(ctx, update)
}

func TestBulkSetStatusAppliesOnlyToNamedApplications(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	svc := NewService(store, fixedClock(testNow), nil)
	ctx := context.Background()

	result, err := svc.BulkSetStatus(ctx, []string{"app-1", " app-3 ", "app-1", ""}, "rejected")
	if err != nil {
		t.Fatalf("bulk set status: %v", err)
	}
	if result.Updated != 2 || len(result.Failed) != 0 {
		t.Fatalf("result = %+v, want 2 updated", result)
	}

	applications, err := svc.ListEventApplications(ctx, ListApplicationsInput{EventID: "event-1"})
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	want := map[string]Status{"app-1": StatusRejected, "app-2": StatusUnderReview, "app-3": StatusRejected}
	for _, application := range applications.Applications {
		if application.Status != want[application.ID] {
			t.Fatalf("%s status = %s, want %s", application.ID, application.Status, want[application.ID])
		}
	}

	again, err := svc.BulkSetStatus(ctx, []string{"app-1", "app-3"}, "REJECTED")
	if err != nil || again.Updated != 2 {
		t.Fatalf("repeat bulk = %+v, %v", again, err)
	}
}

func TestListingPagesCoverLargeEvents(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(Event{ID: "event-big", Name: "Big"}, Question{Key: "name", Prompt: "Full name", Required: true, Order: 1})
	ids := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		id := fmt.Sprintf("app-%03d", i)
		ids = append(ids, id)
		store.addApplication(Application{ID: id, EventID: "event-big", UserID: "user-" + id, Status: StatusSubmitted})
	}
	svc := NewService(store, fixedClock(testNow), nil)
	ctx := context.Background()

	result, err := svc.BulkSetStatus(ctx, ids, "under_review")
	if err != nil || result.Updated != 250 {
		t.Fatalf("bulk set = %+v, %v", result, err)
	}

	first, err := svc.ListEventApplications(ctx, ListApplicationsInput{EventID: "event-big"})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Applications) != applicationPageSize.Default || first.NextPageToken == "" {
		t.Fatalf("first page = %d applications token = %q", len(first.Applications), first.NextPageToken)
	}

	seen := map[string]bool{}
	token := ""
	for {
		page, err := svc.ListEventApplications(ctx, ListApplicationsInput{EventID: "event-big", PageSize: 100, PageToken: token})
		if err != nil {
			t.Fatalf("list page: %v", err)
		}
		for _, application := range page.Applications {
			if application.Status != StatusUnderReview {
				t.Fatalf("%s status = %s", application.ID, application.Status)
			}
			seen[application.ID] = true
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	if len(seen) != 250 {
		t.Fatalf("listed %d applications, want 250", len(seen))
	}

	checks, err := svc.CheckEventApplications(ctx, "event-big", "")
	if err != nil {
		t.Fatalf("check event: %v", err)
	}
	if len(checks) != 250 {
		t.Fatalf("checked %d applications, want 250", len(checks))
	}

	if _, err := svc.ListEventApplications(ctx, ListApplicationsInput{EventID: "event-big", PageToken: "nope"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("bad token err = %v", err)
	}
}

func TestBulkSetStatusReportsPartialFailure(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	store.failStatus["app-2"] = apperrors.Wrap(apperrors.CodeUnavailable, "store down", errors.New("disk I/O error"))
	svc := NewService(store, fixedClock(testNow), nil)

	result, err := svc.BulkSetStatus(context.Background(), []string{"app-1", "app-2", "missing", "app-3"}, "UNDER_REVIEW")
	if err == nil || !apperrors.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if result.Updated != 2 {
		t.Fatalf("updated = %d, want 2", result.Updated)
	}
	if len(result.Failed) != 2 || result.Failed[0].ApplicationID != "app-2" || result.Failed[1].ApplicationID != "missing" {
		t.Fatalf("failed = %+v", result.Failed)
	}
	if !errors.Is(result.Failed[1].Err, ErrNotFound) {
		t.Fatalf("missing failure = %v, want not found", result.Failed[1].Err)
	}
	if got, _ := store.GetApplication(context.Background(), "app-3"); got.Status != StatusUnderReview {
		t.Fatalf("app-3 status = %s, want UNDER_REVIEW", got.Status)
	}
}

func TestBulkSetStatusValidatesInput(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestStore(), fixedClock(testNow), nil)
	if _, err := svc.BulkSetStatus(context.Background(), []string{" ", ""}, "DRAFT"); !errors.Is(err, ErrApplicationIDsRequired) {
		t.Fatalf("expected ids required, got %v", err)
	}
	if _, err := svc.BulkSetStatus(context.Background(), []string{"app-1"}, "nope"); apperrors.CodeOf(err) != apperrors.CodeApplicationInvalidStatus {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestSaveResponseUpsertsKnownQuestion(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	svc := NewService(store, fixedClock(testNow), nil)
	ctx := context.Background()

	if _, err := svc.SaveResponse(ctx, SaveResponseInput{ApplicationID: "app-1", QuestionKey: "bio", Answer: "first"}); err != nil {
		t.Fatalf("save response: %v", err)
	}
	saved, err := svc.SaveResponse(ctx, SaveResponseInput{ApplicationID: "app-1", QuestionKey: "bio", Answer: "second"})
	if err != nil {
		t.Fatalf("overwrite response: %v", err)
	}
	if saved.QuestionID != "q-bio" {
		t.Fatalf("question id = %q, want q-bio", saved.QuestionID)
	}
	responses, _ := store.ListApplicationResponses(ctx, "app-1")
	if len(responses) != 1 || responses[0].Answer != "second" {
		t.Fatalf("responses = %+v", responses)
	}

	if _, err := svc.SaveResponse(ctx, SaveResponseInput{ApplicationID: "app-1", QuestionKey: "shoe_size", Answer: "42"}); apperrors.CodeOf(err) != apperrors.CodeResponseQuestionUnknown {
		t.Fatalf("expected unknown question, got %v", err)
	}
	if _, err := svc.SaveResponse(ctx, SaveResponseInput{ApplicationID: "app-1"}); !errors.Is(err, ErrQuestionKeyRequired) {
		t.Fatalf("expected question key required, got %v", err)
	}
}

func TestUpdateApplicantAnnotationsNormalizesLabels(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	svc := NewService(store, fixedClock(testNow), nil)

	applicant, err := svc.UpdateApplicantAnnotations(context.Background(), AnnotationsInput{
		UserID: "user-1",
		Notes:  "  strong speaker  ",
		Labels: []string{" speaker", "Speaker", "", "mentor "},
	})
	if err != nil {
		t.Fatalf("update annotations: %v", err)
	}
	if applicant.AdminNotes != "strong speaker" {
		t.Fatalf("notes = %q", applicant.AdminNotes)
	}
	if !equalStrings(applicant.AdminLabels, []string{"speaker", "mentor"}) {
		t.Fatalf("labels = %v", applicant.AdminLabels)
	}
	if applicant.AdminUpdatedAt == nil || !applicant.AdminUpdatedAt.Equal(testNow) {
		t.Fatalf("adminUpdatedAt = %v", applicant.AdminUpdatedAt)
	}
}

func TestServiceWithoutStore(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, nil)
	if _, err := svc.GetApplication(context.Background(), "app-1"); !errors.Is(err, ErrStoreNotConfigured) {
		t.Fatalf("expected store not configured, got %v", err)
	}
	if _, err := svc.BulkAssign(context.Background(), BulkAssignInput{}); !errors.Is(err, ErrStoreNotConfigured) {
		t.Fatalf("expected store not configured, got %v", err)
	}
}
