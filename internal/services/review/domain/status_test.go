package domain

import (
	"errors"
	"testing"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
)

func TestStatusTablesCoverEveryStatus(t *testing.T) {
	t.Parallel()

	if len(statusTransitions) != len(allStatuses) {
		t.Fatalf("transition table has %d entries, want %d", len(statusTransitions), len(allStatuses))
	}
	if len(statusPresentations) != len(allStatuses) {
		t.Fatalf("presentation table has %d entries, want %d", len(statusPresentations), len(allStatuses))
	}
	for _, status := range allStatuses {
		if !status.Valid() {
			t.Fatalf("status %s is not valid", status)
		}
		presentation, ok := status.Presentation()
		if !ok {
			t.Fatalf("status %s has no presentation", status)
		}
		if presentation.Label == "" || presentation.Color == "" || presentation.Icon == "" {
			t.Fatalf("status %s has incomplete presentation %+v", status, presentation)
		}
		for _, next := range statusTransitions[status] {
			if !next.Valid() {
				t.Fatalf("status %s transitions to unknown status %s", status, next)
			}
		}
	}
}

func TestEveryStatusIsReachableFromDraft(t *testing.T) {
	t.Parallel()

	seen := map[Status]bool{StatusDraft: true}
	queue := []Status{StatusDraft}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range NextStatuses(current) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, status := range allStatuses {
		if !seen[status] {
			t.Fatalf("status %s is unreachable from DRAFT", status)
		}
	}
}

func TestUnknownStatusHasNoPresentation(t *testing.T) {
	t.Parallel()

	if _, ok := Status("ARCHIVED").Presentation(); ok {
		t.Fatal("expected unknown status to have no presentation")
	}
	if Status("ARCHIVED").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	got, err := ParseStatus(" under_review ")
	if err != nil {
		t.Fatalf("parse status: %v", err)
	}
	if got != StatusUnderReview {
		t.Fatalf("status = %s, want %s", got, StatusUnderReview)
	}

	_, err = ParseStatus("archived")
	if apperrors.CodeOf(err) != apperrors.CodeApplicationInvalidStatus {
		t.Fatalf("expected invalid status code, got %v", err)
	}
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Metadata["Status"] != "archived" {
		t.Fatalf("expected status metadata, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusUnderReview, false},
		{StatusSubmitted, StatusUnderReview, true},
		{StatusUnderReview, StatusAccepted, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusUnderReview, StatusWaitlisted, true},
		{StatusWaitlisted, StatusAccepted, true},
		{StatusWaitlisted, StatusUnderReview, false},
		{StatusAccepted, StatusDraft, false},
		{StatusRejected, StatusAccepted, false},
		{StatusCancelled, StatusSubmitted, false},
		{StatusSubmitted, StatusCancelled, true},
		{StatusAccepted, StatusAccepted, true},
		{StatusDraft, Status("ARCHIVED"), false},
	}
	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusAccepted, StatusRejected, StatusCancelled} {
		if !status.Terminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	for _, status := range []Status{StatusDraft, StatusSubmitted, StatusUnderReview, StatusWaitlisted} {
		if status.Terminal() {
			t.Fatalf("expected %s to be non-terminal", status)
		}
	}
}
