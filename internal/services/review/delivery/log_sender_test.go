package delivery

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/ftcplatform/platform/internal/services/review/domain"
)

func TestLogSenderWritesEnvelope(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sender := NewLogSender("team@example.com", log.New(&buf, "", 0))
	err := sender.Send(context.Background(), domain.Email{
		ID:          "email-1",
		Recipient:   "ana@example.com",
		Subject:     "Action needed",
		TextContent: "Hi Ana,",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"id=email-1", `to="ana@example.com"`, `from="team@example.com"`, "Hi Ana,"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q: %s", want, out)
		}
	}
}

func TestLogSenderRejectsMissingRecipient(t *testing.T) {
	t.Parallel()

	sender := NewLogSender("", log.New(&bytes.Buffer{}, "", 0))
	if err := sender.Send(context.Background(), domain.Email{ID: "email-1"}); err == nil {
		t.Fatal("expected missing recipient error")
	}
}

func TestLogSenderHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewLogSender("", nil).Send(ctx, domain.Email{ID: "email-1", Recipient: "a@example.com"}); err == nil {
		t.Fatal("expected context error")
	}
}
