package otel_test

import (
	"context"
	"testing"

	"github.com/ftcplatform/platform/internal/platform/otel"
)

func TestSetupShutdownSucceeds(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		enabled  string
	}{
		{name: "no endpoint", endpoint: "", enabled: ""},
		{name: "explicitly disabled", endpoint: "http://localhost:4318", enabled: "false"},
		{name: "disabled with spacing", endpoint: "http://localhost:4318", enabled: " FALSE "},
		// Non-routable address so no export actually happens.
		{name: "provider installed", endpoint: "http://192.0.2.1:4318", enabled: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("FTC_OTEL_ENDPOINT", tc.endpoint)
			t.Setenv("FTC_OTEL_ENABLED", tc.enabled)

			shutdown, err := otel.Setup(context.Background(), "review-test")
			if err != nil {
				t.Fatalf("setup: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		})
	}
}

func TestSetupNoopShutdownIgnoresCancelledContext(t *testing.T) {
	t.Setenv("FTC_OTEL_ENDPOINT", "")
	t.Setenv("FTC_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "noop-test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}
