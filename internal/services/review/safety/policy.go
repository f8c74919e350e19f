// Package safety decides whether outbound applicant email may be sent now.
package safety

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ftcplatform/platform/internal/services/review/domain"
)

// DefaultWindow is the volume window used when a policy leaves it unset.
const DefaultWindow = time.Hour

// Policy bounds outbound email volume. A non-positive Limit disables the
// volume check.
type Policy struct {
	Limit  int
	Window time.Duration
	Paused bool
}

// Counter reports how many emails were sent since a point in time.
type Counter interface {
	CountSentSince(ctx context.Context, since time.Time) (int, error)
}

// Recorder is implemented by counters that must be told about each send.
type Recorder interface {
	RecordSent(ctx context.Context, emailID string, sentAt time.Time) error
}

// Checker evaluates the policy against a counter.
type Checker struct {
	mu      sync.RWMutex
	policy  Policy
	counter Counter
	clock   func() time.Time
}

// NewChecker builds a checker. A nil clock uses time.Now.
func NewChecker(policy Policy, counter Counter, clock func() time.Time) *Checker {
	if policy.Window <= 0 {
		policy.Window = DefaultWindow
	}
	if clock == nil {
		clock = time.Now
	}
	return &Checker{policy: policy, counter: counter, clock: clock}
}

// Policy returns the current policy.
func (c *Checker) Policy() Policy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy
}

// SetPaused switches the global pause on or off.
func (c *Checker) SetPaused(paused bool) {
	c.mu.Lock()
	c.policy.Paused = paused
	c.mu.Unlock()
}

// Snapshot returns the current verdict. Counter failures are returned as
// errors so callers can tell them apart from an unsafe verdict.
func (c *Checker) Snapshot(ctx context.Context) (domain.SafetySnapshot, error) {
	policy := c.Policy()
	now := c.clock().UTC()
	snapshot := domain.SafetySnapshot{
		Safe:      true,
		Paused:    policy.Paused,
		Limit:     policy.Limit,
		Window:    policy.Window,
		CheckedAt: now,
	}

	if c.counter != nil {
		sent, err := c.counter.CountSentSince(ctx, now.Add(-policy.Window))
		if err != nil {
			return domain.SafetySnapshot{}, fmt.Errorf("count sent emails: %w", err)
		}
		snapshot.SentInWindow = sent
	}

	switch {
	case policy.Paused:
		snapshot.Safe = false
		snapshot.Reason = "email sending is paused"
	case policy.Limit > 0 && snapshot.SentInWindow >= policy.Limit:
		snapshot.Safe = false
		snapshot.Reason = fmt.Sprintf("sending limit reached: %d of %d in the last %s", snapshot.SentInWindow, policy.Limit, policy.Window)
	}
	return snapshot, nil
}

// RecordSend forwards a completed send to counters that track sends themselves.
func (c *Checker) RecordSend(ctx context.Context, email domain.Email, sentAt time.Time) error {
	recorder, ok := c.counter.(Recorder)
	if !ok {
		return nil
	}
	return recorder.RecordSent(ctx, email.ID, sentAt)
}

var (
	_ domain.SafetyChecker = (*Checker)(nil)
	_ domain.SendRecorder  = (*Checker)(nil)
)
