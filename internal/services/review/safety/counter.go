package safety

import (
	"context"
	"time"
)

type sentEmailCounter interface {
	CountEmailsSentSince(ctx context.Context, since time.Time) (int, error)
}

// StoreCounter counts SENT emails in the review store.
type StoreCounter struct {
	store sentEmailCounter
}

// NewStoreCounter wraps a store that can count sent emails.
func NewStoreCounter(store sentEmailCounter) StoreCounter {
	return StoreCounter{store: store}
}

// CountSentSince counts emails the store marked sent since the given time.
func (c StoreCounter) CountSentSince(ctx context.Context, since time.Time) (int, error) {
	if c.store == nil {
		return 0, nil
	}
	return c.store.CountEmailsSentSince(ctx, since)
}
