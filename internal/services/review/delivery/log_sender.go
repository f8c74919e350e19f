// Package delivery provides outbound email transports for the review service.
package delivery

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ftcplatform/platform/internal/services/review/domain"
)

// LogSender writes each email to a logger instead of a mail relay. It is the
// transport for development and for deployments that relay from the log.
type LogSender struct {
	from   string
	logger *log.Logger
}

// NewLogSender uses the standard logger when logger is nil.
func NewLogSender(from string, logger *log.Logger) *LogSender {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSender{from: strings.TrimSpace(from), logger: logger}
}

// Send logs one email envelope and its text body.
func (s *LogSender) Send(ctx context.Context, email domain.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.logger == nil {
		return fmt.Errorf("sender is not configured")
	}
	if strings.TrimSpace(email.Recipient) == "" {
		return fmt.Errorf("email %s has no recipient", email.ID)
	}
	s.logger.Printf("email send: id=%s from=%q to=%q subject=%q\n%s", email.ID, s.from, email.Recipient, email.Subject, email.TextContent)
	return nil
}

var _ domain.Sender = (*LogSender)(nil)
