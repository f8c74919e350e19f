package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ftcplatform/platform/internal/services/review/storage"
)

const emailColumns = `id, application_id, email_type, status, recipient, subject, missing_fields_json,
	html_content, text_content, failure_reason, created_at, updated_at, sent_at`

const emailStatusSent = "SENT"

// PutEmail inserts one email.
func (s *Store) PutEmail(ctx context.Context, record storage.EmailRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("email id is required")
	}
	missing, err := encodeStrings(record.MissingFields)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO emails (`+emailColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.ApplicationID,
		record.Type,
		record.Status,
		record.Recipient,
		record.Subject,
		missing,
		record.HTMLContent,
		record.TextContent,
		record.FailureReason,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
		nullMillis(record.SentAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		if isForeignKeyConstraintError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put email: %w", err)
	}
	return nil
}

// GetEmail loads one email.
func (s *Store) GetEmail(ctx context.Context, emailID string) (storage.EmailRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.EmailRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+emailColumns+` FROM emails WHERE id = ?`, strings.TrimSpace(emailID))
	record, err := scanEmail(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EmailRecord{}, storage.ErrNotFound
		}
		return storage.EmailRecord{}, fmt.Errorf("get email: %w", err)
	}
	return record, nil
}

// ListApplicationEmails lists the emails of one application oldest first.
func (s *Store) ListApplicationEmails(ctx context.Context, applicationID string) ([]storage.EmailRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+emailColumns+`
FROM emails
WHERE application_id = ?
ORDER BY created_at, id
`, strings.TrimSpace(applicationID))
	if err != nil {
		return nil, fmt.Errorf("list application emails: %w", err)
	}
	defer rows.Close()

	records := make([]storage.EmailRecord, 0)
	for rows.Next() {
		record, err := scanEmail(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan email row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate email rows: %w", err)
	}
	return records, nil
}

// TransitionEmail applies a status change while the stored status equals
// FromStatus. A mismatch reports ErrConflict.
func (s *Store) TransitionEmail(ctx context.Context, transition storage.EmailTransition) (storage.EmailRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.EmailRecord{}, err
	}
	emailID := strings.TrimSpace(transition.EmailID)
	if emailID == "" {
		return storage.EmailRecord{}, fmt.Errorf("email id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE emails
SET status = ?, updated_at = ?, sent_at = COALESCE(?, sent_at), failure_reason = ?
WHERE id = ? AND status = ?
`,
		transition.ToStatus,
		toMillis(transition.At),
		nullMillis(transition.SentAt),
		transition.FailureReason,
		emailID,
		transition.FromStatus,
	)
	if err != nil {
		return storage.EmailRecord{}, fmt.Errorf("transition email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.EmailRecord{}, fmt.Errorf("transition email rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetEmail(ctx, emailID); err != nil {
			return storage.EmailRecord{}, err
		}
		return storage.EmailRecord{}, storage.ErrConflict
	}
	return s.GetEmail(ctx, emailID)
}

// DeleteEmail removes one email while its status equals requiredStatus.
func (s *Store) DeleteEmail(ctx context.Context, emailID string, requiredStatus string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	emailID = strings.TrimSpace(emailID)
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM emails WHERE id = ? AND status = ?`, emailID, requiredStatus)
	if err != nil {
		return fmt.Errorf("delete email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete email rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetEmail(ctx, emailID); err != nil {
			return err
		}
		return storage.ErrConflict
	}
	return nil
}

// CountEmailsSentSince counts emails sent at or after since.
func (s *Store) CountEmailsSentSince(ctx context.Context, since time.Time) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1) FROM emails WHERE status = ? AND sent_at >= ?
`, emailStatusSent, toMillis(since)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sent emails: %w", err)
	}
	return count, nil
}

func scanEmail(scan scanner) (storage.EmailRecord, error) {
	var record storage.EmailRecord
	var missing string
	var createdAt int64
	var updatedAt int64
	var sentAt sql.NullInt64
	if err := scan(
		&record.ID,
		&record.ApplicationID,
		&record.Type,
		&record.Status,
		&record.Recipient,
		&record.Subject,
		&missing,
		&record.HTMLContent,
		&record.TextContent,
		&record.FailureReason,
		&createdAt,
		&updatedAt,
		&sentAt,
	); err != nil {
		return storage.EmailRecord{}, err
	}
	decoded, err := decodeStrings(missing)
	if err != nil {
		return storage.EmailRecord{}, fmt.Errorf("decode missing fields: %w", err)
	}
	record.MissingFields = decoded
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	record.SentAt = timePtr(sentAt)
	return record, nil
}
