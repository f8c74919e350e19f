package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ftcplatform/platform/internal/services/review/storage"
)

const applicationColumns = `id, event_id, user_id, status, submitted_at, created_at, updated_at`

// applicationOrder is one accepted ordering. Rows sort on key, ties break on
// id, so keyset pages are stable.
type applicationOrder struct {
	key  string
	desc bool
	sort func(storage.ApplicationRecord) int64
}

func createdAtKey(r storage.ApplicationRecord) int64 { return toMillis(r.CreatedAt) }
func updatedAtKey(r storage.ApplicationRecord) int64 { return toMillis(r.UpdatedAt) }

// submittedAtKey sorts unsubmitted applications first, matching the
// COALESCE in the query.
func submittedAtKey(r storage.ApplicationRecord) int64 {
	if r.SubmittedAt == nil {
		return -1
	}
	return toMillis(*r.SubmittedAt)
}

var applicationOrders = map[string]applicationOrder{
	"":                  {key: "created_at", sort: createdAtKey},
	"created_at":        {key: "created_at", sort: createdAtKey},
	"created_at desc":   {key: "created_at", desc: true, sort: createdAtKey},
	"submitted_at":      {key: "COALESCE(submitted_at, -1)", sort: submittedAtKey},
	"submitted_at desc": {key: "COALESCE(submitted_at, -1)", desc: true, sort: submittedAtKey},
	"updated_at":        {key: "updated_at", sort: updatedAtKey},
	"updated_at desc":   {key: "updated_at", desc: true, sort: updatedAtKey},
}

func (o applicationOrder) clause() string {
	if o.desc {
		return o.key + " DESC, id DESC"
	}
	return o.key + ", id"
}

func (o applicationOrder) after() string {
	if o.desc {
		return `(` + o.key + `, id) < (?, ?)`
	}
	return `(` + o.key + `, id) > (?, ?)`
}

// encodePageToken binds the cursor to the ordering so a token cannot be
// replayed under another order.
func encodePageToken(orderBy string, sortKey int64, id string) string {
	raw := orderBy + "|" + strconv.FormatInt(sortKey, 10) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodePageToken(orderBy string, token string) (int64, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, "", storage.ErrInvalidPageToken
	}
	parts := strings.SplitN(string(raw), "|", 3)
	if len(parts) != 3 || parts[0] != orderBy || parts[2] == "" {
		return 0, "", storage.ErrInvalidPageToken
	}
	sortKey, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", storage.ErrInvalidPageToken
	}
	return sortKey, parts[2], nil
}

// PutApplication inserts one application. A second application of the same
// user to the same event is a conflict.
func (s *Store) PutApplication(ctx context.Context, record storage.ApplicationRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("application id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO applications (`+applicationColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.EventID,
		record.UserID,
		record.Status,
		nullMillis(record.SubmittedAt),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		if isForeignKeyConstraintError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put application: %w", err)
	}
	return nil
}

// GetApplication loads one application.
func (s *Store) GetApplication(ctx context.Context, applicationID string) (storage.ApplicationRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ApplicationRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, strings.TrimSpace(applicationID))
	record, err := scanApplication(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ApplicationRecord{}, storage.ErrNotFound
		}
		return storage.ApplicationRecord{}, fmt.Errorf("get application: %w", err)
	}
	return record, nil
}

// ListEventApplications lists one page of an event's applications. A
// positive Limit fetches one extra row to decide whether a next page exists.
func (s *Store) ListEventApplications(ctx context.Context, query storage.ApplicationQuery) (storage.ApplicationPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ApplicationPage{}, err
	}
	order, ok := applicationOrders[query.OrderBy]
	if !ok {
		return storage.ApplicationPage{}, fmt.Errorf("unsupported order: %s", query.OrderBy)
	}

	var sb strings.Builder
	args := []any{strings.TrimSpace(query.EventID)}
	sb.WriteString(`SELECT ` + applicationColumns + ` FROM applications WHERE event_id = ?`)
	if query.Status != "" {
		sb.WriteString(` AND status = ?`)
		args = append(args, query.Status)
	}
	if strings.TrimSpace(query.Where) != "" {
		sb.WriteString(` AND (` + query.Where + `)`)
		args = append(args, query.WhereArgs...)
	}
	if token := strings.TrimSpace(query.PageToken); token != "" {
		sortKey, id, err := decodePageToken(query.OrderBy, token)
		if err != nil {
			return storage.ApplicationPage{}, err
		}
		sb.WriteString(` AND ` + order.after())
		args = append(args, sortKey, id)
	}
	sb.WriteString(` ORDER BY ` + order.clause())
	if query.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, query.Limit+1)
	}

	rows, err := s.sqlDB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return storage.ApplicationPage{}, fmt.Errorf("list event applications: %w", err)
	}
	defer rows.Close()

	records := make([]storage.ApplicationRecord, 0)
	for rows.Next() {
		record, err := scanApplication(rows.Scan)
		if err != nil {
			return storage.ApplicationPage{}, fmt.Errorf("scan application row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return storage.ApplicationPage{}, fmt.Errorf("iterate application rows: %w", err)
	}

	page := storage.ApplicationPage{Applications: records}
	if query.Limit > 0 && len(records) > query.Limit {
		last := records[query.Limit-1]
		page.Applications = records[:query.Limit]
		page.NextPageToken = encodePageToken(query.OrderBy, order.sort(last), last.ID)
	}
	return page, nil
}

// UpdateApplicationStatus writes one status change. SubmittedAt is kept when
// already set. With FromStatus set, the write only applies while the stored
// status still matches and a mismatch reports ErrConflict.
func (s *Store) UpdateApplicationStatus(ctx context.Context, update storage.StatusUpdate) (storage.ApplicationRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ApplicationRecord{}, err
	}
	applicationID := strings.TrimSpace(update.ApplicationID)
	if applicationID == "" {
		return storage.ApplicationRecord{}, fmt.Errorf("application id is required")
	}

	query := `
UPDATE applications
SET status = ?, updated_at = ?, submitted_at = COALESCE(submitted_at, ?)
WHERE id = ?`
	args := []any{update.ToStatus, toMillis(update.UpdatedAt), nullMillis(update.SubmittedAt), applicationID}
	if update.FromStatus != "" {
		query += ` AND status = ?`
		args = append(args, update.FromStatus)
	}
	result, err := s.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.ApplicationRecord{}, fmt.Errorf("update application status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.ApplicationRecord{}, fmt.Errorf("update application status rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetApplication(ctx, applicationID); err != nil {
			return storage.ApplicationRecord{}, err
		}
		return storage.ApplicationRecord{}, storage.ErrConflict
	}
	return s.GetApplication(ctx, applicationID)
}

// PutResponse upserts one answer.
func (s *Store) PutResponse(ctx context.Context, record storage.ResponseRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return putResponseExec(ctx, s.sqlDB, record)
}

func putResponseExec(ctx context.Context, execer sqlExecer, record storage.ResponseRecord) error {
	_, err := execer.ExecContext(ctx, `
INSERT INTO responses (application_id, question_id, answer, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(application_id, question_id) DO UPDATE SET
	answer = excluded.answer,
	updated_at = excluded.updated_at
`, record.ApplicationID, record.QuestionID, record.Answer, toMillis(record.UpdatedAt))
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put response: %w", err)
	}
	return nil
}

// ListApplicationResponses lists the answers of one application.
func (s *Store) ListApplicationResponses(ctx context.Context, applicationID string) ([]storage.ResponseRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT r.application_id, r.question_id, q.question_key, r.answer, r.updated_at
FROM responses r
JOIN questions q ON q.id = r.question_id
WHERE r.application_id = ?
ORDER BY q.position, q.question_key
`, strings.TrimSpace(applicationID))
	if err != nil {
		return nil, fmt.Errorf("list application responses: %w", err)
	}
	defer rows.Close()

	responses := make([]storage.ResponseRecord, 0)
	for rows.Next() {
		var record storage.ResponseRecord
		var updatedAt int64
		if err := rows.Scan(&record.ApplicationID, &record.QuestionID, &record.QuestionKey, &record.Answer, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan response row: %w", err)
		}
		record.UpdatedAt = fromMillis(updatedAt)
		responses = append(responses, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate response rows: %w", err)
	}
	return responses, nil
}

func scanApplication(scan scanner) (storage.ApplicationRecord, error) {
	var record storage.ApplicationRecord
	var submittedAt sql.NullInt64
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.EventID,
		&record.UserID,
		&record.Status,
		&submittedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.ApplicationRecord{}, err
	}
	record.SubmittedAt = timePtr(submittedAt)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
