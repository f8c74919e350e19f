// Package sqlite provides the SQLite-backed review storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/ftcplatform/platform/internal/platform/storage/sqlitemigrate"
	"github.com/ftcplatform/platform/internal/services/review/storage"
	"github.com/ftcplatform/platform/internal/services/review/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store provides SQLite-backed persistence for the review pipeline.
type Store struct {
	sqlDB *sql.DB
}

type scanner func(dest ...any) error

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func timePtr(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	t := fromMillis(value.Int64)
	return &t
}

// Open opens a review SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite db is required")
	}
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutEvent upserts one event.
func (s *Store) PutEvent(ctx context.Context, record storage.EventRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return fmt.Errorf("event id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO events (id, name, created_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name = excluded.name
`, record.ID, record.Name, toMillis(record.CreatedAt))
	if err != nil {
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

// GetEvent loads one event.
func (s *Store) GetEvent(ctx context.Context, eventID string) (storage.EventRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.EventRecord{}, err
	}
	var record storage.EventRecord
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT id, name, created_at FROM events WHERE id = ?`, strings.TrimSpace(eventID)).
		Scan(&record.ID, &record.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EventRecord{}, storage.ErrNotFound
		}
		return storage.EventRecord{}, fmt.Errorf("get event: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// PutQuestion upserts one event question.
func (s *Store) PutQuestion(ctx context.Context, record storage.QuestionRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" || strings.TrimSpace(record.Key) == "" {
		return fmt.Errorf("question id and key are required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO questions (id, event_id, question_key, prompt, required, position)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	question_key = excluded.question_key,
	prompt = excluded.prompt,
	required = excluded.required,
	position = excluded.position
`, record.ID, record.EventID, record.Key, record.Prompt, record.Required, record.Position)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.ErrNotFound
		}
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put question: %w", err)
	}
	return nil
}

// ListEventQuestions lists the questions of one event in display order.
func (s *Store) ListEventQuestions(ctx context.Context, eventID string) ([]storage.QuestionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, event_id, question_key, prompt, required, position
FROM questions
WHERE event_id = ?
ORDER BY position, question_key
`, strings.TrimSpace(eventID))
	if err != nil {
		return nil, fmt.Errorf("list event questions: %w", err)
	}
	defer rows.Close()

	questions := make([]storage.QuestionRecord, 0)
	for rows.Next() {
		var record storage.QuestionRecord
		if err := rows.Scan(&record.ID, &record.EventID, &record.Key, &record.Prompt, &record.Required, &record.Position); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		questions = append(questions, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question rows: %w", err)
	}
	return questions, nil
}

// PutApplicant upserts one applicant profile without touching annotations.
func (s *Store) PutApplicant(ctx context.Context, record storage.ApplicantRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	record.UserID = strings.TrimSpace(record.UserID)
	if record.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	labels, err := encodeStrings(record.AdminLabels)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO applicants (user_id, name, email, admin_notes, admin_labels_json, admin_updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	name = excluded.name,
	email = excluded.email
`, record.UserID, record.Name, record.Email, record.AdminNotes, labels, nullMillis(record.AdminUpdatedAt))
	if err != nil {
		return fmt.Errorf("put applicant: %w", err)
	}
	return nil
}

// GetApplicant loads one applicant.
func (s *Store) GetApplicant(ctx context.Context, userID string) (storage.ApplicantRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ApplicantRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT user_id, name, email, admin_notes, admin_labels_json, admin_updated_at
FROM applicants
WHERE user_id = ?
`, strings.TrimSpace(userID))
	record, err := scanApplicant(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ApplicantRecord{}, storage.ErrNotFound
		}
		return storage.ApplicantRecord{}, fmt.Errorf("get applicant: %w", err)
	}
	return record, nil
}

// UpdateApplicantAnnotations replaces the admin notes and labels of an applicant.
func (s *Store) UpdateApplicantAnnotations(ctx context.Context, userID string, notes string, labels []string, updatedAt time.Time) (storage.ApplicantRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ApplicantRecord{}, err
	}
	encoded, err := encodeStrings(labels)
	if err != nil {
		return storage.ApplicantRecord{}, err
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE applicants
SET admin_notes = ?, admin_labels_json = ?, admin_updated_at = ?
WHERE user_id = ?
`, notes, encoded, toMillis(updatedAt), strings.TrimSpace(userID))
	if err != nil {
		return storage.ApplicantRecord{}, fmt.Errorf("update applicant annotations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.ApplicantRecord{}, fmt.Errorf("update applicant annotations rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ApplicantRecord{}, storage.ErrNotFound
	}
	return s.GetApplicant(ctx, userID)
}

func scanApplicant(scan scanner) (storage.ApplicantRecord, error) {
	var record storage.ApplicantRecord
	var labels string
	var adminUpdatedAt sql.NullInt64
	if err := scan(
		&record.UserID,
		&record.Name,
		&record.Email,
		&record.AdminNotes,
		&labels,
		&adminUpdatedAt,
	); err != nil {
		return storage.ApplicantRecord{}, err
	}
	decoded, err := decodeStrings(labels)
	if err != nil {
		return storage.ApplicantRecord{}, fmt.Errorf("decode admin labels: %w", err)
	}
	record.AdminLabels = decoded
	record.AdminUpdatedAt = timePtr(adminUpdatedAt)
	return record, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode string list: %w", err)
	}
	return string(encoded), nil
}

func decodeStrings(raw string) ([]string, error) {
	values := []string{}
	if strings.TrimSpace(raw) == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func sqliteCode(err error) (int, bool) {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok && code == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

var _ storage.Store = (*Store)(nil)
