package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ftcplatform/platform/internal/services/review/storage"
)

const evaluationColumns = `application_id, reviewer_id, stage, overall_score, recommendation, comments, created_at, updated_at`

// PutAssignment inserts one assignment. An existing assignment for the same
// application, reviewer and stage is a conflict.
func (s *Store) PutAssignment(ctx context.Context, record storage.AssignmentRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO assignments (application_id, reviewer_id, stage, priority, notes, assigned_at)
VALUES (?, ?, ?, ?, ?, ?)
`, record.ApplicationID, record.ReviewerID, record.Stage, record.Priority, record.Notes, toMillis(record.AssignedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		if isForeignKeyConstraintError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put assignment: %w", err)
	}
	return nil
}

// GetAssignment loads one assignment.
func (s *Store) GetAssignment(ctx context.Context, applicationID string, reviewerID string, stage string) (storage.AssignmentRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.AssignmentRecord{}, err
	}
	var record storage.AssignmentRecord
	var assignedAt int64
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT application_id, reviewer_id, stage, priority, notes, assigned_at
FROM assignments
WHERE application_id = ? AND reviewer_id = ? AND stage = ?
`, strings.TrimSpace(applicationID), strings.TrimSpace(reviewerID), stage).Scan(
		&record.ApplicationID,
		&record.ReviewerID,
		&record.Stage,
		&record.Priority,
		&record.Notes,
		&assignedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AssignmentRecord{}, storage.ErrNotFound
		}
		return storage.AssignmentRecord{}, fmt.Errorf("get assignment: %w", err)
	}
	record.AssignedAt = fromMillis(assignedAt)
	return record, nil
}

// PutEvaluation upserts one evaluation and returns the stored row. The first
// created_at is preserved across resubmissions.
func (s *Store) PutEvaluation(ctx context.Context, record storage.EvaluationRecord) (storage.EvaluationRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.EvaluationRecord{}, err
	}
	var score sql.NullFloat64
	if record.OverallScore != nil {
		score = sql.NullFloat64{Float64: *record.OverallScore, Valid: true}
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO evaluations (`+evaluationColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(application_id, reviewer_id, stage) DO UPDATE SET
	overall_score = excluded.overall_score,
	recommendation = excluded.recommendation,
	comments = excluded.comments,
	updated_at = excluded.updated_at
`,
		record.ApplicationID,
		record.ReviewerID,
		record.Stage,
		score,
		record.Recommendation,
		record.Comments,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.EvaluationRecord{}, storage.ErrNotFound
		}
		return storage.EvaluationRecord{}, fmt.Errorf("put evaluation: %w", err)
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+evaluationColumns+`
FROM evaluations
WHERE application_id = ? AND reviewer_id = ? AND stage = ?
`, record.ApplicationID, record.ReviewerID, record.Stage)
	stored, err := scanEvaluation(row.Scan)
	if err != nil {
		return storage.EvaluationRecord{}, fmt.Errorf("reload evaluation: %w", err)
	}
	return stored, nil
}

// ListEvaluatedApplications loads every application of an event that has at
// least one evaluation, with its applicant, evaluations and the answers to
// the requested question keys.
func (s *Store) ListEvaluatedApplications(ctx context.Context, eventID string, responseKeys []string) ([]storage.EvaluatedApplicationRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	eventID = strings.TrimSpace(eventID)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT a.id, a.event_id, a.user_id, a.status, a.submitted_at, a.created_at, a.updated_at,
	p.user_id, p.name, p.email, p.admin_notes, p.admin_labels_json, p.admin_updated_at
FROM applications a
JOIN applicants p ON p.user_id = a.user_id
WHERE a.event_id = ?
  AND EXISTS (SELECT 1 FROM evaluations e WHERE e.application_id = a.id)
ORDER BY a.created_at, a.id
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list evaluated applications: %w", err)
	}
	records := make([]storage.EvaluatedApplicationRecord, 0)
	index := make(map[string]int)
	for rows.Next() {
		var record storage.EvaluatedApplicationRecord
		var submittedAt, adminUpdatedAt sql.NullInt64
		var createdAt, updatedAt int64
		var labels string
		if err := rows.Scan(
			&record.Application.ID,
			&record.Application.EventID,
			&record.Application.UserID,
			&record.Application.Status,
			&submittedAt,
			&createdAt,
			&updatedAt,
			&record.Applicant.UserID,
			&record.Applicant.Name,
			&record.Applicant.Email,
			&record.Applicant.AdminNotes,
			&labels,
			&adminUpdatedAt,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan evaluated application row: %w", err)
		}
		record.Application.SubmittedAt = timePtr(submittedAt)
		record.Application.CreatedAt = fromMillis(createdAt)
		record.Application.UpdatedAt = fromMillis(updatedAt)
		record.Applicant.AdminUpdatedAt = timePtr(adminUpdatedAt)
		decoded, err := decodeStrings(labels)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decode admin labels: %w", err)
		}
		record.Applicant.AdminLabels = decoded
		record.Responses = map[string]string{}
		index[record.Application.ID] = len(records)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate evaluated application rows: %w", err)
	}
	_ = rows.Close()
	if len(records) == 0 {
		return records, nil
	}

	if err := s.attachEvaluations(ctx, eventID, records, index); err != nil {
		return nil, err
	}
	if err := s.attachResponses(ctx, eventID, responseKeys, records, index); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) attachEvaluations(ctx context.Context, eventID string, records []storage.EvaluatedApplicationRecord, index map[string]int) error {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT e.application_id, e.reviewer_id, e.stage, e.overall_score, e.recommendation, e.comments, e.created_at, e.updated_at
FROM evaluations e
JOIN applications a ON a.id = e.application_id
WHERE a.event_id = ?
ORDER BY e.created_at, e.reviewer_id, e.stage
`, eventID)
	if err != nil {
		return fmt.Errorf("list event evaluations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		evaluation, err := scanEvaluation(rows.Scan)
		if err != nil {
			return fmt.Errorf("scan evaluation row: %w", err)
		}
		if i, ok := index[evaluation.ApplicationID]; ok {
			records[i].Evaluations = append(records[i].Evaluations, evaluation)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate evaluation rows: %w", err)
	}
	return nil
}

func (s *Store) attachResponses(ctx context.Context, eventID string, keys []string, records []storage.EvaluatedApplicationRecord, index map[string]int) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
	args := make([]any, 0, len(keys)+1)
	args = append(args, eventID)
	for _, key := range keys {
		args = append(args, key)
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT r.application_id, q.question_key, r.answer
FROM responses r
JOIN questions q ON q.id = r.question_id
WHERE q.event_id = ?
  AND q.question_key IN (`+placeholders+`)
`, args...)
	if err != nil {
		return fmt.Errorf("list region responses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var applicationID, key, answer string
		if err := rows.Scan(&applicationID, &key, &answer); err != nil {
			return fmt.Errorf("scan region response row: %w", err)
		}
		if i, ok := index[applicationID]; ok {
			records[i].Responses[key] = answer
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate region response rows: %w", err)
	}
	return nil
}

func scanEvaluation(scan scanner) (storage.EvaluationRecord, error) {
	var record storage.EvaluationRecord
	var score sql.NullFloat64
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ApplicationID,
		&record.ReviewerID,
		&record.Stage,
		&score,
		&record.Recommendation,
		&record.Comments,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.EvaluationRecord{}, err
	}
	if score.Valid {
		value := score.Float64
		record.OverallScore = &value
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
