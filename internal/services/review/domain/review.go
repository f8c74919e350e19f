package domain

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BulkAssign assigns one reviewer to each application for a stage. An
// existing (application, reviewer, stage) assignment is skipped, so repeating
// the call is safe. Each application commits on its own; the result counts
// what was actually created even when later items fail.
func (s *Service) BulkAssign(ctx context.Context, input BulkAssignInput) (BulkAssignResult, error) {
	if s == nil || s.store == nil {
		return BulkAssignResult{}, ErrStoreNotConfigured
	}
	ids := normalizeIDs(input.ApplicationIDs)
	if len(ids) == 0 {
		return BulkAssignResult{}, ErrApplicationIDsRequired
	}
	reviewerID := strings.TrimSpace(input.ReviewerID)
	if reviewerID == "" {
		return BulkAssignResult{}, ErrReviewerIDRequired
	}
	stage, err := ParseStage(input.Stage)
	if err != nil {
		return BulkAssignResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "review.BulkAssign", trace.WithAttributes(
		attribute.Int("review.bulk.size", len(ids)),
		attribute.String("review.stage", string(stage)),
	))
	defer span.End()

	notes := strings.TrimSpace(input.Notes)
	result := BulkAssignResult{}
	var transient []error
	for i, applicationID := range ids {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, failRemaining(ids[i:], err)...)
			transient = append(transient, err)
			break
		}
		err := s.store.PutAssignment(ctx, Assignment{
			ApplicationID: applicationID,
			ReviewerID:    reviewerID,
			Stage:         stage,
			Priority:      input.Priority,
			Notes:         notes,
			AssignedAt:    s.nowUTC(),
		})
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, ErrConflict):
			result.Skipped++
		default:
			result.Failed = append(result.Failed, BulkFailure{ApplicationID: applicationID, Err: err})
			if apperrors.IsTransient(err) {
				transient = append(transient, err)
			}
		}
	}

	span.SetAttributes(
		attribute.Int("review.bulk.created", result.Created),
		attribute.Int("review.bulk.skipped", result.Skipped),
		attribute.Int("review.bulk.failed", len(result.Failed)),
	)
	return result, finishBulk(span, transient)
}

// SubmitEvaluation records the single evaluation a reviewer holds for an
// application and stage, replacing any earlier one. The reviewer must be
// assigned for that stage.
func (s *Service) SubmitEvaluation(ctx context.Context, input SubmitEvaluationInput) (Evaluation, error) {
	if s == nil || s.store == nil {
		return Evaluation{}, ErrStoreNotConfigured
	}
	applicationID := strings.TrimSpace(input.ApplicationID)
	if applicationID == "" {
		return Evaluation{}, ErrApplicationIDRequired
	}
	reviewerID := strings.TrimSpace(input.ReviewerID)
	if reviewerID == "" {
		return Evaluation{}, ErrReviewerIDRequired
	}
	stage, err := ParseStage(input.Stage)
	if err != nil {
		return Evaluation{}, err
	}
	if err := validateScore(input.OverallScore); err != nil {
		return Evaluation{}, err
	}
	recommendation, err := ParseRecommendation(input.Recommendation)
	if err != nil {
		return Evaluation{}, err
	}
	if _, err := s.store.GetAssignment(ctx, applicationID, reviewerID, stage); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Evaluation{}, apperrors.WithMetadata(apperrors.CodeAssignmentMissing, "reviewer is not assigned", map[string]string{"Stage": string(stage)})
		}
		return Evaluation{}, err
	}

	var score *float64
	if input.OverallScore != nil {
		value := *input.OverallScore
		score = &value
	}
	now := s.nowUTC()
	return s.store.PutEvaluation(ctx, Evaluation{
		ApplicationID:  applicationID,
		ReviewerID:     reviewerID,
		Stage:          stage,
		OverallScore:   score,
		Recommendation: recommendation,
		Comments:       strings.TrimSpace(input.Comments),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// GetConsensusApplications aggregates evaluations for an event's
// applications that have at least one evaluation.
func (s *Service) GetConsensusApplications(ctx context.Context, query ConsensusQuery) ([]ConsensusApplication, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	query.EventID = strings.TrimSpace(query.EventID)
	if query.EventID == "" {
		return nil, ErrEventIDRequired
	}
	candidates, err := s.store.ListEvaluatedApplications(ctx, query.EventID, RegionResponseKeys())
	if err != nil {
		return nil, err
	}
	return Aggregate(candidates, query), nil
}
