package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
)

// Stage is a named phase of review that scopes assignments.
type Stage string

const (
	StageScreening Stage = "SCREENING"
	StageFinal     Stage = "FINAL"
)

// ParseStage parses a stage name case-insensitively.
func ParseStage(raw string) (Stage, error) {
	switch stage := Stage(strings.ToUpper(strings.TrimSpace(raw))); stage {
	case StageScreening, StageFinal:
		return stage, nil
	default:
		return "", invalidStageError(raw)
	}
}

// Assignment binds one reviewer to one application for one stage.
type Assignment struct {
	ApplicationID string
	ReviewerID    string
	Stage         Stage
	Priority      int
	Notes         string
	AssignedAt    time.Time
}

// BulkAssignInput assigns one reviewer to many applications.
type BulkAssignInput struct {
	ApplicationIDs []string
	ReviewerID     string
	Stage          string
	Priority       int
	Notes          string
}

// BulkAssignResult reports created and skipped assignments.
type BulkAssignResult struct {
	Created int
	Skipped int
	Failed  []BulkFailure
}

// Recommendation is a reviewer's suggested decision.
type Recommendation string

const (
	RecommendationNone     Recommendation = ""
	RecommendationAccept   Recommendation = "ACCEPT"
	RecommendationReject   Recommendation = "REJECT"
	RecommendationWaitlist Recommendation = "WAITLIST"
)

// ParseRecommendation parses a recommendation; blank means none.
func ParseRecommendation(raw string) (Recommendation, error) {
	switch rec := Recommendation(strings.ToUpper(strings.TrimSpace(raw))); rec {
	case RecommendationNone, RecommendationAccept, RecommendationReject, RecommendationWaitlist:
		return rec, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeEvaluationInvalidRecommendation, "invalid recommendation", map[string]string{"Recommendation": raw})
	}
}

const (
	MinScore = 0
	MaxScore = 10
)

// Evaluation is one reviewer's assessment of one application for one stage.
type Evaluation struct {
	ApplicationID  string
	ReviewerID     string
	Stage          Stage
	OverallScore   *float64
	Recommendation Recommendation
	Comments       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubmitEvaluationInput describes one reviewer evaluation.
type SubmitEvaluationInput struct {
	ApplicationID  string
	ReviewerID     string
	Stage          string
	OverallScore   *float64
	Recommendation string
	Comments       string
}

func validateScore(score *float64) error {
	if score == nil {
		return nil
	}
	if math.IsNaN(*score) || *score < MinScore || *score > MaxScore {
		return apperrors.WithMetadata(apperrors.CodeEvaluationInvalidScore, "score out of range", map[string]string{
			"Min": strconv.Itoa(MinScore),
			"Max": strconv.Itoa(MaxScore),
		})
	}
	return nil
}
