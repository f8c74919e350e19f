package domain

import (
	"cmp"
	"slices"
	"strings"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
)

// ConsensusSortField selects the consensus ordering key.
type ConsensusSortField string

const (
	SortByScore ConsensusSortField = "score"
	SortByName  ConsensusSortField = "name"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// ConsensusSort is the caller's current consensus ordering.
type ConsensusSort struct {
	Field     ConsensusSortField
	Direction SortDirection
}

// DefaultConsensusSort orders by score, highest first.
func DefaultConsensusSort() ConsensusSort {
	return ConsensusSort{Field: SortByScore, Direction: defaultDirection(SortByScore)}
}

func defaultDirection(field ConsensusSortField) SortDirection {
	if field == SortByName {
		return SortAscending
	}
	return SortDescending
}

// Toggle returns the ordering after the caller picks field again: the same
// field flips direction, a different field starts at its default direction.
func (s ConsensusSort) Toggle(field ConsensusSortField) ConsensusSort {
	if s.Field == field {
		if s.Direction == SortAscending {
			return ConsensusSort{Field: field, Direction: SortDescending}
		}
		return ConsensusSort{Field: field, Direction: SortAscending}
	}
	return ConsensusSort{Field: field, Direction: defaultDirection(field)}
}

// ParseConsensusSort parses a sort field and optional direction.
func ParseConsensusSort(field, direction string) (ConsensusSort, error) {
	parsedField := ConsensusSortField(strings.ToLower(strings.TrimSpace(field)))
	switch parsedField {
	case "":
		parsedField = SortByScore
	case SortByScore, SortByName:
	default:
		return ConsensusSort{}, apperrors.WithMetadata(apperrors.CodeConsensusInvalidSort, "invalid consensus sort", map[string]string{"Sort": field})
	}
	parsedDirection := SortDirection(strings.ToLower(strings.TrimSpace(direction)))
	switch parsedDirection {
	case "":
		parsedDirection = defaultDirection(parsedField)
	case SortAscending, SortDescending:
	default:
		return ConsensusSort{}, apperrors.WithMetadata(apperrors.CodeConsensusInvalidSort, "invalid consensus sort direction", map[string]string{"Sort": direction})
	}
	return ConsensusSort{Field: parsedField, Direction: parsedDirection}, nil
}

// EvaluatedApplication is an application with at least one evaluation, as
// loaded for consensus.
type EvaluatedApplication struct {
	Application Application
	Applicant   Applicant
	Evaluations []Evaluation
	// Responses holds the region answers keyed by question key.
	Responses map[string]string
}

// ConsensusQuery selects and orders consensus rows for one event.
type ConsensusQuery struct {
	EventID    string
	Sort       ConsensusSort
	ReviewerID string
	Region     Region
	Labels     []string
	// IncludeAll keeps applications outside UNDER_REVIEW.
	IncludeAll bool
}

// RecommendationSummary counts recommendations across evaluations.
type RecommendationSummary struct {
	Accept   int
	Reject   int
	Waitlist int
	None     int
}

// ConsensusApplication is one aggregated consensus row.
type ConsensusApplication struct {
	Application     Application
	Applicant       Applicant
	Evaluations     []Evaluation
	AverageScore    float64
	ScoredCount     int
	EvaluationCount int
	Region          Region
	Recommendations RecommendationSummary
}

// Summarize aggregates one evaluated application. AverageScore is the mean of
// the non-null scores and 0 when none are scored.
func Summarize(candidate EvaluatedApplication) ConsensusApplication {
	row := ConsensusApplication{
		Application:     candidate.Application,
		Applicant:       candidate.Applicant,
		Evaluations:     candidate.Evaluations,
		EvaluationCount: len(candidate.Evaluations),
		Region:          RegionFromResponses(candidate.Responses),
	}
	var total float64
	for _, evaluation := range candidate.Evaluations {
		if evaluation.OverallScore != nil {
			total += *evaluation.OverallScore
			row.ScoredCount++
		}
		switch evaluation.Recommendation {
		case RecommendationAccept:
			row.Recommendations.Accept++
		case RecommendationReject:
			row.Recommendations.Reject++
		case RecommendationWaitlist:
			row.Recommendations.Waitlist++
		default:
			row.Recommendations.None++
		}
	}
	if row.ScoredCount > 0 {
		row.AverageScore = total / float64(row.ScoredCount)
	}
	return row
}

// Aggregate builds the consensus view from candidates in their stored order.
// Candidates without evaluations never appear.
func Aggregate(candidates []EvaluatedApplication, query ConsensusQuery) []ConsensusApplication {
	labels := normalizeLabels(query.Labels)
	reviewerID := strings.TrimSpace(query.ReviewerID)

	rows := make([]ConsensusApplication, 0, len(candidates))
	for _, candidate := range candidates {
		if len(candidate.Evaluations) == 0 {
			continue
		}
		if !query.IncludeAll && candidate.Application.Status != StatusUnderReview {
			continue
		}
		if reviewerID != "" && !hasReviewer(candidate.Evaluations, reviewerID) {
			continue
		}
		row := Summarize(candidate)
		if query.Region != "" && row.Region != query.Region {
			continue
		}
		if !hasAllLabels(candidate.Applicant.AdminLabels, labels) {
			continue
		}
		rows = append(rows, row)
	}

	sortConsensus(rows, query.Sort)
	return rows
}

func sortConsensus(rows []ConsensusApplication, order ConsensusSort) {
	if order.Field == "" {
		order = DefaultConsensusSort()
	}
	if order.Direction == "" {
		order.Direction = defaultDirection(order.Field)
	}
	compare := func(a, b ConsensusApplication) int {
		return cmp.Compare(a.AverageScore, b.AverageScore)
	}
	if order.Field == SortByName {
		compare = func(a, b ConsensusApplication) int {
			return cmp.Compare(strings.ToLower(a.Applicant.DisplayName()), strings.ToLower(b.Applicant.DisplayName()))
		}
	}
	if order.Direction == SortDescending {
		ascending := compare
		compare = func(a, b ConsensusApplication) int { return ascending(b, a) }
	}
	slices.SortStableFunc(rows, compare)
}

func hasReviewer(evaluations []Evaluation, reviewerID string) bool {
	for _, evaluation := range evaluations {
		if evaluation.ReviewerID == reviewerID {
			return true
		}
	}
	return false
}

func hasAllLabels(have []string, want []string) bool {
	if len(want) == 0 {
		return true
	}
	present := make(map[string]struct{}, len(have))
	for _, label := range have {
		present[strings.ToLower(strings.TrimSpace(label))] = struct{}{}
	}
	for _, label := range want {
		if _, ok := present[strings.ToLower(label)]; !ok {
			return false
		}
	}
	return true
}

// normalizeLabels trims labels and drops blanks and case-insensitive duplicates,
// keeping first-seen order.
func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
