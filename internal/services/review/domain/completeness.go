package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// CheckResult is the outcome of one missing-information check.
type CheckResult struct {
	ApplicationID string
	IsComplete    bool
	MissingFields []string
	CheckedAt     time.Time
}

// EvaluateCompleteness reports the required questions without a non-blank
// answer, ordered by question order then key. It has no side effects.
func EvaluateCompleteness(questions []Question, responses []Response) (bool, []string) {
	answered := make(map[string]struct{}, len(responses))
	for _, response := range responses {
		if strings.TrimSpace(response.Answer) == "" {
			continue
		}
		if response.QuestionID != "" {
			answered["id:"+response.QuestionID] = struct{}{}
		}
		if response.QuestionKey != "" {
			answered["key:"+response.QuestionKey] = struct{}{}
		}
	}

	required := make([]Question, 0, len(questions))
	for _, question := range questions {
		if question.Required {
			required = append(required, question)
		}
	}
	slices.SortStableFunc(required, func(a, b Question) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	missing := make([]string, 0)
	for _, question := range required {
		_, byID := answered["id:"+question.ID]
		_, byKey := answered["key:"+question.Key]
		if question.ID != "" && byID || question.ID == "" && byKey {
			continue
		}
		missing = append(missing, question.Key)
	}
	return len(missing) == 0, missing
}
