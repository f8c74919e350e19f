// Package pagination normalizes page-size and ordering inputs for list endpoints.
package pagination

import (
	"fmt"
	"slices"
	"strings"
)

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig configures order_by validation.
type OrderByConfig struct {
	Default string
	Allowed []string
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// NormalizeOrderBy validates order_by and applies defaults. Matching ignores
// surrounding whitespace and case.
func NormalizeOrderBy(orderBy string, cfg OrderByConfig) (string, error) {
	orderBy = strings.ToLower(strings.Join(strings.Fields(orderBy), " "))
	if orderBy == "" {
		return cfg.Default, nil
	}
	if slices.Contains(cfg.Allowed, orderBy) {
		return orderBy, nil
	}
	return "", fmt.Errorf("invalid order_by: %s", orderBy)
}
