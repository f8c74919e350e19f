package filter

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseApplicationFilter_StatusEquals(t *testing.T) {
	cond, err := ParseApplicationFilter(`status = "SUBMITTED"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "status = ?" {
		t.Errorf("expected 'status = ?', got %q", cond.Clause)
	}
	if !reflect.DeepEqual(cond.Params, []any{"SUBMITTED"}) {
		t.Fatalf("Params = %v", cond.Params)
	}
}

func TestParseApplicationFilter_Empty(t *testing.T) {
	cond, err := ParseApplicationFilter(" ")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "" || cond.Params != nil {
		t.Fatalf("expected empty condition, got %+v", cond)
	}
}

func TestParseApplicationFilter_AndOr(t *testing.T) {
	cond, err := ParseApplicationFilter(`status = "SUBMITTED" AND user_id != "user-9"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(status = ? AND user_id != ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	if !reflect.DeepEqual(cond.Params, []any{"SUBMITTED", "user-9"}) {
		t.Fatalf("Params = %v", cond.Params)
	}

	cond, err = ParseApplicationFilter(`status = "ACCEPTED" OR status = "WAITLISTED"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(status = ? OR status = ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
}

func TestParseApplicationFilter_TimestampUsesMillis(t *testing.T) {
	cond, err := ParseApplicationFilter(`submitted_at >= timestamp("2026-03-01T00:00:00Z")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "submitted_at >= ?" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if !reflect.DeepEqual(cond.Params, []any{want}) {
		t.Fatalf("Params = %v, want [%d]", cond.Params, want)
	}
}

func TestParseApplicationFilter_Invalid(t *testing.T) {
	tests := []string{
		`unknown_field = "x"`,
		`status = `,
		`created_at > timestamp("yesterday")`,
	}
	for _, input := range tests {
		if _, err := ParseApplicationFilter(input); !errors.Is(err, ErrInvalidFilter) {
			t.Errorf("ParseApplicationFilter(%q) err = %v, want ErrInvalidFilter", input, err)
		}
	}
}
