package docstore

import (
	"errors"
	"testing"
	"time"
)

func TestWhereValidate(t *testing.T) {
	if err := Eq("timeDetails.year", 2025).validate(); err != nil {
		t.Fatalf("valid filter: %v", err)
	}
	if err := (Where{Field: "year", Op: ">=", Value: 1}).validate(); !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("op >=: err = %v", err)
	}
	for _, field := range []string{"", "a..b", "$.year", "year'); DROP TABLE documents;--"} {
		if err := Eq(field, 1).validate(); !errors.Is(err, ErrInvalidField) {
			t.Errorf("field %q: err = %v", field, err)
		}
	}
}

func TestWhereMatches(t *testing.T) {
	data := map[string]any{
		"topic": "health",
		"timeDetails": map[string]any{
			"year": float64(2025),
		},
	}
	if !Eq("timeDetails.year", 2025).matches(data) {
		t.Error("int filter should match decoded float64")
	}
	if Eq("timeDetails.year", 2024).matches(data) {
		t.Error("different year should not match")
	}
	if !Eq("topic", "health").matches(data) {
		t.Error("string field should match")
	}
	if Eq("timeDetails.month", 1).matches(data) {
		t.Error("missing field should not match")
	}
	if Eq("topic.nested", 1).matches(data) {
		t.Error("path through a scalar should not match")
	}
}

func TestResolveServerValues(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	in := map[string]any{
		"content":   "x",
		"createdAt": ServerTimestamp,
		"meta":      map[string]any{"seenAt": ServerTimestamp},
	}
	out := resolveServerValues(in, now)

	if out["createdAt"] != now {
		t.Errorf("createdAt = %v", out["createdAt"])
	}
	if out["meta"].(map[string]any)["seenAt"] != now {
		t.Errorf("nested marker not resolved: %v", out["meta"])
	}
	if in["createdAt"] != ServerTimestamp {
		t.Error("input map must not be modified")
	}
}

func TestValidateCollection(t *testing.T) {
	if err := validateCollection("notes"); err != nil {
		t.Fatalf("notes: %v", err)
	}
	for _, name := range []string{"", "../etc", "a/b", "notes.json"} {
		if err := validateCollection(name); !errors.Is(err, ErrInvalidCollection) {
			t.Errorf("collection %q: err = %v", name, err)
		}
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("mongo", t.TempDir()); err == nil {
		t.Error("expected error for unknown driver")
	}
}
