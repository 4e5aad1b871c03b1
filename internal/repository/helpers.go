package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const timeLayout = time.RFC3339Nano

// parseTime parses a stored timestamp, returning the zero time for values
// that fail to parse.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullableIntToValue converts a *int to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil, otherwise returns the int value.
func nullableIntToValue(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// nullIntToPtr is the read side of nullableIntToValue.
func nullIntToPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// encodeJSON stores lists and documents as JSON text. Nil slices are
// written as "[]".
func encodeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}
	if string(raw) == "null" {
		return "[]", nil
	}
	return string(raw), nil
}

func decodeStrings(s string) ([]string, error) {
	var out []string
	if s == "" {
		return []string{}, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func decodeInts(s string) ([]int, error) {
	var out []int
	if s == "" {
		return []int{}, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

// nowUTC returns the current UTC time.
func nowUTC() time.Time {
	return time.Now().UTC()
}

// ownerClause restricts a query to ownerID unless it is empty.
func ownerClause(ownerID string) (string, []any) {
	if ownerID == "" {
		return "", nil
	}
	return " AND owner_id = ?", []any{ownerID}
}

type scanner interface {
	Scan(dest ...any) error
}
