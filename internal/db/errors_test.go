package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestMapDBError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"mysql duplicate entry", errors.New("Error 1062 (23000): Duplicate entry 'rec-1' for key 'records.PRIMARY'"), ErrDuplicate},
		{"postgres unique violation", errors.New("ERROR: duplicate key value violates unique constraint \"records_pkey\" (SQLSTATE 23505)"), ErrDuplicate},
		{"sqlite unique constraint", errors.New("constraint failed: UNIQUE constraint failed: records.id (1555)"), ErrDuplicate},
		{"plain no rows", sql.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("load record: %w", sql.ErrNoRows), ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MapDBError(tc.in); !errors.Is(got, tc.want) {
				t.Fatalf("MapDBError(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestMapDBErrorPassthrough(t *testing.T) {
	if got := MapDBError(nil); got != nil {
		t.Fatalf("nil input must stay nil, got %v", got)
	}

	in := errors.New("dial tcp 127.0.0.1:5432: connection refused")
	got := MapDBError(in)
	if errors.Is(got, ErrDuplicate) || errors.Is(got, ErrNotFound) {
		t.Fatalf("unrelated error was mapped to a sentinel: %v", got)
	}
	if got != in {
		t.Fatalf("unrelated error should pass through untouched, got %v", got)
	}
}
