package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct{ in, out string }{
		{"а123вс77", "А123ВС77"},
		{" A001AA ", "A001AA"},
		{"В456ЕК50", "В456ЕК50"},
	}
	for _, tt := range tests {
		if got := NormalizeNumber(tt.in); got != tt.out {
			t.Fatalf("NormalizeNumber(%q) = %q, expected %q", tt.in, got, tt.out)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct{ in, out string }{
		{"123", "123"},
		{"%", `\%`},
		{"_", `\_`},
		{`a\b`, `a\\b`},
		{"10%_x", `10\%\_x`},
	}
	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.out {
			t.Fatalf("escapeLike(%q) = %q, expected %q", tt.in, got, tt.out)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505"}
	if !isUniqueViolation(dup) {
		t.Fatal("expected unique_violation to be recognized")
	}
	if !isUniqueViolation(fmt.Errorf("add vehicle: %w", dup)) {
		t.Fatal("expected a wrapped unique_violation to be recognized")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("foreign key violation must not be treated as a duplicate")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Fatal("plain errors must not be treated as a duplicate")
	}
	if isUniqueViolation(nil) {
		t.Fatal("nil is not a duplicate")
	}
}
