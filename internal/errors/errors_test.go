package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIntegritySortsViolations(t *testing.T) {
	err := Integrity("orders reference missing rows", []Violation{
		{Table: "orders", ID: "o3", Field: "book_id", Ref: "b9", Reason: "does not exist"},
		{Table: "orders", ID: "o1", Field: "customer_id", Ref: "c9", Reason: "does not exist"},
		{Table: "orders", ID: "o1", Field: "book_id", Ref: "b8", Reason: "does not exist"},
	})

	got := []string{}
	for _, v := range err.Violations {
		got = append(got, v.ID+"/"+v.Field)
	}
	want := []string{"o1/book_id", "o1/customer_id", "o3/book_id"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violation order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"o1", "o3"}, err.IDs()); diff != "" {
		t.Fatalf("IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorMessageTruncatesViolations(t *testing.T) {
	var vs []Violation
	for i := 0; i < 5; i++ {
		vs = append(vs, Violation{Table: "orders", ID: fmt.Sprintf("o%d", i), Field: "quantity", Reason: "must be positive"})
	}
	msg := Validation("bad orders", vs).Error()

	if !strings.HasPrefix(msg, "[VALIDATION_ERROR] bad orders (") {
		t.Fatalf("unexpected prefix: %s", msg)
	}
	if !strings.Contains(msg, "and 2 more") {
		t.Fatalf("expected truncation marker, got %s", msg)
	}
}

func TestIsTypeUnwraps(t *testing.T) {
	base := Integrity("missing book", nil)
	wrapped := fmt.Errorf("compute rfm: %w", base)

	if !IsType(wrapped, TypeIntegrity) {
		t.Fatal("expected wrapped integrity error to match")
	}
	if IsType(wrapped, TypeValidation) {
		t.Fatal("did not expect validation match")
	}
	if IsType(nil, TypeIntegrity) {
		t.Fatal("nil must not match")
	}
}

func TestRows(t *testing.T) {
	invalid := []Violation{{Table: "books", ID: "b1", Field: "stock_qty", Reason: "must not be negative"}}
	missing := []Violation{{Table: "orders", ID: "o2", Field: "book_id", Ref: "b404", Reason: "does not exist"}}

	tests := []struct {
		name           string
		invalid        []Violation
		missing        []Violation
		wantNil        bool
		wantValidation bool
		wantIntegrity  bool
	}{
		{name: "clean", wantNil: true},
		{name: "column only", invalid: invalid, wantValidation: true},
		{name: "reference only", missing: missing, wantIntegrity: true},
		{name: "both", invalid: invalid, missing: missing, wantValidation: true, wantIntegrity: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Rows("bad columns", tt.invalid, "bad refs", tt.missing)
			if (err == nil) != tt.wantNil {
				t.Fatalf("err = %v, want nil: %v", err, tt.wantNil)
			}
			if got := IsType(err, TypeValidation); got != tt.wantValidation {
				t.Errorf("validation match = %v, want %v", got, tt.wantValidation)
			}
			if got := IsType(err, TypeIntegrity); got != tt.wantIntegrity {
				t.Errorf("integrity match = %v, want %v", got, tt.wantIntegrity)
			}
			if tt.wantIntegrity && !strings.Contains(err.Error(), "b404") {
				t.Errorf("message %q does not name the missing book", err.Error())
			}
		})
	}
}
