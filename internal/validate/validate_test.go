// ABOUTME: Tests for struct validation messages
// ABOUTME: Verifies JSON field naming, message lookup and fallbacks

package validate

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name    string `json:"name" validate:"min=3,max=10"`
	Email   string `json:"email" validate:"email"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
	Nick    string `json:"nick" validate:"required"`
}

var sampleMessages = Messages{
	"name.min": "Name must be at least 3 characters",
	"name.max": "Name cannot exceed 10 characters",
	"email":    "Please enter a valid email address",
}

func TestStruct_Valid(t *testing.T) {
	v := New(sampleMessages)
	err := v.Struct(sample{Name: "abcd", Email: "a@b.co", Nick: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_Messages(t *testing.T) {
	v := New(sampleMessages)
	err := v.Struct(sample{Name: "ab", Email: "nope", Website: "not a url"})

	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	want := map[string]string{
		"name":    "Name must be at least 3 characters",
		"email":   "Please enter a valid email address",
		"website": "website is invalid",
		"nick":    "nick is required",
	}
	for field, msg := range want {
		if got := ve.Fields[field]; got != msg {
			t.Errorf("field %s: expected %q, got %q", field, msg, got)
		}
	}
	if len(ve.Fields) != len(want) {
		t.Errorf("expected %d fields, got %v", len(want), ve.Fields)
	}
}

func TestStruct_MaxMessage(t *testing.T) {
	v := New(sampleMessages)
	err := v.Struct(sample{Name: strings.Repeat("x", 11), Email: "a@b.co", Nick: "n"})
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Fields["name"] != "Name cannot exceed 10 characters" {
		t.Errorf("unexpected message %q", ve.Fields["name"])
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: FieldErrors{"b": "second", "a": "first"}}
	if got := err.Error(); got != "validation failed: a: first; b: second" {
		t.Errorf("unexpected error text %q", got)
	}
	var wrapped error = err
	if !errors.As(wrapped, new(*ValidationError)) {
		t.Error("errors.As should match *ValidationError")
	}
}

func TestStruct_NonStruct(t *testing.T) {
	v := New(nil)
	if err := v.Struct("not a struct"); err == nil {
		t.Error("expected error for non-struct input")
	} else if _, ok := AsValidationError(err); ok {
		t.Error("non-struct input should not be a ValidationError")
	}
}
