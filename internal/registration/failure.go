// ABOUTME: Classification of registration submission failures into display variants
// ABOUTME: Each variant maps to inline field errors, a general banner or a notification

package registration

import (
	"errors"
	"slices"
	"strings"

	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/validate"
)

// User-facing messages for the failure variants.
const (
	MsgEmailTaken       = "This email is already registered"
	MsgUsernameTaken    = "This username is already taken"
	MsgDuplicate        = "Duplicate entry detected"
	MsgFallback         = "An error occurred. Please try again."
	MsgSchemaFailed     = "Validation failed. Please check your inputs."
	MsgUnexpected       = "An unexpected error occurred. Please try again."
	MsgUnexpectedBanner = "An unexpected error occurred"
)

// Failure is one of the failure variants below.
type Failure interface {
	error
	failure()
}

// FieldValidationFailure is a server validation_failed error with per-field details.
type FieldValidationFailure struct {
	Details map[Field]string
}

// DuplicateFailure is a server duplicate_entry error. Field is Email or
// Username when the description names one, empty otherwise.
type DuplicateFailure struct {
	Field       Field
	Description string
}

// MessageFailure is any other server error with a readable message.
type MessageFailure struct {
	Message string
}

// FallbackFailure is a failure with nothing readable to show.
type FallbackFailure struct {
	Err error
}

// SchemaFailure is a local validation failure.
type SchemaFailure struct {
	Fields map[Field]string
}

// UnexpectedFailure is anything else, including an incomplete draft.
type UnexpectedFailure struct {
	Err error
}

func (FieldValidationFailure) failure() {}
func (DuplicateFailure) failure()       {}
func (MessageFailure) failure()         {}
func (FallbackFailure) failure()        {}
func (SchemaFailure) failure()          {}
func (UnexpectedFailure) failure()      {}

func (f FieldValidationFailure) Error() string { return "validation failed: " + joinFields(f.Details) }
func (f DuplicateFailure) Error() string {
	if f.Description != "" {
		return "duplicate entry: " + f.Description
	}
	return "duplicate entry"
}
func (f MessageFailure) Error() string { return f.Message }
func (f FallbackFailure) Error() string {
	if f.Err != nil {
		return f.Err.Error()
	}
	return MsgFallback
}
func (f SchemaFailure) Error() string     { return "invalid input: " + joinFields(f.Fields) }
func (f UnexpectedFailure) Error() string {
	if f.Err == nil {
		return "unexpected error"
	}
	return "unexpected error: " + f.Err.Error()
}

func (f UnexpectedFailure) Unwrap() error { return f.Err }
func (f FallbackFailure) Unwrap() error   { return f.Err }

// Classify maps a submission error to its failure variant. A nil error has
// no variant.
func Classify(err error) Failure {
	if err == nil {
		return nil
	}
	if f, ok := err.(Failure); ok {
		return f
	}

	if ve, ok := validate.AsValidationError(err); ok {
		fields := make(map[Field]string, len(ve.Fields))
		for k, v := range ve.Fields {
			fields[Field(k)] = v
		}
		return SchemaFailure{Fields: fields}
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}

	var te *client.TransportError
	if errors.As(err, &te) {
		return FallbackFailure{Err: err}
	}

	return UnexpectedFailure{Err: err}
}

func classifyAPIError(e *client.APIError) Failure {
	switch {
	case e.Code == client.CodeValidationFailed && len(e.Details) > 0:
		details := make(map[Field]string, len(e.Details))
		for k, v := range e.Details {
			details[Field(k)] = v
		}
		return FieldValidationFailure{Details: details}

	case e.Code == client.CodeDuplicateEntry:
		// The server only names the conflicting column in free text.
		f := DuplicateFailure{Description: e.Description}
		switch {
		case strings.Contains(e.Description, "email"):
			f.Field = Email
		case strings.Contains(e.Description, "username"):
			f.Field = Username
		}
		return f

	case e.Message != "":
		return MessageFailure{Message: e.Message}

	default:
		return FallbackFailure{Err: e}
	}
}

// stepFor returns the step owning the highest-precedence field in details:
// account fields, then credentials, then personal fields.
func stepFor(details map[Field]string) (Step, bool) {
	for _, s := range []Step{StepAccount, StepCredentials, StepPersonal} {
		for f := range details {
			if s.Owns(f) {
				return s, true
			}
		}
	}
	return 0, false
}

func joinFields(m map[Field]string) string {
	names := make([]string, 0, len(m))
	for f := range m {
		names = append(names, string(f))
	}
	if len(names) == 0 {
		return "no fields"
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
