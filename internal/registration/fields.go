// ABOUTME: Registration steps, their fields and the per-step validated values
// ABOUTME: Draft accumulates step values; FieldErrors holds per-field and general messages

package registration

import (
	"errors"
	"maps"

	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/validate"
)

// Field is a registration form field, named as on the wire.
type Field string

const (
	FirstName       Field = "first_name"
	LastName        Field = "last_name"
	PhoneNumber     Field = "phone_number"
	Username        Field = "username"
	Email           Field = "email"
	Password        Field = "password"
	ConfirmPassword Field = "confirm_password"

	// General holds errors not tied to a field.
	General Field = "general"
)

// Step indexes the three wizard pages.
type Step int

const (
	StepPersonal Step = iota
	StepAccount
	StepCredentials
)

// LastStep is the step whose submission calls the server.
const LastStep = StepCredentials

var stepFields = map[Step][]Field{
	StepPersonal:    {FirstName, LastName, PhoneNumber},
	StepAccount:     {Username, Email},
	StepCredentials: {Password, ConfirmPassword},
}

var stepNames = map[Step]string{
	StepPersonal:    "Personal Info",
	StepAccount:     "Account",
	StepCredentials: "Password",
}

// Fields returns the fields owned by s.
func (s Step) Fields() []Field {
	return stepFields[s]
}

// Owns reports whether f belongs to s.
func (s Step) Owns(f Field) bool {
	for _, sf := range stepFields[s] {
		if sf == f {
			return true
		}
	}
	return false
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "Unknown"
}

// StepValues is the validated content of one step's form.
type StepValues interface {
	Step() Step
	values() map[Field]string
}

// PersonalInfo is step 0.
type PersonalInfo struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
}

func (PersonalInfo) Step() Step { return StepPersonal }

func (p PersonalInfo) values() map[Field]string {
	return map[Field]string{FirstName: p.FirstName, LastName: p.LastName, PhoneNumber: p.PhoneNumber}
}

// AccountInfo is step 1.
type AccountInfo struct {
	Username string `json:"username" validate:"min=3"`
	Email    string `json:"email" validate:"email"`
}

func (AccountInfo) Step() Step { return StepAccount }

func (a AccountInfo) values() map[Field]string {
	return map[Field]string{Username: a.Username, Email: a.Email}
}

// Credentials is step 2.
type Credentials struct {
	Password        string `json:"password" validate:"min=6"`
	ConfirmPassword string `json:"confirm_password"`
}

func (Credentials) Step() Step { return StepCredentials }

func (c Credentials) values() map[Field]string {
	return map[Field]string{Password: c.Password, ConfirmPassword: c.ConfirmPassword}
}

var schema = validate.New(validate.Messages{
	"first_name": "First name is required",
	"last_name":  "Last name is required",
	"username":   "Username must be at least 3 characters",
	"email":      "Please enter a valid email address",
	"password":   "Password must be at least 6 characters",
})

// Validate checks v against its step's rules.
func Validate(v StepValues) error {
	return schema.Struct(v)
}

// ErrIncompleteDraft is returned when the final submission lacks required data.
var ErrIncompleteDraft = errors.New("missing required fields")

// Draft is the accumulated input across steps. Fields of steps not yet
// submitted are absent.
type Draft map[Field]string

// Merge copies every field of v into the draft.
func (d Draft) Merge(v StepValues) {
	maps.Copy(d, v.values())
}

// Has reports whether f was submitted.
func (d Draft) Has(f Field) bool {
	_, ok := d[f]
	return ok
}

// Personal seeds the step 0 form.
func (d Draft) Personal() PersonalInfo {
	return PersonalInfo{FirstName: d[FirstName], LastName: d[LastName], PhoneNumber: d[PhoneNumber]}
}

// Account seeds the step 1 form.
func (d Draft) Account() AccountInfo {
	return AccountInfo{Username: d[Username], Email: d[Email]}
}

// Credentials seeds the step 2 form.
func (d Draft) Credentials() Credentials {
	return Credentials{Password: d[Password], ConfirmPassword: d[ConfirmPassword]}
}

// Request builds the registration payload. Every field except the phone
// number must be non-empty.
func (d Draft) Request() (client.RegisterRequest, error) {
	for _, f := range []Field{ConfirmPassword, Email, FirstName, LastName, Username, Password} {
		if d[f] == "" {
			return client.RegisterRequest{}, ErrIncompleteDraft
		}
	}
	return client.RegisterRequest{
		FirstName:       d[FirstName],
		LastName:        d[LastName],
		PhoneNumber:     d[PhoneNumber],
		Username:        d[Username],
		Email:           d[Email],
		Password:        d[Password],
		ConfirmPassword: d[ConfirmPassword],
	}, nil
}

// FieldErrors maps a field (or General) to its message.
type FieldErrors map[Field]string

// Prune keeps only errors for fields of s, plus the general error.
func (e FieldErrors) Prune(s Step) {
	for f := range e {
		if f != General && !s.Owns(f) {
			delete(e, f)
		}
	}
}

// Clear removes the error for f.
func (e FieldErrors) Clear(f Field) {
	delete(e, f)
}

// Merge copies every entry of other into e.
func (e FieldErrors) Merge(other map[Field]string) {
	maps.Copy(e, other)
}

// HasStepErrors reports whether any field of s has an error.
func (e FieldErrors) HasStepErrors(s Step) bool {
	for _, f := range s.Fields() {
		if e[f] != "" {
			return true
		}
	}
	return false
}
