// ABOUTME: Three-step registration wizard state machine
// ABOUTME: Validates each step, accumulates the draft and maps failures to errors and notifications

package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/notify"
)

// Registrar submits a completed registration.
type Registrar interface {
	Register(ctx context.Context, req client.RegisterRequest) error
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(ctx context.Context, req client.RegisterRequest) error

func (f RegistrarFunc) Register(ctx context.Context, req client.RegisterRequest) error {
	return f(ctx, req)
}

// Wizard holds the registration flow state. It is not safe for concurrent
// use; the console drives it from its update loop.
type Wizard struct {
	Step       Step
	Draft      Draft
	Errors     FieldErrors
	Submitting bool
	Done       bool

	registrar Registrar
	notifier  notify.Notifier
	logger    *slog.Logger
}

// NewWizard starts a wizard on the first step.
func NewWizard(r Registrar, n notify.Notifier, logger *slog.Logger) *Wizard {
	if n == nil {
		n = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Wizard{
		Draft:     Draft{},
		Errors:    FieldErrors{},
		registrar: r,
		notifier:  n,
		logger:    logger,
	}
}

// Current returns the current step's form values, seeded from the draft.
func (w *Wizard) Current() StepValues {
	switch w.Step {
	case StepAccount:
		return w.Draft.Account()
	case StepCredentials:
		return w.Draft.Credentials()
	default:
		return w.Draft.Personal()
	}
}

// Submit handles one step submission end to end. On the last step it calls
// the registrar. It returns nil on success.
func (w *Wizard) Submit(ctx context.Context, v StepValues) Failure {
	req, f := w.Begin(v)
	if req == nil {
		return f
	}
	return w.Finish(w.registrar.Register(ctx, *req))
}

// Begin validates and records a step submission. When the last step is
// complete it returns the request to send; the caller must pass the result of
// sending it to Finish. Submitting stays true until then.
func (w *Wizard) Begin(v StepValues) (req *client.RegisterRequest, f Failure) {
	w.Submitting = true
	defer func() {
		if req == nil {
			w.Submitting = false
		}
	}()

	if v == nil || v.Step() != w.Step {
		return nil, w.apply(UnexpectedFailure{Err: fmt.Errorf("form for another step submitted on step %d", w.Step)})
	}
	if err := Validate(v); err != nil {
		return nil, w.apply(Classify(err))
	}

	w.Draft.Merge(v)
	for _, field := range w.Step.Fields() {
		w.Errors.Clear(field)
	}

	if w.Step < LastStep {
		w.Step++
		w.Errors.Prune(w.Step)
		return nil, nil
	}

	r, err := w.Draft.Request()
	if err != nil {
		return nil, w.apply(Classify(err))
	}
	clear(w.Errors)
	return &r, nil
}

// Finish applies the registrar's result.
func (w *Wizard) Finish(err error) Failure {
	defer func() { w.Submitting = false }()

	if err != nil {
		return w.apply(Classify(err))
	}

	w.notifier.Notify(notify.Success("Registration successful!", "You can now log in to your account."))
	w.Done = true
	return nil
}

// Back moves to the previous step. It does nothing on the first step.
func (w *Wizard) Back() {
	if w.Step > StepPersonal {
		w.Step--
		w.Errors.Prune(w.Step)
	}
}

// ClearFieldError drops the error for f, e.g. once the user edits it.
func (w *Wizard) ClearFieldError(f Field) {
	w.Errors.Clear(f)
}

func (w *Wizard) apply(f Failure) Failure {
	w.logger.Error("Registration error", "step", int(w.Step), "error", f)

	switch f := f.(type) {
	case FieldValidationFailure:
		w.Errors.Merge(f.Details)
		if s, ok := stepFor(f.Details); ok {
			w.Step = s
		}

	case DuplicateFailure:
		switch f.Field {
		case Email:
			w.Errors[Email] = MsgEmailTaken
			w.Draft[Email] = ""
			w.Step = StepAccount
		case Username:
			w.Errors[Username] = MsgUsernameTaken
			w.Draft[Username] = ""
			w.Step = StepAccount
		default:
			msg := f.Description
			if msg == "" {
				msg = MsgDuplicate
			}
			w.Errors[General] = msg
		}

	case MessageFailure:
		w.Errors[General] = f.Message
		w.notifier.Notify(notify.Error(f.Message))

	case FallbackFailure:
		w.Errors[General] = MsgFallback
		w.notifier.Notify(notify.Error(MsgFallback))

	case SchemaFailure:
		w.Errors.Merge(f.Fields)
		w.notifier.Notify(notify.Error(MsgSchemaFailed))

	case UnexpectedFailure:
		w.Errors[General] = MsgUnexpectedBanner
		if errors.Is(f.Err, ErrIncompleteDraft) {
			w.Errors[General] = "Missing required fields"
		}
		w.notifier.Notify(notify.Error(MsgUnexpected))

	default:
		w.Errors[General] = MsgUnexpectedBanner
		w.notifier.Notify(notify.Error(MsgUnexpected))
	}

	return f
}
