// ABOUTME: Response envelope and typed errors returned by the CentralAuth API client
// ABOUTME: APIError carries the server's error code and per-field details

package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Error codes emitted by the CentralAuth server.
const (
	CodeValidationFailed = "validation_failed"
	CodeDuplicateEntry   = "duplicate_entry"
	CodeInvalidRequest   = "invalid_request"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "resource_not_found"
	CodeDatabaseError    = "database_error"
	CodeInternalError    = "internal_error"
)

// Envelope is the uniform wrapper around every API response body.
type Envelope[T any] struct {
	Success bool       `json:"success"`
	Status  int        `json:"status,omitempty"`
	Message string     `json:"message,omitempty"`
	Data    *T         `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`

	hasSuccess bool
}

// UnmarshalJSON records whether the success flag was present so that a bare
// data payload is not mistaken for a failure.
func (e *Envelope[T]) UnmarshalJSON(b []byte) error {
	var aux struct {
		Success *bool      `json:"success"`
		Status  int        `json:"status"`
		Message string     `json:"message"`
		Data    *T         `json:"data"`
		Error   *ErrorBody `json:"error"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Envelope[T]{
		Status:     aux.Status,
		Message:    aux.Message,
		Data:       aux.Data,
		Error:      aux.Error,
		hasSuccess: aux.Success != nil,
	}
	if aux.Success != nil {
		e.Success = *aux.Success
	}
	return nil
}

func (e *Envelope[T]) apiError(status int) *APIError {
	if e.Status != 0 {
		status = e.Status
	}
	apiErr := &APIError{Status: status, Message: e.Message}
	if e.Error != nil {
		apiErr.Code = e.Error.Code
		apiErr.Description = e.Error.Description
		apiErr.Details = e.Error.Details
	}
	return apiErr
}

// ErrorBody is the structured error object inside a failed envelope.
type ErrorBody struct {
	Code        string  `json:"code"`
	Description string  `json:"description,omitempty"`
	Details     Details `json:"details,omitempty"`
}

// Details maps a field name to its error message.
type Details map[string]string

// UnmarshalJSON accepts string values, lists of strings (first entry wins)
// and any other scalar, which is formatted with %v.
func (d *Details) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*d = nil
		return nil
	}
	out := make(Details, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case []any:
			if len(val) > 0 {
				out[k] = fmt.Sprint(val[0])
			}
		case nil:
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	*d = out
	return nil
}

// APIError is a non-2xx (or success:false) response from the backend.
// A response without a structured body yields an APIError with only Status set.
type APIError struct {
	Status      int
	Code        string
	Message     string
	Description string
	Details     Details
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "" && e.Description != "":
		return fmt.Sprintf("backend error: %s: %s", e.Message, e.Description)
	case e.Message != "":
		return "backend error: " + e.Message
	case e.Description != "":
		return "backend error: " + e.Description
	case e.Code != "":
		return "backend error: " + e.Code
	default:
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
}

// Structured reports whether the backend sent an error envelope.
func (e *APIError) Structured() bool {
	return e.Code != "" || e.Message != "" || e.Description != ""
}

// DetailFields returns the detail keys in sorted order.
func (e *APIError) DetailFields() []string {
	fields := make([]string, 0, len(e.Details))
	for k := range e.Details {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Method string
	URL    string
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	if strings.HasPrefix(e.Reason, "cannot connect") {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
