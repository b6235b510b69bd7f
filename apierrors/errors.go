// Package apierrors defines the typed error kinds surfaced to callers of
// the pipeline (see spec §7) and the HTTP helpers that render them.
package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/videoedit/ai-edit-api/log"
	"github.com/xeipuuv/gojsonschema"
)

// Kind is one of the error categories surfaced to job records and API
// responses.
type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindNotFound              Kind = "not_found"
	KindDependencyUnavailable Kind = "dependency_unavailable"
	KindDependencyFailure     Kind = "dependency_failure"
	KindValidationFailure     Kind = "validation_failure"
	KindRenderFailure         Kind = "render_failure"
	KindTransient             Kind = "transient"
)

// Error is the concrete error type carrying a Kind plus an optional
// wrapped cause. Component code should construct these with the New*
// helpers rather than ad-hoc fmt.Errorf, so the job runner and HTTP
// layer can make retry/status decisions off of Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NewInvalidInput(msg string, err error) error { return newErr(KindInvalidInput, msg, err) }
func NewNotFound(msg string, err error) error     { return newErr(KindNotFound, msg, err) }
func NewDependencyUnavailable(msg string, err error) error {
	return newErr(KindDependencyUnavailable, msg, err)
}
func NewDependencyFailure(msg string, err error) error {
	return newErr(KindDependencyFailure, msg, err)
}
func NewValidationFailure(msg string, err error) error {
	return newErr(KindValidationFailure, msg, err)
}
func NewRenderFailure(msg string, err error) error { return newErr(KindRenderFailure, msg, err) }
func NewTransient(msg string, err error) error     { return newErr(KindTransient, msg, err) }

// KindOf extracts the Kind of an apierrors.Error in the err chain, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// UnretriableError wraps an error that the job runner must not retry
// regardless of its Kind, e.g. a validation failure with an empty EDL.
type UnretriableError struct{ error }

func Unretriable(err error) error {
	return UnretriableError{err}
}

func (e UnretriableError) Unwrap() error { return e.error }

// IsUnretriable reports whether err (or anything it wraps) is marked
// unretriable, or is itself a Kind that is never worth retrying.
func IsUnretriable(err error) bool {
	if errors.As(err, &UnretriableError{}) {
		return true
	}
	switch kind, ok := KindOf(err); {
	case ok && (kind == KindInvalidInput || kind == KindNotFound || kind == KindValidationFailure):
		return true
	default:
		_ = kind
		return false
	}
}

// --- HTTP rendering -------------------------------------------------------

type APIError struct {
	Msg    string `json:"message"`
	Status int    `json:"status"`
	Err    error  `json:"-"`
}

func writeHTTPError(w http.ResponseWriter, msg string, status int, err error) APIError {
	w.WriteHeader(status)

	var errorDetail string
	if err != nil {
		errorDetail = err.Error()
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg, "error_detail": errorDetail}); err != nil {
		log.LogNoRequestID("error writing HTTP error", "http_error_msg", msg, "error", err)
	}
	return APIError{msg, status, err}
}

func WriteHTTPBadRequest(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, msg, http.StatusBadRequest, err)
}

func WriteHTTPNotFound(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, msg, http.StatusNotFound, err)
}

func WriteHTTPUnsupportedMediaType(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, msg, http.StatusUnsupportedMediaType, err)
}

func WriteHTTPInternalServerError(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, msg, http.StatusInternalServerError, err)
}

func WriteHTTPServiceUnavailable(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, msg, http.StatusServiceUnavailable, err)
}

func WriteHTTPBadBodySchema(where string, w http.ResponseWriter, errs []gojsonschema.ResultError) APIError {
	sb := strings.Builder{}
	sb.WriteString("Body validation error in ")
	sb.WriteString(where)
	sb.WriteString(" ")
	for i := 0; i < len(errs); i++ {
		sb.WriteString(errs[i].String())
		sb.WriteString(" ")
	}
	return writeHTTPError(w, sb.String(), http.StatusBadRequest, nil)
}

// WriteHTTPForKind renders err with a status code derived from its Kind,
// falling back to 500 for errors with no recognised Kind.
func WriteHTTPForKind(w http.ResponseWriter, msg string, err error) APIError {
	kind, ok := KindOf(err)
	if !ok {
		return WriteHTTPInternalServerError(w, msg, err)
	}
	switch kind {
	case KindInvalidInput, KindValidationFailure:
		return WriteHTTPBadRequest(w, msg, err)
	case KindNotFound:
		return WriteHTTPNotFound(w, msg, err)
	case KindDependencyUnavailable:
		return WriteHTTPServiceUnavailable(w, msg, err)
	default:
		return WriteHTTPInternalServerError(w, msg, err)
	}
}
