package apperr

import (
  "errors"
  "fmt"
  "net/http"
)

// Kind classifies an error into the service-wide taxonomy. Handlers map a Kind
// to an HTTP status; everything outside the taxonomy is treated as internal
// and its details are never shown to the caller.
type Kind int

const (
  KindInternal Kind = iota
  KindAuthentication
  KindAuthorization
  KindValidation
  KindNotFound
  KindUpstream
)

type Error struct {
  Kind    Kind
  Message string
  Err     error
}

func (e *Error) Error() string {
  if e.Err != nil {
    return fmt.Sprintf("%s: %v", e.Message, e.Err)
  }
  return e.Message
}

func (e *Error) Unwrap() error {
  return e.Err
}

func Authentication(message string) *Error {
  return &Error{Kind: KindAuthentication, Message: message}
}

func Authorization(message string) *Error {
  return &Error{Kind: KindAuthorization, Message: message}
}

func Validation(message string) *Error {
  return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) *Error {
  return &Error{Kind: KindNotFound, Message: message}
}

// Upstream wraps a remote dependency failure (LLM API, OCR engine). The cause
// is kept for logs, the message is what the caller sees.
func Upstream(message string, cause error) *Error {
  return &Error{Kind: KindUpstream, Message: message, Err: cause}
}

func Internal(cause error) *Error {
  return &Error{Kind: KindInternal, Message: "internal server error", Err: cause}
}

// KindOf returns the Kind of err, or KindInternal for anything untyped.
func KindOf(err error) Kind {
  var ae *Error
  if errors.As(err, &ae) {
    return ae.Kind
  }
  return KindInternal
}

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
  switch KindOf(err) {
  case KindAuthentication:
    return http.StatusUnauthorized
  case KindAuthorization:
    return http.StatusForbidden
  case KindValidation:
    return http.StatusBadRequest
  case KindNotFound:
    return http.StatusNotFound
  case KindUpstream:
    return http.StatusServiceUnavailable
  default:
    return http.StatusInternalServerError
  }
}

// UserMessage returns the stable user-presentable message for err. Untyped
// errors collapse to a generic message so internals never leak.
func UserMessage(err error) string {
  var ae *Error
  if errors.As(err, &ae) {
    return ae.Message
  }
  return "internal server error"
}
