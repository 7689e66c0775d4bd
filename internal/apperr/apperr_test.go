package apperr

import (
  "errors"
  "fmt"
  "net/http"
  "testing"
)

func TestHTTPStatusMapping(t *testing.T) {
  cases := []struct {
    err  error
    want int
  }{
    {Authentication("bad token"), http.StatusUnauthorized},
    {Authorization("not yours"), http.StatusForbidden},
    {Validation("bad input"), http.StatusBadRequest},
    {NotFound("missing"), http.StatusNotFound},
    {Upstream("llm down", errors.New("dial tcp")), http.StatusServiceUnavailable},
    {Internal(errors.New("boom")), http.StatusInternalServerError},
    {errors.New("untyped"), http.StatusInternalServerError},
  }
  for _, tc := range cases {
    if got := HTTPStatus(tc.err); got != tc.want {
      t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
    }
  }
}

func TestUserMessageNeverLeaksInternals(t *testing.T) {
  cause := errors.New("pq: connection refused on 10.0.0.3")
  if msg := UserMessage(Internal(cause)); msg != "internal server error" {
    t.Errorf("internal error leaked: %q", msg)
  }
  if msg := UserMessage(cause); msg != "internal server error" {
    t.Errorf("untyped error leaked: %q", msg)
  }
  if msg := UserMessage(Upstream("advice service is temporarily unavailable", cause)); msg != "advice service is temporarily unavailable" {
    t.Errorf("expected stable upstream message, got %q", msg)
  }
}

func TestKindSurvivesWrapping(t *testing.T) {
  wrapped := fmt.Errorf("while handling request: %w", Validation("bad language code"))
  if KindOf(wrapped) != KindValidation {
    t.Errorf("expected kind to survive wrapping, got %v", KindOf(wrapped))
  }
  if HTTPStatus(wrapped) != http.StatusBadRequest {
    t.Errorf("expected 400 for wrapped validation error, got %d", HTTPStatus(wrapped))
  }
  if UserMessage(wrapped) != "bad language code" {
    t.Errorf("expected message to survive wrapping, got %q", UserMessage(wrapped))
  }
}

func TestUnwrap(t *testing.T) {
  cause := errors.New("root cause")
  err := Upstream("unavailable", cause)
  if !errors.Is(err, cause) {
    t.Error("expected errors.Is to find the cause")
  }
}
