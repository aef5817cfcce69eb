package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validationf("bad"), http.StatusBadRequest},
		{New(Unauthorized, "x"), http.StatusUnauthorized},
		{New(InvalidCredential, "x"), http.StatusUnauthorized},
		{New(Forbidden, "x"), http.StatusForbidden},
		{New(NotFound, "x"), http.StatusNotFound},
		{New(Conflict, "x"), http.StatusConflict},
		{New(TooManyRequests, "x"), http.StatusTooManyRequests},
		{New(Unavailable, "x"), http.StatusServiceUnavailable},
		{New(Misconfigured, "x"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", New(NotFound, "gone")), http.StatusNotFound},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Errorf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestMessage_HidesInternals(t *testing.T) {
	cause := errors.New("mongo: connection refused at 10.0.0.3")

	if got := Message(Wrap(Internal, "insert failed", cause)); got != "internal server error" {
		t.Errorf("internal message leaked: %q", got)
	}
	if got := Message(cause); got != "internal server error" {
		t.Errorf("plain error leaked: %q", got)
	}
	if got := Message(New(NotFound, "Task not found")); got != "Task not found" {
		t.Errorf("Message = %q", got)
	}
	if got := Message(New(Misconfigured, "Secret Key is not defined")); got != "Internal Server Error: Secret Key is not defined" {
		t.Errorf("Message = %q", got)
	}
}

func TestWrap_Unwraps(t *testing.T) {
	cause := errors.New("root")
	err := Wrap(Internal, "outer", cause)
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should find the cause")
	}
	if !Is(err, Internal) || Is(err, NotFound) {
		t.Fatal("Is reported the wrong kind")
	}
}
