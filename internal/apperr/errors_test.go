package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: NewValidation("profile", "Profile data is required"), want: http.StatusBadRequest},
		{name: "wrapped validation", err: fmt.Errorf("decode: %w", NewValidation("profiles", "must be an array")), want: http.StatusBadRequest},
		{name: "unavailable", err: &UpstreamUnavailableError{Missing: "GOOGLE_API_KEY"}, want: http.StatusInternalServerError},
		{name: "transform", err: NewTransform("profiles[%d] is not an object", 2), want: http.StatusInternalServerError},
		{name: "plain", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Status(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestUpstreamUnavailableMessageNamesCredential(t *testing.T) {
	err := &UpstreamUnavailableError{Missing: "GOOGLE_API_KEY", Err: errors.New("gemini api key is not configured")}

	if !strings.Contains(err.Error(), "GOOGLE_API_KEY") {
		t.Fatalf("expected credential name in message, got %q", err.Error())
	}

	if !errors.Is(err, err.Err) {
		t.Fatalf("expected wrapped error to be reachable")
	}
}

func TestPublicMessageHidesTransformDetails(t *testing.T) {
	err := NewTransform("profiles[%d] is not an object", 3)

	if got := PublicMessage(err); got != "Failed to transform profile data" {
		t.Fatalf("unexpected public message: %q", got)
	}

	validation := NewValidation("requirements", "Requirements are required")
	if got := PublicMessage(validation); got != "requirements: Requirements are required" {
		t.Fatalf("unexpected validation message: %q", got)
	}
}
