package ai

import (
	"context"

	"github.com/spigell/match-advisor/internal/apperr"
)

// Generator is the external text generation capability.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

type State int

const (
	Unavailable State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "unavailable"
}

// ClientHandle carries the outcome of constructing the generator at startup.
// It is never re-initialized; an Unavailable handle stays unavailable.
type ClientHandle struct {
	state     State
	provider  string
	generator Generator
	missing   string
	err       error
}

// NewReady wraps a constructed generator.
func NewReady(provider string, generator Generator) *ClientHandle {
	if generator == nil {
		return NewUnavailable(provider, "", nil)
	}
	return &ClientHandle{state: Ready, provider: provider, generator: generator}
}

// NewUnavailable records a failed construction. missing names the credential
// or setting that prevented it, e.g. GOOGLE_API_KEY.
func NewUnavailable(provider, missing string, err error) *ClientHandle {
	return &ClientHandle{state: Unavailable, provider: provider, missing: missing, err: err}
}

func (h *ClientHandle) State() State {
	if h == nil {
		return Unavailable
	}
	return h.state
}

func (h *ClientHandle) Provider() string {
	if h == nil {
		return ""
	}
	return h.provider
}

// Model returns the generator model name, or an empty string when unavailable.
func (h *ClientHandle) Model() string {
	if h.State() != Ready {
		return ""
	}
	return h.generator.Model()
}

// Generator returns the ready generator or an UpstreamUnavailableError.
func (h *ClientHandle) Generator() (Generator, error) {
	if h.State() != Ready {
		unavailable := &apperr.UpstreamUnavailableError{}
		if h != nil {
			unavailable.Missing = h.missing
			unavailable.Err = h.err
		}
		return nil, unavailable
	}
	return h.generator, nil
}
