// Package provider puts the text-generation backends behind one contract:
// prompt in, first text block out.
package provider

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnavailable   = errors.New("provider unavailable")
	ErrEmptyResponse = errors.New("provider returned no text")
	ErrNoBinding     = errors.New("no provider bound to model")
)

// Provider generates free text for a prompt. Implementations are safe for
// concurrent use and are constructed once per process.
type Provider interface {
	Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

type PartKind int

const (
	PartText PartKind = iota
	PartReasoning
	PartToolUse
	PartOther
)

func (k PartKind) String() string {
	switch k {
	case PartText:
		return "text"
	case PartReasoning:
		return "reasoning"
	case PartToolUse:
		return "tool_use"
	default:
		return "other"
	}
}

// Part is one block of a provider response after normalization.
type Part struct {
	Kind PartKind
	Text string
}

// FirstText returns the first non-empty text part.
func FirstText(parts []Part) (string, bool) {
	for _, p := range parts {
		if p.Kind == PartText && p.Text != "" {
			return p.Text, true
		}
	}
	return "", false
}

// Error carries the failing provider and model. It matches both its kind
// (ErrUnavailable, ErrEmptyResponse) and the underlying cause via errors.Is.
type Error struct {
	Provider string
	Model    string
	Kind     error
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Model, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Provider, e.Model, e.Kind, e.Cause)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func unavailable(provider, model string, cause error) error {
	return &Error{Provider: provider, Model: model, Kind: ErrUnavailable, Cause: cause}
}

func empty(provider, model string) error {
	return &Error{Provider: provider, Model: model, Kind: ErrEmptyResponse}
}
