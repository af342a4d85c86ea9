package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/metrics"
)

type binding struct {
	prefix string
	name   string
	p      Provider
}

// Registry routes a model id to the binding registered for its name prefix
// ("gpt" to OpenAI, "claude" to Anthropic). It is filled at startup and only
// read afterwards.
type Registry struct {
	bindings []binding
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds a model-id prefix to a provider. The longest matching
// prefix wins on lookup.
func (r *Registry) Register(prefix, name string, p Provider) {
	r.bindings = append(r.bindings, binding{prefix: strings.ToLower(prefix), name: name, p: p})
	sort.SliceStable(r.bindings, func(i, j int) bool {
		return len(r.bindings[i].prefix) > len(r.bindings[j].prefix)
	})
}

func (r *Registry) lookup(model string) (binding, bool) {
	m := strings.ToLower(model)
	for _, b := range r.bindings {
		if strings.HasPrefix(m, b.prefix) {
			return b, true
		}
	}
	return binding{}, false
}

// Supports reports whether a binding exists for the model id.
func (r *Registry) Supports(model string) bool {
	_, ok := r.lookup(model)
	return ok
}

// Generate dispatches to the bound provider and records call metrics.
func (r *Registry) Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	b, ok := r.lookup(model)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoBinding, model)
	}

	start := time.Now()
	text, err := b.p.Generate(ctx, model, prompt, maxTokens)
	metrics.ProviderLatency.WithLabelValues(b.name, model).Observe(time.Since(start).Seconds())
	metrics.ProviderRequests.WithLabelValues(b.name, model, outcome(err)).Inc()
	return text, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
