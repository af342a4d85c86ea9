// Package generation runs one test-generation request end to end: quota gate,
// prompt, primary provider call, metrics, best-effort documentation, then
// metering and history.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
	"github.com/GenTestOfficial/GenTest-Website/app/repository"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/metrics"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/prompt"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/provider"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/synth"
)

var (
	ErrInvalidRequest = errors.New("invalid generation request")
	ErrProvider       = errors.New("test generation failed")
)

// Result is returned to the caller on success. Documentation is nil when the
// documentation step failed or produced something unusable.
type Result struct {
	Tests         string               `json:"tests"`
	Coverage      int                  `json:"coverage"`
	TestCount     int                  `json:"testCount"`
	Documentation *synth.Documentation `json:"documentation"`
}

// DailyUsage mirrors metered tokens into the per-day rollup.
type DailyUsage interface {
	AddDailyUsage(ctx context.Context, userID string, at time.Time, tokens int64) error
}

// binder is implemented by provider.Registry.
type binder interface {
	Supports(model string) bool
}

type Options struct {
	Catalog  *entitlements.Catalog
	Provider provider.Provider
	Users    repository.UserRepository
	History  repository.HistoryRepository
	// Daily is optional.
	Daily DailyUsage
}

// Pipeline is safe for concurrent use. Its dependencies are built once at
// startup and shared by all requests.
type Pipeline struct {
	catalog  *entitlements.Catalog
	provider provider.Provider
	users    repository.UserRepository
	history  repository.HistoryRepository
	daily    DailyUsage
	now      func() time.Time
}

// New checks that every catalog model can be dispatched before returning.
func New(opts Options) (*Pipeline, error) {
	if opts.Catalog == nil || opts.Provider == nil || opts.Users == nil || opts.History == nil {
		return nil, errors.New("generation: catalog, provider, users and history are required")
	}
	if b, ok := opts.Provider.(binder); ok {
		for _, m := range opts.Catalog.Models() {
			if !b.Supports(m.ID) {
				return nil, fmt.Errorf("generation: model %q: %w", m.ID, provider.ErrNoBinding)
			}
		}
	}
	return &Pipeline{
		catalog:  opts.Catalog,
		provider: opts.Provider,
		users:    opts.Users,
		history:  opts.History,
		daily:    opts.Daily,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Catalog returns the models this pipeline serves.
func (p *Pipeline) Catalog() *entitlements.Catalog {
	return p.catalog
}

// Run handles one request for an authenticated user. A primary provider
// failure returns before anything is metered or recorded.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	req = req.normalized()
	if err := validateRequest(req); err != nil {
		metrics.Generations.WithLabelValues("invalid").Inc()
		return nil, err
	}
	model, err := p.catalog.Lookup(req.Model)
	if err != nil {
		metrics.Generations.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	user, _, err := p.users.EnsureUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if d := entitlements.Admit(user, model); !d.Allowed() {
		metrics.Generations.WithLabelValues("denied").Inc()
		return nil, d.Err()
	}

	language := prompt.DetectLanguage(req.Code)
	tests, err := p.provider.Generate(ctx, model.ID, prompt.BuildGeneration(req.Code, req.Framework, language), prompt.GenerationMaxTokens)
	if err != nil {
		metrics.Generations.WithLabelValues("provider_error").Inc()
		slog.Error("primary generation failed", "user_id", req.UserID, "model", model.ID, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	m := synth.DeriveMetrics(tests)
	doc := p.document(ctx, req, model.ID, tests)

	// The primary call is already billable; accounting must not depend on
	// the client still being connected.
	acct := context.WithoutCancel(ctx)
	tokens := int64(utf8.RuneCountInString(tests))
	if _, err := p.users.IncrementUsage(acct, req.UserID, tokens); err != nil {
		metrics.Generations.WithLabelValues("metering_error").Inc()
		return nil, fmt.Errorf("meter usage: %w", err)
	}
	metrics.TokensMetered.WithLabelValues(model.ID).Add(float64(tokens))

	p.recordHistory(acct, req, model.ID, language, tests, tokens)
	if p.daily != nil {
		if err := p.daily.AddDailyUsage(acct, req.UserID, p.now(), tokens); err != nil {
			slog.Warn("failed to record daily usage", "user_id", req.UserID, "err", err)
		}
	}

	if doc == nil {
		metrics.Generations.WithLabelValues("degraded").Inc()
	} else {
		metrics.Generations.WithLabelValues("ok").Inc()
	}
	return &Result{
		Tests:         tests,
		Coverage:      m.Coverage,
		TestCount:     m.TestCount,
		Documentation: doc,
	}, nil
}

// document asks the same model to describe the generated tests. Every failure
// is logged and yields nil.
func (p *Pipeline) document(ctx context.Context, req Request, model, tests string) *synth.Documentation {
	raw, err := p.provider.Generate(ctx, model, prompt.BuildDocumentation(tests, req.Framework), prompt.DocumentationMaxTokens)
	if err != nil {
		metrics.DocumentationDegraded.Inc()
		slog.Warn("documentation generation failed", "user_id", req.UserID, "model", model, "err", err)
		return nil
	}
	doc := synth.ParseDocumentation(raw)
	if doc == nil {
		metrics.DocumentationDegraded.Inc()
		slog.Warn("documentation response not usable", "user_id", req.UserID, "model", model, "bytes", len(raw))
	}
	return doc
}

func (p *Pipeline) recordHistory(ctx context.Context, req Request, model, language, tests string, tokens int64) {
	entry := &models.TestHistory{
		UserID:     req.UserID,
		Code:       req.Code,
		TestCode:   tests,
		Framework:  req.Framework,
		Language:   language,
		Model:      model,
		TokensUsed: tokens,
	}
	if err := p.history.Create(ctx, entry); err != nil {
		slog.Error("failed to write test history", "user_id", req.UserID, "model", model, "err", err)
	}
}
