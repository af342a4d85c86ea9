package entitlements

import (
	"fmt"
	"strings"
)

type ProviderFamily string

const (
	ProviderOpenAI    ProviderFamily = "openai"
	ProviderAnthropic ProviderFamily = "anthropic"
)

// Model is one immutable catalog entry.
type Model struct {
	ID           string         `json:"id"`
	Provider     ProviderFamily `json:"provider"`
	TierRequired Tier           `json:"tier_required"`
	MaxTokens    int            `json:"max_tokens"`
	CostPerToken float64        `json:"cost_per_token"`
}

// Catalog is built once at startup and only read afterwards.
type Catalog struct {
	byID  map[string]Model
	order []string
}

// NewCatalog validates and indexes the given entries.
func NewCatalog(entries ...Model) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Model, len(entries))}
	for _, m := range entries {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog entry without model id")
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", id)
		}
		if m.Provider == "" {
			return nil, fmt.Errorf("catalog entry %q has no provider family", id)
		}
		m.ID = id
		m.TierRequired = NormalizeTier(string(m.TierRequired))
		c.byID[id] = m
		c.order = append(c.order, id)
	}
	return c, nil
}

// DefaultCatalog is the production model table.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Model{ID: "gpt-3.5-turbo", Provider: ProviderOpenAI, TierRequired: TierFree, MaxTokens: 4000, CostPerToken: 0.000002},
		Model{ID: "gpt-4", Provider: ProviderOpenAI, TierRequired: TierPro, MaxTokens: 8000, CostPerToken: 0.00003},
		Model{ID: "claude-3-7-sonnet-20250219", Provider: ProviderAnthropic, TierRequired: TierPro, MaxTokens: 200000, CostPerToken: 0.000015},
		Model{ID: "claude-3-5-haiku-20241022", Provider: ProviderAnthropic, TierRequired: TierPro, MaxTokens: 200000, CostPerToken: 0.000003},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the entry for a model id.
func (c *Catalog) Lookup(id string) (Model, error) {
	m, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Model{}, fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	return m, nil
}

// Models returns all entries in declaration order.
func (c *Catalog) Models() []Model {
	out := make([]Model, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// WithFamilies returns a catalog holding only entries served by the given
// provider families, in the same order.
func (c *Catalog) WithFamilies(families ...ProviderFamily) *Catalog {
	keep := make(map[ProviderFamily]bool, len(families))
	for _, f := range families {
		keep[f] = true
	}
	out := &Catalog{byID: make(map[string]Model)}
	for _, id := range c.order {
		m := c.byID[id]
		if keep[m.Provider] {
			out.byID[id] = m
			out.order = append(out.order, id)
		}
	}
	return out
}
