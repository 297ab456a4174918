package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TemplateSummary is one catalog entry offered to the caller for selection.
type TemplateSummary struct {
	ID        string
	Name      string
	TaskCount int
	Variant   TemplateVariant
}

// Catalog lists templates applicable to a transaction across both template
// stores.
type Catalog struct {
	store TemplateStore
}

// NewCatalog constructs the template catalog.
func NewCatalog(store TemplateStore) *Catalog {
	return &Catalog{store: store}
}

// ListApplicableTemplates returns active templates matching the transaction
// type and service tier, merged across both variants. Id collisions keep the
// normalized entry. Results are sorted by name for stable display, but the
// order is not part of the contract.
func (c *Catalog) ListApplicableTemplates(ctx context.Context, txnType TransactionType, tier ServiceTier) ([]TemplateSummary, error) {
	if c == nil || c.store == nil {
		return nil, ErrStoreNotConfigured
	}
	txnType = TransactionType(strings.TrimSpace(string(txnType)))
	if txnType == "" {
		return nil, ErrTransactionTypeRequired
	}

	legacy, err := c.store.ListLegacyTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list legacy templates: %v", ErrCatalogUnavailable, err)
	}
	normalized, err := c.store.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list templates: %v", ErrCatalogUnavailable, err)
	}

	merged := make(map[string]TemplateSummary)
	for _, t := range legacy {
		if !t.Active || !t.Applicable(txnType, tier) {
			continue
		}
		merged[t.ID] = TemplateSummary{
			ID:        t.ID,
			Name:      t.Name,
			TaskCount: len(t.TaskDefinitions()),
			Variant:   VariantLegacy,
		}
	}
	// Normalized entries win on id collision so resolution stays deterministic.
	for _, t := range normalized {
		if !t.Active || !t.Applicable(txnType, tier) {
			continue
		}
		merged[t.ID] = TemplateSummary{
			ID:        t.ID,
			Name:      t.Name,
			TaskCount: len(t.TaskDefinitions()),
			Variant:   VariantNormalized,
		}
	}

	summaries := make([]TemplateSummary, 0, len(merged))
	for _, summary := range merged {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Name != summaries[j].Name {
			return summaries[i].Name < summaries[j].Name
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}
