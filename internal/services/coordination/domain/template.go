package domain

import (
	"context"
	"strings"
)

// TemplateVariant tags which on-disk shape a template came from.
type TemplateVariant string

// Template variants.
const (
	VariantLegacy     TemplateVariant = "legacy"
	VariantNormalized TemplateVariant = "normalized"
)

// Wildcard type tags. A template carrying either applies to every
// transaction type.
const (
	wildcardBoth    = "both"
	wildcardGeneral = "general"
)

// TemplateMeta is the metadata shared by both template variants.
type TemplateMeta struct {
	ID        string
	Name      string
	TypeTag   string
	TierScope ServiceTier
	Active    bool
}

// Applicable reports whether the template matches a transaction's type and
// tier. The wildcard type tags match every type; an empty tier scope matches
// every tier.
func (m TemplateMeta) Applicable(txnType TransactionType, tier ServiceTier) bool {
	tag := strings.ToLower(strings.TrimSpace(m.TypeTag))
	if tag != strings.ToLower(string(txnType)) && tag != wildcardBoth && tag != wildcardGeneral {
		return false
	}
	if m.TierScope != "" && m.TierScope != tier {
		return false
	}
	return true
}

// TaskDefinition is the unified in-memory shape both template variants
// normalize to. Downstream components never see variant-specific fields.
type TaskDefinition struct {
	Title        string
	Description  string
	Priority     Priority
	DueDateRule  *DueDateRule
	AgentVisible bool
}

// LegacyTaskEntry is one raw entry of the older flat-array template shape:
// an ad hoc day offset with no structured rule object.
type LegacyTaskEntry struct {
	Title          string
	Description    string
	Priority       string
	DaysFromAnchor *int
	Anchor         string
	AgentVisible   bool
}

// LegacyTemplate embeds its ordered task list directly in the template row.
type LegacyTemplate struct {
	TemplateMeta
	Tasks []LegacyTaskEntry
}

// RawDueDateRule is the structured rule carried by normalized
// task-definition rows.
type RawDueDateRule struct {
	Days   int
	Anchor string
}

// RawTaskDefinition is one child row of a normalized template. Rows may
// carry the task name in either Subject or Title.
type RawTaskDefinition struct {
	Subject      string
	Title        string
	Description  string
	Priority     string
	Rule         *RawDueDateRule
	AgentVisible bool
}

// NormalizedTemplate references a separate collection of task-definition rows.
type NormalizedTemplate struct {
	TemplateMeta
	Definitions []RawTaskDefinition
}

// TemplateSource is the unified read-only view over both variants.
type TemplateSource interface {
	Meta() TemplateMeta
	Variant() TemplateVariant
	TaskDefinitions() []TaskDefinition
}

// Meta returns the shared template metadata.
func (t LegacyTemplate) Meta() TemplateMeta { return t.TemplateMeta }

// Variant reports the legacy on-disk shape.
func (t LegacyTemplate) Variant() TemplateVariant { return VariantLegacy }

// TaskDefinitions normalizes the embedded task array. Entries with an
// empty title are dropped; missing priorities default to medium; a missing
// day offset means no due date.
func (t LegacyTemplate) TaskDefinitions() []TaskDefinition {
	defs := make([]TaskDefinition, 0, len(t.Tasks))
	for _, entry := range t.Tasks {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		var rule *DueDateRule
		if entry.DaysFromAnchor != nil {
			rule = &DueDateRule{Days: *entry.DaysFromAnchor, Anchor: parseAnchor(entry.Anchor)}
		}
		defs = append(defs, TaskDefinition{
			Title:        title,
			Description:  strings.TrimSpace(entry.Description),
			Priority:     ParsePriority(entry.Priority),
			DueDateRule:  rule,
			AgentVisible: entry.AgentVisible,
		})
	}
	return defs
}

// Meta returns the shared template metadata.
func (t NormalizedTemplate) Meta() TemplateMeta { return t.TemplateMeta }

// Variant reports the normalized on-disk shape.
func (t NormalizedTemplate) Variant() TemplateVariant { return VariantNormalized }

// TaskDefinitions normalizes the child task-definition rows. Subject wins
// over Title when both are set; empty titles are dropped.
func (t NormalizedTemplate) TaskDefinitions() []TaskDefinition {
	defs := make([]TaskDefinition, 0, len(t.Definitions))
	for _, row := range t.Definitions {
		title := strings.TrimSpace(row.Subject)
		if title == "" {
			title = strings.TrimSpace(row.Title)
		}
		if title == "" {
			continue
		}
		var rule *DueDateRule
		if row.Rule != nil {
			rule = &DueDateRule{Days: row.Rule.Days, Anchor: parseAnchor(row.Rule.Anchor)}
		}
		defs = append(defs, TaskDefinition{
			Title:        title,
			Description:  strings.TrimSpace(row.Description),
			Priority:     ParsePriority(row.Priority),
			DueDateRule:  rule,
			AgentVisible: row.AgentVisible,
		})
	}
	return defs
}

func parseAnchor(raw string) AnchorKind {
	switch AnchorKind(strings.ToLower(strings.TrimSpace(raw))) {
	case AnchorClosing:
		return AnchorClosing
	default:
		return AnchorContract
	}
}

// TemplateStore is the persistence boundary for both template variants.
// List methods return active and inactive templates; applicability filtering
// is domain logic.
type TemplateStore interface {
	ListTemplates(ctx context.Context) ([]NormalizedTemplate, error)
	ListLegacyTemplates(ctx context.Context) ([]LegacyTemplate, error)
	GetTemplate(ctx context.Context, id string) (NormalizedTemplate, error)
	GetLegacyTemplate(ctx context.Context, id string) (LegacyTemplate, error)
}
