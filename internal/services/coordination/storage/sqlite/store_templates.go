package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
)

// legacyTaskJSON mirrors the ad hoc shape legacy templates embed in their
// tasks_json column.
type legacyTaskJSON struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Priority       string `json:"priority,omitempty"`
	DaysFromAnchor *int   `json:"daysFromAnchor,omitempty"`
	Anchor         string `json:"anchor,omitempty"`
	AgentVisible   bool   `json:"isAgentVisible,omitempty"`
}

// ListLegacyTemplates lists every legacy template with its embedded tasks.
func (s *Store) ListLegacyTemplates(ctx context.Context) ([]domain.LegacyTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, type_tag, tier_scope, active, tasks_json
FROM legacy_templates
ORDER BY name, id
`)
	if err != nil {
		return nil, fmt.Errorf("list legacy templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.LegacyTemplate
	for rows.Next() {
		tmpl, err := scanLegacyTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan legacy template: %w", err)
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy templates: %w", err)
	}
	return templates, nil
}

// GetLegacyTemplate returns one legacy template by id.
func (s *Store) GetLegacyTemplate(ctx context.Context, id string) (domain.LegacyTemplate, error) {
	if err := ctx.Err(); err != nil {
		return domain.LegacyTemplate{}, err
	}
	if err := s.ready(); err != nil {
		return domain.LegacyTemplate{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, type_tag, tier_scope, active, tasks_json
FROM legacy_templates
WHERE id = ?
`, id)
	tmpl, err := scanLegacyTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LegacyTemplate{}, domain.ErrNotFound
		}
		return domain.LegacyTemplate{}, fmt.Errorf("get legacy template: %w", err)
	}
	return tmpl, nil
}

// PutLegacyTemplate persists one legacy template row, replacing any
// previous version. Used by authoring tools and the seeder.
func (s *Store) PutLegacyTemplate(ctx context.Context, tmpl domain.LegacyTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(tmpl.ID) == "" {
		return fmt.Errorf("template id is required")
	}

	encoded := make([]legacyTaskJSON, 0, len(tmpl.Tasks))
	for _, task := range tmpl.Tasks {
		encoded = append(encoded, legacyTaskJSON{
			Title:          task.Title,
			Description:    task.Description,
			Priority:       task.Priority,
			DaysFromAnchor: task.DaysFromAnchor,
			Anchor:         task.Anchor,
			AgentVisible:   task.AgentVisible,
		})
	}
	tasksJSON, err := json.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("encode legacy tasks: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO legacy_templates (id, name, type_tag, tier_scope, active, tasks_json)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	type_tag = excluded.type_tag,
	tier_scope = excluded.tier_scope,
	active = excluded.active,
	tasks_json = excluded.tasks_json
`,
		tmpl.ID,
		tmpl.Name,
		tmpl.TypeTag,
		string(tmpl.TierScope),
		boolToInt(tmpl.Active),
		string(tasksJSON),
	)
	if err != nil {
		return fmt.Errorf("put legacy template: %w", err)
	}
	return nil
}

// ListTemplates lists every normalized template with its task-definition rows.
func (s *Store) ListTemplates(ctx context.Context) ([]domain.NormalizedTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, type_tag, tier_scope, active
FROM templates
ORDER BY name, id
`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.NormalizedTemplate
	for rows.Next() {
		var tmpl domain.NormalizedTemplate
		var tierScope string
		var active int
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.TypeTag, &tierScope, &active); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		tmpl.TierScope = domain.ServiceTier(tierScope)
		tmpl.Active = active != 0
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	for i := range templates {
		defs, err := s.getTaskDefinitionRows(ctx, templates[i].ID)
		if err != nil {
			return nil, err
		}
		templates[i].Definitions = defs
	}
	return templates, nil
}

// GetTemplate returns one normalized template with its task-definition rows.
func (s *Store) GetTemplate(ctx context.Context, id string) (domain.NormalizedTemplate, error) {
	if err := ctx.Err(); err != nil {
		return domain.NormalizedTemplate{}, err
	}
	if err := s.ready(); err != nil {
		return domain.NormalizedTemplate{}, err
	}

	var tmpl domain.NormalizedTemplate
	var tierScope string
	var active int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, type_tag, tier_scope, active
FROM templates
WHERE id = ?
`, id).Scan(&tmpl.ID, &tmpl.Name, &tmpl.TypeTag, &tierScope, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NormalizedTemplate{}, domain.ErrNotFound
		}
		return domain.NormalizedTemplate{}, fmt.Errorf("get template: %w", err)
	}
	tmpl.TierScope = domain.ServiceTier(tierScope)
	tmpl.Active = active != 0

	defs, err := s.getTaskDefinitionRows(ctx, tmpl.ID)
	if err != nil {
		return domain.NormalizedTemplate{}, err
	}
	tmpl.Definitions = defs
	return tmpl, nil
}

// PutTemplate persists one normalized template and replaces its
// task-definition rows atomically.
func (s *Store) PutTemplate(ctx context.Context, tmpl domain.NormalizedTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(tmpl.ID) == "" {
		return fmt.Errorf("template id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin template write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback template write: %v", cause, rollbackErr)
		}
		return cause
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO templates (id, name, type_tag, tier_scope, active)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	type_tag = excluded.type_tag,
	tier_scope = excluded.tier_scope,
	active = excluded.active
`,
		tmpl.ID,
		tmpl.Name,
		tmpl.TypeTag,
		string(tmpl.TierScope),
		boolToInt(tmpl.Active),
	); err != nil {
		return rollbackWith(fmt.Errorf("put template: %w", err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM template_tasks WHERE template_id = ?`, tmpl.ID); err != nil {
		return rollbackWith(fmt.Errorf("clear template tasks: %w", err))
	}
	for position, def := range tmpl.Definitions {
		var ruleDays sql.NullInt64
		var ruleAnchor string
		if def.Rule != nil {
			ruleDays = sql.NullInt64{Int64: int64(def.Rule.Days), Valid: true}
			ruleAnchor = def.Rule.Anchor
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO template_tasks (template_id, position, subject, title, description, priority, rule_days, rule_anchor, agent_visible)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
			tmpl.ID,
			position,
			def.Subject,
			def.Title,
			def.Description,
			def.Priority,
			ruleDays,
			ruleAnchor,
			boolToInt(def.AgentVisible),
		); err != nil {
			return rollbackWith(fmt.Errorf("put template task %d: %w", position, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit template write: %w", err)
	}
	return nil
}

func (s *Store) getTaskDefinitionRows(ctx context.Context, templateID string) ([]domain.RawTaskDefinition, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT subject, title, description, priority, rule_days, rule_anchor, agent_visible
FROM template_tasks
WHERE template_id = ?
ORDER BY position
`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list task definitions: %w", err)
	}
	defer rows.Close()

	var defs []domain.RawTaskDefinition
	for rows.Next() {
		var def domain.RawTaskDefinition
		var ruleDays sql.NullInt64
		var ruleAnchor string
		var agentVisible int
		if err := rows.Scan(&def.Subject, &def.Title, &def.Description, &def.Priority, &ruleDays, &ruleAnchor, &agentVisible); err != nil {
			return nil, fmt.Errorf("scan task definition: %w", err)
		}
		if ruleDays.Valid {
			def.Rule = &domain.RawDueDateRule{Days: int(ruleDays.Int64), Anchor: ruleAnchor}
		}
		def.AgentVisible = agentVisible != 0
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task definitions: %w", err)
	}
	return defs, nil
}

func scanLegacyTemplate(row rowScanner) (domain.LegacyTemplate, error) {
	var tmpl domain.LegacyTemplate
	var tierScope, tasksJSON string
	var active int
	if err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.TypeTag, &tierScope, &active, &tasksJSON); err != nil {
		return domain.LegacyTemplate{}, err
	}
	tmpl.TierScope = domain.ServiceTier(tierScope)
	tmpl.Active = active != 0

	var encoded []legacyTaskJSON
	if strings.TrimSpace(tasksJSON) != "" {
		if err := json.Unmarshal([]byte(tasksJSON), &encoded); err != nil {
			return domain.LegacyTemplate{}, fmt.Errorf("decode legacy tasks: %w", err)
		}
	}
	tmpl.Tasks = make([]domain.LegacyTaskEntry, 0, len(encoded))
	for _, task := range encoded {
		tmpl.Tasks = append(tmpl.Tasks, domain.LegacyTaskEntry{
			Title:          task.Title,
			Description:    task.Description,
			Priority:       task.Priority,
			DaysFromAnchor: task.DaysFromAnchor,
			Anchor:         task.Anchor,
			AgentVisible:   task.AgentVisible,
		})
	}
	return tmpl, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
