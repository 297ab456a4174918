// Package seed loads workflow-template and client fixtures into a
// coordination store from a YAML file.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
	"gopkg.in/yaml.v3"
)

// Store is the subset of the coordination store the seeder writes to.
type Store interface {
	PutTemplate(ctx context.Context, tmpl domain.NormalizedTemplate) error
	PutLegacyTemplate(ctx context.Context, tmpl domain.LegacyTemplate) error
	PutClient(ctx context.Context, client domain.Client) error
}

// Fixture is the YAML document shape accepted by the seeder.
type Fixture struct {
	Templates       []templateFixture       `yaml:"templates"`
	LegacyTemplates []legacyTemplateFixture `yaml:"legacyTemplates"`
	Clients         []clientFixture         `yaml:"clients"`
}

type ruleFixture struct {
	Days   int    `yaml:"days"`
	Anchor string `yaml:"anchor"`
}

type taskFixture struct {
	Subject      string       `yaml:"subject"`
	Title        string       `yaml:"title"`
	Description  string       `yaml:"description"`
	Priority     string       `yaml:"priority"`
	Rule         *ruleFixture `yaml:"rule"`
	AgentVisible bool         `yaml:"agentVisible"`
}

type templateFixture struct {
	ID     string        `yaml:"id"`
	Name   string        `yaml:"name"`
	Type   string        `yaml:"type"`
	Tier   string        `yaml:"tier"`
	Active bool          `yaml:"active"`
	Tasks  []taskFixture `yaml:"tasks"`
}

type legacyTaskFixture struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Priority       string `yaml:"priority"`
	DaysFromAnchor *int   `yaml:"daysFromAnchor"`
	Anchor         string `yaml:"anchor"`
	AgentVisible   bool   `yaml:"agentVisible"`
}

type legacyTemplateFixture struct {
	ID     string              `yaml:"id"`
	Name   string              `yaml:"name"`
	Type   string              `yaml:"type"`
	Tier   string              `yaml:"tier"`
	Active bool                `yaml:"active"`
	Tasks  []legacyTaskFixture `yaml:"tasks"`
}

type clientFixture struct {
	ID       string `yaml:"id"`
	FullName string `yaml:"fullName"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
}

// Result counts the records written by one seeding pass.
type Result struct {
	Templates       int
	LegacyTemplates int
	Clients         int
}

// LoadFile seeds the store from the fixture file at path.
func LoadFile(ctx context.Context, store Store, path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open fixture file: %w", err)
	}
	defer file.Close()
	return Load(ctx, store, file)
}

// Load seeds the store from YAML fixture content.
func Load(ctx context.Context, store Store, reader io.Reader) (Result, error) {
	if store == nil {
		return Result{}, fmt.Errorf("store is required")
	}

	var fixture Fixture
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixture); err != nil {
		return Result{}, fmt.Errorf("decode fixture: %w", err)
	}

	var result Result
	now := time.Now().UTC()
	for _, entry := range fixture.Templates {
		tmpl, err := entry.toDomain()
		if err != nil {
			return result, err
		}
		if err := store.PutTemplate(ctx, tmpl); err != nil {
			return result, fmt.Errorf("seed template %s: %w", tmpl.ID, err)
		}
		result.Templates++
	}
	for _, entry := range fixture.LegacyTemplates {
		tmpl, err := entry.toDomain()
		if err != nil {
			return result, err
		}
		if err := store.PutLegacyTemplate(ctx, tmpl); err != nil {
			return result, fmt.Errorf("seed legacy template %s: %w", tmpl.ID, err)
		}
		result.LegacyTemplates++
	}
	for _, entry := range fixture.Clients {
		if strings.TrimSpace(entry.ID) == "" || strings.TrimSpace(entry.FullName) == "" {
			return result, fmt.Errorf("client fixtures require id and fullName")
		}
		client := domain.Client{
			ID:        entry.ID,
			FullName:  entry.FullName,
			Email:     entry.Email,
			Phone:     entry.Phone,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.PutClient(ctx, client); err != nil {
			return result, fmt.Errorf("seed client %s: %w", client.ID, err)
		}
		result.Clients++
	}
	return result, nil
}

func (f templateFixture) toDomain() (domain.NormalizedTemplate, error) {
	if strings.TrimSpace(f.ID) == "" {
		return domain.NormalizedTemplate{}, fmt.Errorf("template fixtures require an id")
	}
	tmpl := domain.NormalizedTemplate{
		TemplateMeta: domain.TemplateMeta{
			ID:        f.ID,
			Name:      f.Name,
			TypeTag:   f.Type,
			TierScope: domain.ServiceTier(f.Tier),
			Active:    f.Active,
		},
	}
	for _, task := range f.Tasks {
		def := domain.RawTaskDefinition{
			Subject:      task.Subject,
			Title:        task.Title,
			Description:  task.Description,
			Priority:     task.Priority,
			AgentVisible: task.AgentVisible,
		}
		if task.Rule != nil {
			def.Rule = &domain.RawDueDateRule{Days: task.Rule.Days, Anchor: task.Rule.Anchor}
		}
		tmpl.Definitions = append(tmpl.Definitions, def)
	}
	return tmpl, nil
}

func (f legacyTemplateFixture) toDomain() (domain.LegacyTemplate, error) {
	if strings.TrimSpace(f.ID) == "" {
		return domain.LegacyTemplate{}, fmt.Errorf("legacy template fixtures require an id")
	}
	tmpl := domain.LegacyTemplate{
		TemplateMeta: domain.TemplateMeta{
			ID:        f.ID,
			Name:      f.Name,
			TypeTag:   f.Type,
			TierScope: domain.ServiceTier(f.Tier),
			Active:    f.Active,
		},
	}
	for _, task := range f.Tasks {
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
