package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dealdeskhq/dealdesk/internal/platform/id"
)

// ApplicationStatus values for application records.
const ApplicationApplied = "applied"

// ApplicationRecord is the audit entry persisted once per successful
// template application. It is never mutated afterwards.
type ApplicationRecord struct {
	ID            string
	TransactionID string
	TemplateID    string
	Variant       TemplateVariant
	TaskCount     int
	Status        string
	AppliedAt     time.Time
}

// ApplicationResult summarizes one successful template application.
type ApplicationResult struct {
	CreatedTaskCount    int
	ApplicationRecordID string
}

// ApplicationStore persists template applications. ApplyTemplate must write
// the task rows and the record as one atomic unit so a partial application
// is never visible.
type ApplicationStore interface {
	ApplyTemplate(ctx context.Context, tasks []Task, record ApplicationRecord) error
	ListApplicationRecords(ctx context.Context, transactionID string) ([]ApplicationRecord, error)
}

// Engine applies workflow templates to transactions: it resolves the
// template across both stores, materializes task rows against the live
// transaction, and records the application.
//
// Re-applying a template to the same transaction is allowed by policy and
// produces a fresh full task set plus a new record; agents re-apply after
// amended contracts, and duplicate cleanup is a user action.
type Engine struct {
	templates    TemplateStore
	transactions TransactionStore
	applications ApplicationStore
	clock        func() time.Time
	newID        func() (string, error)
}

// NewEngine constructs the template application engine.
func NewEngine(templates TemplateStore, transactions TransactionStore, applications ApplicationStore, clock func() time.Time, newID func() (string, error)) *Engine {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Engine{
		templates:    templates,
		transactions: transactions,
		applications: applications,
		clock:        clock,
		newID:        newID,
	}
}

// Apply materializes templateID onto transactionID and persists the task
// rows plus one application record atomically. The transaction is re-fetched
// fresh so anchor dates are current.
func (e *Engine) Apply(ctx context.Context, transactionID, templateID string) (ApplicationResult, error) {
	source, txn, defs, err := e.prepare(ctx, transactionID, templateID)
	if err != nil {
		return ApplicationResult{}, err
	}

	now := e.clock().UTC()
	payloads := BuildTaskPayloads(defs, txn)
	tasks := make([]Task, 0, len(payloads))
	for _, payload := range payloads {
		taskID, err := e.newID()
		if err != nil {
			return ApplicationResult{}, err
		}
		tasks = append(tasks, Task{
			ID:            taskID,
			TransactionID: payload.TransactionID,
			Title:         payload.Title,
			Description:   payload.Description,
			Priority:      payload.Priority,
			DueDate:       payload.DueDate,
			Completed:     payload.Completed,
			AgentVisible:  payload.AgentVisible,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	recordID, err := e.newID()
	if err != nil {
		return ApplicationResult{}, err
	}
	record := ApplicationRecord{
		ID:            recordID,
		TransactionID: txn.ID,
		TemplateID:    source.Meta().ID,
		Variant:       source.Variant(),
		TaskCount:     len(tasks),
		Status:        ApplicationApplied,
		AppliedAt:     now,
	}

	if err := e.applications.ApplyTemplate(ctx, tasks, record); err != nil {
		return ApplicationResult{}, fmt.Errorf("%w: apply template: %v", ErrPersistenceFailure, err)
	}
	return ApplicationResult{
		CreatedTaskCount:    len(tasks),
		ApplicationRecordID: record.ID,
	}, nil
}

// Preview materializes templateID against transactionID without persisting
// anything, for a confirmation view before commit.
func (e *Engine) Preview(ctx context.Context, transactionID, templateID string) ([]TaskPayload, error) {
	_, txn, defs, err := e.prepare(ctx, transactionID, templateID)
	if err != nil {
		return nil, err
	}
	return BuildTaskPayloads(defs, txn), nil
}

// History lists the application records for one transaction.
func (e *Engine) History(ctx context.Context, transactionID string) ([]ApplicationRecord, error) {
	if e == nil || e.applications == nil {
		return nil, ErrStoreNotConfigured
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrTransactionIDRequired
	}
	return e.applications.ListApplicationRecords(ctx, transactionID)
}

func (e *Engine) prepare(ctx context.Context, transactionID, templateID string) (TemplateSource, Transaction, []TaskDefinition, error) {
	if e == nil || e.templates == nil || e.transactions == nil || e.applications == nil {
		return nil, Transaction{}, nil, ErrStoreNotConfigured
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, Transaction{}, nil, ErrTransactionIDRequired
	}
	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		return nil, Transaction{}, nil, ErrTemplateIDRequired
	}

	source, err := e.resolveTemplate(ctx, templateID)
	if err != nil {
		return nil, Transaction{}, nil, err
	}

	txn, err := e.transactions.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrTransactionNotFound) {
			return nil, Transaction{}, nil, ErrTransactionNotFound
		}
		return nil, Transaction{}, nil, fmt.Errorf("get transaction: %w", err)
	}

	defs := source.TaskDefinitions()
	if len(defs) == 0 {
		return nil, Transaction{}, nil, ErrNoValidTasks
	}
	return source, txn, defs, nil
}

// resolveTemplate tries the normalized store first, then the legacy store.
func (e *Engine) resolveTemplate(ctx context.Context, templateID string) (TemplateSource, error) {
	normalized, err := e.templates.GetTemplate(ctx, templateID)
	if err == nil {
		return normalized, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: get template: %v", ErrCatalogUnavailable, err)
	}

	legacy, err := e.templates.GetLegacyTemplate(ctx, templateID)
	if err == nil {
		return legacy, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: get legacy template: %v", ErrCatalogUnavailable, err)
	}
	return nil, ErrTemplateNotFound
}
