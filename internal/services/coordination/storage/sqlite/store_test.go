package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestTransactionRoundtrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	contract := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txn := domain.Transaction{
		ID:           "txn-1",
		ClientID:     "client-1",
		Address:      "12 Oak St",
		Type:         domain.TransactionBuyer,
		Tier:         domain.ServiceTier("full"),
		Status:       "active",
		ContractDate: &contract,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.PutTransaction(context.Background(), txn); err != nil {
		t.Fatalf("put transaction: %v", err)
	}

	got, err := store.GetTransaction(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if !reflect.DeepEqual(got, txn) {
		t.Fatalf("get transaction = %+v, want %+v", got, txn)
	}

	closing := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	got.ClosingDate = &closing
	got.Status = "closing"
	got.UpdatedAt = now.Add(time.Hour)
	if err := store.UpdateTransaction(context.Background(), got); err != nil {
		t.Fatalf("update transaction: %v", err)
	}

	updated, err := store.GetTransaction(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("get updated transaction: %v", err)
	}
	if updated.Status != "closing" {
		t.Fatalf("status = %q, want closing", updated.Status)
	}
	if updated.ClosingDate == nil || !updated.ClosingDate.Equal(closing) {
		t.Fatalf("closing date = %v, want %v", updated.ClosingDate, closing)
	}

	listed, err := store.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d transactions, want 1", len(listed))
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetTransaction(context.Background(), "missing"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
	if err := store.UpdateTransaction(context.Background(), domain.Transaction{ID: "missing"}); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound on update, got %v", err)
	}
}

func TestLegacyTemplateRoundtrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	offset := -3
	tmpl := domain.LegacyTemplate{
		TemplateMeta: domain.TemplateMeta{
			ID:      "tmpl-legacy",
			Name:    "Buyer Basics",
			TypeTag: "buyer",
			Active:  true,
		},
		Tasks: []domain.LegacyTaskEntry{
			{Title: "Order inspection", Priority: "high", DaysFromAnchor: &offset, Anchor: "contract", AgentVisible: true},
			{Title: "Confirm escrow", Description: "wire instructions"},
		},
	}
	if err := store.PutLegacyTemplate(context.Background(), tmpl); err != nil {
		t.Fatalf("put legacy template: %v", err)
	}

	got, err := store.GetLegacyTemplate(context.Background(), "tmpl-legacy")
	if err != nil {
		t.Fatalf("get legacy template: %v", err)
	}
	if !reflect.DeepEqual(got, tmpl) {
		t.Fatalf("get legacy template = %+v, want %+v", got, tmpl)
	}

	listed, err := store.ListLegacyTemplates(context.Background())
	if err != nil {
		t.Fatalf("list legacy templates: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "tmpl-legacy" {
		t.Fatalf("listed = %+v, want one tmpl-legacy", listed)
	}

	if _, err := store.GetLegacyTemplate(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNormalizedTemplateRoundtrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	tmpl := domain.NormalizedTemplate{
		TemplateMeta: domain.TemplateMeta{
			ID:        "tmpl-norm",
			Name:      "Listing Launch",
			TypeTag:   "listing",
			TierScope: domain.ServiceTier("premium"),
			Active:    true,
		},
		Definitions: []domain.RawTaskDefinition{
			{Subject: "Schedule photos", Priority: "high", Rule: &domain.RawDueDateRule{Days: 2, Anchor: "contract"}, AgentVisible: true},
			{Title: "Stage home", Description: "coordinate with stager"},
			{Subject: "Final walkthrough", Rule: &domain.RawDueDateRule{Days: -1, Anchor: "closing"}},
		},
	}
	if err := store.PutTemplate(context.Background(), tmpl); err != nil {
		t.Fatalf("put template: %v", err)
	}

	got, err := store.GetTemplate(context.Background(), "tmpl-norm")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if !reflect.DeepEqual(got, tmpl) {
		t.Fatalf("get template = %+v, want %+v", got, tmpl)
	}

	// Rewriting replaces the task-definition rows wholesale.
	tmpl.Definitions = tmpl.Definitions[:1]
	if err := store.PutTemplate(context.Background(), tmpl); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}
	rewritten, err := store.GetTemplate(context.Background(), "tmpl-norm")
	if err != nil {
		t.Fatalf("get rewritten template: %v", err)
	}
	if len(rewritten.Definitions) != 1 {
		t.Fatalf("definitions = %d, want 1", len(rewritten.Definitions))
	}

	listed, err := store.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "tmpl-norm" {
		t.Fatalf("listed = %+v, want one tmpl-norm", listed)
	}

	if _, err := store.GetTemplate(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskInsertListAndCompletion(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	seedTransaction(t, store, "txn-1", now)

	due := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		{
			ID:            "task-1",
			TransactionID: "txn-1",
			Title:         "Order inspection",
			Priority:      domain.PriorityHigh,
			DueDate:       &due,
			AgentVisible:  true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "task-2",
			TransactionID: "txn-1",
			Title:         "Confirm escrow",
			Priority:      domain.PriorityMedium,
			CreatedAt:     now.Add(time.Minute),
			UpdatedAt:     now.Add(time.Minute),
		},
	}
	if err := store.InsertTasks(context.Background(), tasks); err != nil {
		t.Fatalf("insert tasks: %v", err)
	}

	listed, err := store.ListTasks(context.Background(), domain.TaskQuery{TransactionID: "txn-1"})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d tasks, want 2", len(listed))
	}
	if !reflect.DeepEqual(listed[0], tasks[0]) {
		t.Fatalf("listed[0] = %+v, want %+v", listed[0], tasks[0])
	}

	filtered, err := store.ListTasks(context.Background(), domain.TaskQuery{
		TransactionID: "txn-1",
		Filter:        `priority = "high" AND completed = false`,
	})
	if err != nil {
		t.Fatalf("list filtered tasks: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "task-1" {
		t.Fatalf("filtered = %+v, want only task-1", filtered)
	}

	if _, err := store.ListTasks(context.Background(), domain.TaskQuery{
		TransactionID: "txn-1",
		Filter:        `bogus = "field"`,
	}); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}

	completedAt := now.Add(2 * time.Hour)
	updated, err := store.SetTaskCompletion(context.Background(), "task-2", true, completedAt)
	if err != nil {
		t.Fatalf("set task completion: %v", err)
	}
	if !updated.Completed || !updated.UpdatedAt.Equal(completedAt) {
		t.Fatalf("updated task = %+v, want completed at %v", updated, completedAt)
	}

	if _, err := store.SetTaskCompletion(context.Background(), "missing", true, completedAt); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetTask(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyTemplateWritesTasksAndRecordAtomically(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	seedTransaction(t, store, "txn-1", now)

	tasks := []domain.Task{
		{ID: "task-1", TransactionID: "txn-1", Title: "Order inspection", Priority: domain.PriorityHigh, CreatedAt: now, UpdatedAt: now},
		{ID: "task-2", TransactionID: "txn-1", Title: "Confirm escrow", Priority: domain.PriorityMedium, CreatedAt: now, UpdatedAt: now},
	}
	record := domain.ApplicationRecord{
		ID:            "rec-1",
		TransactionID: "txn-1",
		TemplateID:    "tmpl-1",
		Variant:       domain.VariantNormalized,
		TaskCount:     2,
		Status:        domain.ApplicationApplied,
		AppliedAt:     now,
	}
	if err := store.ApplyTemplate(context.Background(), tasks, record); err != nil {
		t.Fatalf("apply template: %v", err)
	}

	listed, err := store.ListTasks(context.Background(), domain.TaskQuery{TransactionID: "txn-1"})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d tasks, want 2", len(listed))
	}

	records, err := store.ListApplicationRecords(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("list application records: %v", err)
	}
	if len(records) != 1 || !reflect.DeepEqual(records[0], record) {
		t.Fatalf("records = %+v, want %+v", records, record)
	}
}

func TestApplyTemplateRollsBackOnConflict(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	seedTransaction(t, store, "txn-1", now)

	// Second task reuses the first id so the batch insert fails mid-way.
	tasks := []domain.Task{
		{ID: "task-dup", TransactionID: "txn-1", Title: "First", Priority: domain.PriorityMedium, CreatedAt: now, UpdatedAt: now},
		{ID: "task-dup", TransactionID: "txn-1", Title: "Second", Priority: domain.PriorityMedium, CreatedAt: now, UpdatedAt: now},
	}
	record := domain.ApplicationRecord{
		ID:            "rec-1",
		TransactionID: "txn-1",
		TemplateID:    "tmpl-1",
		Variant:       domain.VariantLegacy,
		TaskCount:     2,
		Status:        domain.ApplicationApplied,
		AppliedAt:     now,
	}
	if err := store.ApplyTemplate(context.Background(), tasks, record); err == nil {
		t.Fatal("expected conflict error")
	}

	listed, err := store.ListTasks(context.Background(), domain.TaskQuery{TransactionID: "txn-1"})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("listed %d tasks after rollback, want 0", len(listed))
	}
	records, err := store.ListApplicationRecords(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("list application records: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("listed %d records after rollback, want 0", len(records))
	}
}

func TestClientAndCommunicationRoundtrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	client := domain.Client{
		ID:        "client-1",
		FullName:  "Dana Reyes",
		Email:     "dana@example.com",
		Phone:     "555-0100",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.PutClient(context.Background(), client); err != nil {
		t.Fatalf("put client: %v", err)
	}
	got, err := store.GetClient(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if !reflect.DeepEqual(got, client) {
		t.Fatalf("get client = %+v, want %+v", got, client)
	}
	if _, err := store.GetClient(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	clients, err := store.ListClients(context.Background())
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if len(clients) != 1 {
		t.Fatalf("listed %d clients, want 1", len(clients))
	}

	seedTransaction(t, store, "txn-1", now)
	comm := domain.Communication{
		ID:            "comm-1",
		TransactionID: "txn-1",
		Channel:       "email",
		Subject:       "Inspection scheduled",
		Body:          "Inspector confirmed for Friday.",
		LoggedAt:      now,
	}
	if err := store.PutCommunication(context.Background(), comm); err != nil {
		t.Fatalf("put communication: %v", err)
	}
	comms, err := store.ListCommunications(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("list communications: %v", err)
	}
	if len(comms) != 1 || !reflect.DeepEqual(comms[0], comm) {
		t.Fatalf("comms = %+v, want %+v", comms, comm)
	}
}

func seedTransaction(t *testing.T, store *Store, id string, now time.Time) {
	t.Helper()
	if err := store.PutTransaction(context.Background(), domain.Transaction{
		ID:        id,
		Address:   "12 Oak St",
		Type:      domain.TransactionBuyer,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed transaction %s: %v", id, err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "coordination.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
