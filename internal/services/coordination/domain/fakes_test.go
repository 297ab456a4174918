package domain

import (
	"context"
	"errors"
	"sync"
	"time"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(ids ...string) func() (string, error) {
	var mu sync.Mutex
	next := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(ids) {
			return "", ErrIDGeneratorExhausted
		}
		id := ids[next]
		next++
		return id, nil
	}
}

// fakeStore is an in-memory implementation of every domain store interface,
// with injectable failures.
type fakeStore struct {
	mu sync.Mutex

	templates       map[string]NormalizedTemplate
	legacyTemplates map[string]LegacyTemplate
	transactions    map[string]Transaction
	tasks           []Task
	records         []ApplicationRecord
	clients         map[string]Client
	communications  []Communication

	listTemplatesErr  error
	listLegacyErr     error
	getTemplateErr    error
	applyTemplateErr  error
	getTransactionErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates:       make(map[string]NormalizedTemplate),
		legacyTemplates: make(map[string]LegacyTemplate),
		transactions:    make(map[string]Transaction),
		clients:         make(map[string]Client),
	}
}

func (f *fakeStore) ListTemplates(ctx context.Context) ([]NormalizedTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listTemplatesErr != nil {
		return nil, f.listTemplatesErr
	}
	out := make([]NormalizedTemplate, 0, len(f.templates))
	for _, t := range f.templates {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) ListLegacyTemplates(ctx context.Context) ([]LegacyTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listLegacyErr != nil {
		return nil, f.listLegacyErr
	}
	out := make([]LegacyTemplate, 0, len(f.legacyTemplates))
	for _, t := range f.legacyTemplates {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) GetTemplate(ctx context.Context, id string) (NormalizedTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getTemplateErr != nil {
		return NormalizedTemplate{}, f.getTemplateErr
	}
	t, ok := f.templates[id]
	if !ok {
		return NormalizedTemplate{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) GetLegacyTemplate(ctx context.Context, id string) (LegacyTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.legacyTemplates[id]
	if !ok {
		return LegacyTemplate{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) PutTransaction(ctx context.Context, txn Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions[txn.ID] = txn
	return nil
}

func (f *fakeStore) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getTransactionErr != nil {
		return Transaction{}, f.getTransactionErr
	}
	txn, ok := f.transactions[id]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	return txn, nil
}

func (f *fakeStore) ListTransactions(ctx context.Context) ([]Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Transaction, 0, len(f.transactions))
	for _, txn := range f.transactions {
		out = append(out, txn)
	}
	return out, nil
}

func (f *fakeStore) UpdateTransaction(ctx context.Context, txn Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.transactions[txn.ID]; !ok {
		return ErrTransactionNotFound
	}
	f.transactions[txn.ID] = txn
	return nil
}

func (f *fakeStore) ApplyTemplate(ctx context.Context, tasks []Task, record ApplicationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyTemplateErr != nil {
		return f.applyTemplateErr
	}
	f.tasks = append(f.tasks, tasks...)
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStore) ListApplicationRecords(ctx context.Context, transactionID string) ([]ApplicationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ApplicationRecord
	for _, r := range f.records {
		if r.TransactionID == transactionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertTasks(ctx context.Context, tasks []Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, tasks...)
	return nil
}

func (f *fakeStore) ListTasks(ctx context.Context, query TaskQuery) ([]Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Task
	for _, task := range f.tasks {
		if task.TransactionID == query.TransactionID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTask(ctx context.Context, id string) (Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return Task{}, ErrNotFound
}

func (f *fakeStore) SetTaskCompletion(ctx context.Context, id string, completed bool, updatedAt time.Time) (Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, task := range f.tasks {
		if task.ID == id {
			f.tasks[i].Completed = completed
			f.tasks[i].UpdatedAt = updatedAt
			return f.tasks[i], nil
		}
	}
	return Task{}, ErrNotFound
}

func (f *fakeStore) PutClient(ctx context.Context, client Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[client.ID] = client
	return nil
}

func (f *fakeStore) GetClient(ctx context.Context, id string) (Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListClients(ctx context.Context) ([]Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Client, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) PutCommunication(ctx context.Context, comm Communication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.communications = append(f.communications, comm)
	return nil
}

func (f *fakeStore) ListCommunications(ctx context.Context, transactionID string) ([]Communication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Communication
	for _, comm := range f.communications {
		if comm.TransactionID == transactionID {
			out = append(out, comm)
		}
	}
	return out, nil
}

func (f *fakeStore) taskCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *fakeStore) recordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

var errStoreDown = errors.New("store down")
