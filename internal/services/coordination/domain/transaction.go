package domain

import (
	"context"
	"strings"
	"time"

	"github.com/dealdeskhq/dealdesk/internal/platform/id"
)

// TransactionType tags the side of the deal a transaction represents.
type TransactionType string

// Known transaction types.
const (
	TransactionBuyer   TransactionType = "buyer"
	TransactionSeller  TransactionType = "seller"
	TransactionListing TransactionType = "listing"
)

// ServiceTier scopes templates and transactions to a service level.
// An empty tier means unscoped.
type ServiceTier string

// AnchorKind selects which transaction date a relative due-date rule
// resolves against.
type AnchorKind string

// Known anchor kinds. An empty anchor defaults to the contract date.
const (
	AnchorContract AnchorKind = "contract"
	AnchorClosing  AnchorKind = "closing"
)

// Transaction is one coordinated real-estate deal.
// Anchor dates are nil until they are known; due dates derived from a nil
// anchor stay nil.
type Transaction struct {
	ID           string
	ClientID     string
	Address      string
	Type         TransactionType
	Tier         ServiceTier
	Status       string
	ContractDate *time.Time
	ClosingDate  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AnchorDate returns the transaction date selected by kind, or nil when the
// date is not yet known. Unknown kinds return nil.
func (t Transaction) AnchorDate(kind AnchorKind) *time.Time {
	switch kind {
	case AnchorContract, "":
		return t.ContractDate
	case AnchorClosing:
		return t.ClosingDate
	default:
		return nil
	}
}

// TransactionStore is the persistence boundary for transactions.
type TransactionStore interface {
	PutTransaction(ctx context.Context, txn Transaction) error
	GetTransaction(ctx context.Context, id string) (Transaction, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)
	UpdateTransaction(ctx context.Context, txn Transaction) error
}

// CreateTransactionInput describes one new transaction.
type CreateTransactionInput struct {
	ClientID     string
	Address      string
	Type         TransactionType
	Tier         ServiceTier
	ContractDate *time.Time
	ClosingDate  *time.Time
}

// UpdateTransactionInput carries mutable transaction fields. Nil date
// pointers leave the stored anchor dates unchanged; setting ClearClosing or
// ClearContract drops a previously known date.
type UpdateTransactionInput struct {
	ID            string
	Status        string
	ContractDate  *time.Time
	ClosingDate   *time.Time
	ClearContract bool
	ClearClosing  bool
}

// Transactions provides transaction lifecycle use-cases.
type Transactions struct {
	store TransactionStore
	clock func() time.Time
	newID func() (string, error)
}

// NewTransactions constructs the transaction service.
func NewTransactions(store TransactionStore, clock func() time.Time, newID func() (string, error)) *Transactions {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Transactions{store: store, clock: clock, newID: newID}
}

// Create persists one new transaction in the "active" status.
func (s *Transactions) Create(ctx context.Context, input CreateTransactionInput) (Transaction, error) {
	if s == nil || s.store == nil {
		return Transaction{}, ErrStoreNotConfigured
	}
	txnType := TransactionType(strings.TrimSpace(string(input.Type)))
	if txnType == "" {
		return Transaction{}, ErrTransactionTypeRequired
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return Transaction{}, ErrAddressRequired
	}

	txnID, err := s.newID()
	if err != nil {
		return Transaction{}, err
	}
	now := s.clock().UTC()
	txn := Transaction{
		ID:           txnID,
		ClientID:     strings.TrimSpace(input.ClientID),
		Address:      address,
		Type:         txnType,
		Tier:         ServiceTier(strings.TrimSpace(string(input.Tier))),
		Status:       "active",
		ContractDate: normalizeDatePtr(input.ContractDate),
		ClosingDate:  normalizeDatePtr(input.ClosingDate),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.PutTransaction(ctx, txn); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

// Get returns one transaction by id.
func (s *Transactions) Get(ctx context.Context, id string) (Transaction, error) {
	if s == nil || s.store == nil {
		return Transaction{}, ErrStoreNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Transaction{}, ErrTransactionIDRequired
	}
	return s.store.GetTransaction(ctx, id)
}

// List returns all transactions.
func (s *Transactions) List(ctx context.Context) ([]Transaction, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListTransactions(ctx)
}

// Update applies status and anchor-date changes to one transaction.
func (s *Transactions) Update(ctx context.Context, input UpdateTransactionInput) (Transaction, error) {
	if s == nil || s.store == nil {
		return Transaction{}, ErrStoreNotConfigured
	}
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return Transaction{}, ErrTransactionIDRequired
	}
	txn, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return Transaction{}, err
	}

	if status := strings.TrimSpace(input.Status); status != "" {
		txn.Status = status
	}
	if input.ClearContract {
		txn.ContractDate = nil
	} else if input.ContractDate != nil {
		txn.ContractDate = normalizeDatePtr(input.ContractDate)
	}
	if input.ClearClosing {
		txn.ClosingDate = nil
	} else if input.ClosingDate != nil {
		txn.ClosingDate = normalizeDatePtr(input.ClosingDate)
	}
	txn.UpdatedAt = s.clock().UTC()

	if err := s.store.UpdateTransaction(ctx, txn); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

func normalizeDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}
