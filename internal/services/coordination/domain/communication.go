package domain

import (
	"context"
	"strings"
	"time"

	"github.com/dealdeskhq/dealdesk/internal/platform/id"
)

// Communication is one logged client touchpoint on a transaction.
type Communication struct {
	ID            string
	TransactionID string
	Channel       string
	Subject       string
	Body          string
	LoggedAt      time.Time
}

// CommunicationStore is the persistence boundary for communication logs.
type CommunicationStore interface {
	PutCommunication(ctx context.Context, comm Communication) error
	ListCommunications(ctx context.Context, transactionID string) ([]Communication, error)
}

// LogCommunicationInput describes one communication entry.
type LogCommunicationInput struct {
	TransactionID string
	Channel       string
	Subject       string
	Body          string
}

// Communications provides communication-log use-cases.
type Communications struct {
	store CommunicationStore
	clock func() time.Time
	newID func() (string, error)
}

// NewCommunications constructs the communication service.
func NewCommunications(store CommunicationStore, clock func() time.Time, newID func() (string, error)) *Communications {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Communications{store: store, clock: clock, newID: newID}
}

// Log persists one communication entry.
func (s *Communications) Log(ctx context.Context, input LogCommunicationInput) (Communication, error) {
	if s == nil || s.store == nil {
		return Communication{}, ErrStoreNotConfigured
	}
	transactionID := strings.TrimSpace(input.TransactionID)
	if transactionID == "" {
		return Communication{}, ErrTransactionIDRequired
	}
	channel := strings.TrimSpace(input.Channel)
	if channel == "" {
		return Communication{}, ErrChannelRequired
	}

	commID, err := s.newID()
	if err != nil {
		return Communication{}, err
	}
	comm := Communication{
		ID:            commID,
		TransactionID: transactionID,
		Channel:       channel,
		Subject:       strings.TrimSpace(input.Subject),
		Body:          input.Body,
		LoggedAt:      s.clock().UTC(),
	}
	if err := s.store.PutCommunication(ctx, comm); err != nil {
		return Communication{}, err
	}
	return comm, nil
}

// List returns communications for one transaction.
func (s *Communications) List(ctx context.Context, transactionID string) ([]Communication, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrTransactionIDRequired
	}
	return s.store.ListCommunications(ctx, transactionID)
}
