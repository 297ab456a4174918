package domain

import (
	"context"
	"strings"
	"time"

	"github.com/dealdeskhq/dealdesk/internal/platform/id"
)

// Client is one represented buyer or seller.
type Client struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientStore is the persistence boundary for clients.
type ClientStore interface {
	PutClient(ctx context.Context, client Client) error
	GetClient(ctx context.Context, id string) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
}

// CreateClientInput describes one new client.
type CreateClientInput struct {
	FullName string
	Email    string
	Phone    string
}

// Clients provides client lifecycle use-cases.
type Clients struct {
	store ClientStore
	clock func() time.Time
	newID func() (string, error)
}

// NewClients constructs the client service.
func NewClients(store ClientStore, clock func() time.Time, newID func() (string, error)) *Clients {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Clients{store: store, clock: clock, newID: newID}
}

// Create persists one new client.
func (s *Clients) Create(ctx context.Context, input CreateClientInput) (Client, error) {
	if s == nil || s.store == nil {
		return Client{}, ErrStoreNotConfigured
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return Client{}, ErrClientNameRequired
	}

	clientID, err := s.newID()
	if err != nil {
		return Client{}, err
	}
	now := s.clock().UTC()
	client := Client{
		ID:        clientID,
		FullName:  fullName,
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.PutClient(ctx, client); err != nil {
		return Client{}, err
	}
	return client, nil
}

// Get returns one client by id.
func (s *Clients) Get(ctx context.Context, id string) (Client, error) {
	if s == nil || s.store == nil {
		return Client{}, ErrStoreNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Client{}, ErrClientIDRequired
	}
	return s.store.GetClient(ctx, id)
}

// List returns all clients.
func (s *Clients) List(ctx context.Context) ([]Client, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListClients(ctx)
}
