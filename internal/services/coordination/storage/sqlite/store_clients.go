package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
)

// PutClient persists one client row.
func (s *Store) PutClient(ctx context.Context, client domain.Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(client.ID) == "" {
		return fmt.Errorf("client id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO clients (id, full_name, email, phone, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	full_name = excluded.full_name,
	email = excluded.email,
	phone = excluded.phone,
	updated_at = excluded.updated_at
`,
		client.ID,
		client.FullName,
		client.Email,
		client.Phone,
		toMillis(client.CreatedAt),
		toMillis(client.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put client: %w", err)
	}
	return nil
}

// GetClient returns one client by id.
func (s *Store) GetClient(ctx context.Context, id string) (domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return domain.Client{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Client{}, err
	}

	var client domain.Client
	var createdAt, updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, full_name, email, phone, created_at, updated_at
FROM clients
WHERE id = ?
`, id).Scan(&client.ID, &client.FullName, &client.Email, &client.Phone, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Client{}, domain.ErrNotFound
		}
		return domain.Client{}, fmt.Errorf("get client: %w", err)
	}
	client.CreatedAt = fromMillis(createdAt)
	client.UpdatedAt = fromMillis(updatedAt)
	return client, nil
}

// ListClients lists all clients ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, full_name, email, phone, created_at, updated_at
FROM clients
ORDER BY full_name, id
`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var client domain.Client
		var createdAt, updatedAt int64
		if err := rows.Scan(&client.ID, &client.FullName, &client.Email, &client.Phone, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		client.CreatedAt = fromMillis(createdAt)
		client.UpdatedAt = fromMillis(updatedAt)
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

// PutCommunication persists one communication-log entry.
func (s *Store) PutCommunication(ctx context.Context, comm domain.Communication) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(comm.ID) == "" {
		return fmt.Errorf("communication id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO communications (id, transaction_id, channel, subject, body, logged_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		comm.ID,
		comm.TransactionID,
		comm.Channel,
		comm.Subject,
		comm.Body,
		toMillis(comm.LoggedAt),
	)
	if err != nil {
		return fmt.Errorf("put communication: %w", err)
	}
	return nil
}

// ListCommunications lists a transaction's communications, newest first.
func (s *Store) ListCommunications(ctx context.Context, transactionID string) ([]domain.Communication, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, transaction_id, channel, subject, body, logged_at
FROM communications
WHERE transaction_id = ?
ORDER BY logged_at DESC, id DESC
`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list communications: %w", err)
	}
	defer rows.Close()

	var comms []domain.Communication
	for rows.Next() {
		var comm domain.Communication
		var loggedAt int64
		if err := rows.Scan(&comm.ID, &comm.TransactionID, &comm.Channel, &comm.Subject, &comm.Body, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan communication: %w", err)
		}
		comm.LoggedAt = fromMillis(loggedAt)
		comms = append(comms, comm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate communications: %w", err)
	}
	return comms, nil
}
