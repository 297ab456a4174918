package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
)

// PutTransaction persists one new transaction row.
func (s *Store) PutTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(txn.ID) == "" {
		return fmt.Errorf("transaction id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO transactions (
	id,
	client_id,
	address,
	txn_type,
	tier,
	status,
	contract_date,
	closing_date,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		txn.ID,
		txn.ClientID,
		txn.Address,
		string(txn.Type),
		string(txn.Tier),
		txn.Status,
		encodeDate(txn.ContractDate),
		encodeDate(txn.ClosingDate),
		toMillis(txn.CreatedAt),
		toMillis(txn.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put transaction: %w", err)
	}
	return nil
}

// GetTransaction returns one transaction with its current anchor dates.
func (s *Store) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Transaction{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Transaction{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, client_id, address, txn_type, tier, status, contract_date, closing_date, created_at, updated_at
FROM transactions
WHERE id = ?
`, id)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrTransactionNotFound
		}
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions lists newest-first transactions.
func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, client_id, address, txn_type, tier, status, contract_date, closing_date, created_at, updated_at
FROM transactions
ORDER BY created_at DESC, id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// UpdateTransaction replaces mutable transaction fields.
func (s *Store) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE transactions
SET status = ?, contract_date = ?, closing_date = ?, updated_at = ?
WHERE id = ?
`,
		txn.Status,
		encodeDate(txn.ContractDate),
		encodeDate(txn.ClosingDate),
		toMillis(txn.UpdatedAt),
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var txn domain.Transaction
	var txnType, tier string
	var contractDate, closingDate sql.NullString
	var createdAt, updatedAt int64
	if err := row.Scan(
		&txn.ID,
		&txn.ClientID,
		&txn.Address,
		&txnType,
		&tier,
		&txn.Status,
		&contractDate,
		&closingDate,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Transaction{}, err
	}
	txn.Type = domain.TransactionType(txnType)
	txn.Tier = domain.ServiceTier(tier)
	var err error
	if txn.ContractDate, err = decodeDate(contractDate); err != nil {
		return domain.Transaction{}, err
	}
	if txn.ClosingDate, err = decodeDate(closingDate); err != nil {
		return domain.Transaction{}, err
	}
	txn.CreatedAt = fromMillis(createdAt)
	txn.UpdatedAt = fromMillis(updatedAt)
	return txn, nil
}
