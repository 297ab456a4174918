package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
	"github.com/dealdeskhq/dealdesk/internal/services/coordination/storage/sqlite/filter"
)

const insertTaskSQL = `
INSERT INTO tasks (
	id,
	transaction_id,
	title,
	description,
	priority,
	due_date,
	completed,
	agent_visible,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTask(ctx context.Context, db execer, task domain.Task) error {
	_, err := db.ExecContext(ctx, insertTaskSQL,
		task.ID,
		task.TransactionID,
		task.Title,
		task.Description,
		string(task.Priority),
		encodeDate(task.DueDate),
		boolToInt(task.Completed),
		boolToInt(task.AgentVisible),
		toMillis(task.CreatedAt),
		toMillis(task.UpdatedAt),
	)
	return err
}

// InsertTasks persists task rows created outside a template application.
func (s *Store) InsertTasks(ctx context.Context, tasks []domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin task insert: %w", err)
	}
	for _, task := range tasks {
		if err := insertTask(ctx, tx, task); err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				return fmt.Errorf("insert task %s: %w: rollback: %v", task.ID, err, rollbackErr)
			}
			return fmt.Errorf("insert task %s: %w", task.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit task insert: %w", err)
	}
	return nil
}

// ListTasks lists a transaction's tasks, optionally narrowed by an AIP-160
// filter expression over task fields.
func (s *Store) ListTasks(ctx context.Context, query domain.TaskQuery) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	cond, err := filter.ParseTaskFilter(query.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}

	sqlQuery := `
SELECT id, transaction_id, title, description, priority, due_date, completed, agent_visible, created_at, updated_at
FROM tasks
WHERE transaction_id = ?
`
	params := []any{query.TransactionID}
	if cond.Clause != "" {
		sqlQuery += " AND " + cond.Clause
		params = append(params, cond.Params...)
	}
	sqlQuery += " ORDER BY created_at, id"

	rows, err := s.sqlDB.QueryContext(ctx, sqlQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns one task by id.
func (s *Store) GetTask(ctx context.Context, id string) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Task{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, transaction_id, title, description, priority, due_date, completed, agent_visible, created_at, updated_at
FROM tasks
WHERE id = ?
`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// SetTaskCompletion toggles the completed flag and returns the updated row.
func (s *Store) SetTaskCompletion(ctx context.Context, id string, completed bool, updatedAt time.Time) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Task{}, err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE tasks
SET completed = ?, updated_at = ?
WHERE id = ?
`, boolToInt(completed), toMillis(updatedAt), id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("set task completion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Task{}, fmt.Errorf("set task completion rows affected: %w", err)
	}
	if affected == 0 {
		return domain.Task{}, domain.ErrNotFound
	}
	return s.GetTask(ctx, id)
}

// ApplyTemplate writes the materialized task rows and the application record
// in one transaction so a partial application never becomes visible.
func (s *Store) ApplyTemplate(ctx context.Context, tasks []domain.Task, record domain.ApplicationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin template application: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback template application: %v", cause, rollbackErr)
		}
		return cause
	}

	for _, task := range tasks {
		if err := insertTask(ctx, tx, task); err != nil {
			return rollbackWith(fmt.Errorf("insert task %s: %w", task.ID, err))
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO application_records (id, transaction_id, template_id, variant, task_count, status, applied_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.TransactionID,
		record.TemplateID,
		string(record.Variant),
		record.TaskCount,
		record.Status,
		toMillis(record.AppliedAt),
	); err != nil {
		return rollbackWith(fmt.Errorf("insert application record: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit template application: %w", err)
	}
	return nil
}

// ListApplicationRecords lists a transaction's application history,
// newest first.
func (s *Store) ListApplicationRecords(ctx context.Context, transactionID string) ([]domain.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, transaction_id, template_id, variant, task_count, status, applied_at
FROM application_records
WHERE transaction_id = ?
ORDER BY applied_at DESC, id DESC
`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list application records: %w", err)
	}
	defer rows.Close()

	var records []domain.ApplicationRecord
	for rows.Next() {
		var record domain.ApplicationRecord
		var variant string
		var appliedAt int64
		if err := rows.Scan(
			&record.ID,
			&record.TransactionID,
			&record.TemplateID,
			&variant,
			&record.TaskCount,
			&record.Status,
			&appliedAt,
		); err != nil {
			return nil, fmt.Errorf("scan application record: %w", err)
		}
		record.Variant = domain.TemplateVariant(variant)
		record.AppliedAt = fromMillis(appliedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application records: %w", err)
	}
	return records, nil
}

func scanTask(row rowScanner) (domain.Task, error) {
	var task domain.Task
	var priority string
	var dueDate sql.NullString
	var completed, agentVisible int
	var createdAt, updatedAt int64
	if err := row.Scan(
		&task.ID,
		&task.TransactionID,
		&task.Title,
		&task.Description,
		&priority,
		&dueDate,
		&completed,
		&agentVisible,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Task{}, err
	}
	task.Priority = domain.Priority(priority)
	var err error
	if task.DueDate, err = decodeDate(dueDate); err != nil {
		return domain.Task{}, err
	}
	task.Completed = completed != 0
	task.AgentVisible = agentVisible != 0
	task.CreatedAt = fromMillis(createdAt)
	task.UpdatedAt = fromMillis(updatedAt)
	return task, nil
}
