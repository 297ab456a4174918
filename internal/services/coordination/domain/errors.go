package domain

import "errors"

var (
	// ErrNotFound indicates a requested record was not found.
	ErrNotFound = errors.New("record not found")
	// ErrTransactionNotFound indicates the transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrTemplateNotFound indicates neither template store has the template.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrCatalogUnavailable indicates a template read failed; callers may retry.
	ErrCatalogUnavailable = errors.New("template catalog unavailable")
	// ErrNoValidTasks indicates normalization left a template with zero usable tasks.
	ErrNoValidTasks = errors.New("template has no valid tasks")
	// ErrPersistenceFailure indicates the task or application-record write failed.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrInvalidFilter indicates a task filter expression could not be parsed.
	ErrInvalidFilter = errors.New("invalid filter expression")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("store is not configured")
	// ErrIDGeneratorExhausted indicates a fixed test ID sequence was exhausted.
	ErrIDGeneratorExhausted = errors.New("id generator exhausted")

	// ErrTitleRequired indicates a task title is required.
	ErrTitleRequired = errors.New("task title is required")
	// ErrTransactionIDRequired indicates a transaction id is required.
	ErrTransactionIDRequired = errors.New("transaction id is required")
	// ErrTemplateIDRequired indicates a template id is required.
	ErrTemplateIDRequired = errors.New("template id is required")
	// ErrTaskIDRequired indicates a task id is required.
	ErrTaskIDRequired = errors.New("task id is required")
	// ErrClientIDRequired indicates a client id is required.
	ErrClientIDRequired = errors.New("client id is required")
	// ErrClientNameRequired indicates a client name is required.
	ErrClientNameRequired = errors.New("client name is required")
	// ErrTransactionTypeRequired indicates a transaction type is required.
	ErrTransactionTypeRequired = errors.New("transaction type is required")
	// ErrAddressRequired indicates a property address is required.
	ErrAddressRequired = errors.New("property address is required")
	// ErrChannelRequired indicates a communication channel is required.
	ErrChannelRequired = errors.New("communication channel is required")
)
