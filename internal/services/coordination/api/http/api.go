// Package http exposes the coordination service as a JSON HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
)

// API serves the coordination JSON routes.
type API struct {
	catalog        *domain.Catalog
	engine         *domain.Engine
	transactions   *domain.Transactions
	tasks          *domain.Tasks
	clients        *domain.Clients
	communications *domain.Communications
}

// NewAPI constructs the HTTP API over the coordination services.
func NewAPI(
	catalog *domain.Catalog,
	engine *domain.Engine,
	transactions *domain.Transactions,
	tasks *domain.Tasks,
	clients *domain.Clients,
	communications *domain.Communications,
) *API {
	return &API{
		catalog:        catalog,
		engine:         engine,
		transactions:   transactions,
		tasks:          tasks,
		clients:        clients,
		communications: communications,
	}
}

// Handler returns the routed HTTP handler for the API.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/templates", a.handleListTemplates)

	mux.HandleFunc("POST /v1/clients", a.handleCreateClient)
	mux.HandleFunc("GET /v1/clients", a.handleListClients)
	mux.HandleFunc("GET /v1/clients/{client}", a.handleGetClient)

	mux.HandleFunc("POST /v1/transactions", a.handleCreateTransaction)
	mux.HandleFunc("GET /v1/transactions", a.handleListTransactions)
	mux.HandleFunc("GET /v1/transactions/{transaction}", a.handleGetTransaction)
	mux.HandleFunc("PATCH /v1/transactions/{transaction}", a.handleUpdateTransaction)

	mux.HandleFunc("GET /v1/transactions/{transaction}/tasks", a.handleListTasks)
	mux.HandleFunc("GET /v1/transactions/{transaction}/applicationRecords", a.handleListApplicationRecords)
	mux.HandleFunc("GET /v1/transactions/{transaction}/communications", a.handleListCommunications)
	mux.HandleFunc("POST /v1/transactions/{transaction}/communications", a.handleLogCommunication)

	// Custom verbs (tasks:applyTemplate, tasks:previewTemplate, {task}:complete)
	// are not expressible as mux wildcards; the action segment is parsed by hand.
	mux.HandleFunc("POST /v1/transactions/{transaction}/{action}", a.handleTransactionAction)
	mux.HandleFunc("POST /v1/tasks/{action}", a.handleTaskAction)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrTemplateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCatalogUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNoValidTasks):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrTransactionIDRequired),
		errors.Is(err, domain.ErrTemplateIDRequired),
		errors.Is(err, domain.ErrTaskIDRequired),
		errors.Is(err, domain.ErrClientIDRequired),
		errors.Is(err, domain.ErrClientNameRequired),
		errors.Is(err, domain.ErrTransactionTypeRequired),
		errors.Is(err, domain.ErrAddressRequired),
		errors.Is(err, domain.ErrChannelRequired),
		errors.Is(err, domain.ErrTitleRequired):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPersistenceFailure),
		errors.Is(err, domain.ErrStoreNotConfigured):
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeBody(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
