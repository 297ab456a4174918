package http

import (
	"net/http"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
)

type transactionJSON struct {
	Name         string  `json:"name"`
	ClientID     string  `json:"clientId,omitempty"`
	Address      string  `json:"address"`
	Type         string  `json:"type"`
	Tier         string  `json:"tier,omitempty"`
	Status       string  `json:"status"`
	ContractDate *string `json:"contractDate"`
	ClosingDate  *string `json:"closingDate"`
	CreateTime   string  `json:"createTime"`
	UpdateTime   string  `json:"updateTime"`
}

func encodeTransaction(txn domain.Transaction) transactionJSON {
	return transactionJSON{
		Name:         transactionName(txn.ID),
		ClientID:     txn.ClientID,
		Address:      txn.Address,
		Type:         string(txn.Type),
		Tier:         string(txn.Tier),
		Status:       txn.Status,
		ContractDate: formatDate(txn.ContractDate),
		ClosingDate:  formatDate(txn.ClosingDate),
		CreateTime:   formatTime(txn.CreatedAt),
		UpdateTime:   formatTime(txn.UpdatedAt),
	}
}

type createTransactionRequest struct {
	ClientID     string  `json:"clientId"`
	Address      string  `json:"address"`
	Type         string  `json:"type"`
	Tier         string  `json:"tier"`
	ContractDate *string `json:"contractDate"`
	ClosingDate  *string `json:"closingDate"`
}

func (a *API) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var request createTransactionRequest
	if err := decodeBody(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	contractDate, err := parseDate(request.ContractDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid contractDate: " + err.Error()})
		return
	}
	closingDate, err := parseDate(request.ClosingDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid closingDate: " + err.Error()})
		return
	}

	txn, err := a.transactions.Create(r.Context(), domain.CreateTransactionInput{
		ClientID:     request.ClientID,
		Address:      request.Address,
		Type:         domain.TransactionType(request.Type),
		Tier:         domain.ServiceTier(request.Tier),
		ContractDate: contractDate,
		ClosingDate:  closingDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, encodeTransaction(txn))
}

type listTransactionsResponse struct {
	Transactions []transactionJSON `json:"transactions"`
}

func (a *API) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := a.transactions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response := listTransactionsResponse{Transactions: make([]transactionJSON, 0, len(transactions))}
	for _, txn := range transactions {
		response.Transactions = append(response.Transactions, encodeTransaction(txn))
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := a.transactions.Get(r.Context(), r.PathValue("transaction"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeTransaction(txn))
}

type updateTransactionRequest struct {
	Status        string  `json:"status"`
	ContractDate  *string `json:"contractDate"`
	ClosingDate   *string `json:"closingDate"`
	ClearContract bool    `json:"clearContract"`
	ClearClosing  bool    `json:"clearClosing"`
}

func (a *API) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var request updateTransactionRequest
	if err := decodeBody(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	contractDate, err := parseDate(request.ContractDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid contractDate: " + err.Error()})
		return
	}
	closingDate, err := parseDate(request.ClosingDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid closingDate: " + err.Error()})
		return
	}

	txn, err := a.transactions.Update(r.Context(), domain.UpdateTransactionInput{
		ID:            r.PathValue("transaction"),
		Status:        request.Status,
		ContractDate:  contractDate,
		ClosingDate:   closingDate,
		ClearContract: request.ClearContract,
		ClearClosing:  request.ClearClosing,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeTransaction(txn))
}
