package http

import (
	"net/http"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
)

type templateSummaryJSON struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	TaskCount   int    `json:"taskCount"`
	Variant     string `json:"variant"`
}

type listTemplatesResponse struct {
	Templates []templateSummaryJSON `json:"templates"`
}

// handleListTemplates lists templates applicable to a transaction type and
// optional service tier.
func (a *API) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	txnType := domain.TransactionType(query.Get("transactionType"))
	tier := domain.ServiceTier(query.Get("tier"))

	summaries, err := a.catalog.ListApplicableTemplates(r.Context(), txnType, tier)
	if err != nil {
		writeError(w, err)
		return
	}

	response := listTemplatesResponse{Templates: make([]templateSummaryJSON, 0, len(summaries))}
	for _, summary := range summaries {
		response.Templates = append(response.Templates, templateSummaryJSON{
			Name:        templateName(summary.ID),
			DisplayName: summary.Name,
			TaskCount:   summary.TaskCount,
			Variant:     string(summary.Variant),
		})
	}
	writeJSON(w, http.StatusOK, response)
}
