package http

import (
	"net/http"
	"strings"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
)

type taskJSON struct {
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Priority     string  `json:"priority"`
	DueDate      *string `json:"dueDate"`
	Completed    bool    `json:"completed"`
	AgentVisible bool    `json:"agentVisible"`
	CreateTime   string  `json:"createTime"`
	UpdateTime   string  `json:"updateTime"`
}

func encodeTask(task domain.Task) taskJSON {
	return taskJSON{
		Name:         taskName(task.TransactionID, task.ID),
		Title:        task.Title,
		Description:  task.Description,
		Priority:     string(task.Priority),
		DueDate:      formatDate(task.DueDate),
		Completed:    task.Completed,
		AgentVisible: task.AgentVisible,
		CreateTime:   formatTime(task.CreatedAt),
		UpdateTime:   formatTime(task.UpdatedAt),
	}
}

type listTasksResponse struct {
	Tasks []taskJSON `json:"tasks"`
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.tasks.List(r.Context(), domain.TaskQuery{
		TransactionID: r.PathValue("transaction"),
		Filter:        r.URL.Query().Get("filter"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	response := listTasksResponse{Tasks: make([]taskJSON, 0, len(tasks))}
	for _, task := range tasks {
		response.Tasks = append(response.Tasks, encodeTask(task))
	}
	writeJSON(w, http.StatusOK, response)
}

type applyTemplateRequest struct {
	Template string `json:"template"`
}

type applyTemplateResponse struct {
	CreatedTaskCount  int    `json:"createdTaskCount"`
	ApplicationRecord string `json:"applicationRecord"`
}

type previewTaskJSON struct {
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Priority     string  `json:"priority"`
	DueDate      *string `json:"dueDate"`
	AgentVisible bool    `json:"agentVisible"`
}

type previewTemplateResponse struct {
	Tasks []previewTaskJSON `json:"tasks"`
}

// handleTransactionAction dispatches the custom tasks:applyTemplate and
// tasks:previewTemplate verbs.
func (a *API) handleTransactionAction(w http.ResponseWriter, r *http.Request) {
	transactionID := r.PathValue("transaction")
	switch r.PathValue("action") {
	case "tasks:applyTemplate":
		a.applyTemplate(w, r, transactionID)
	case "tasks:previewTemplate":
		a.previewTemplate(w, r, transactionID)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) applyTemplate(w http.ResponseWriter, r *http.Request, transactionID string) {
	var request applyTemplateRequest
	if err := decodeBody(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	result, err := a.engine.Apply(r.Context(), transactionID, templateIDFromName(request.Template))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applyTemplateResponse{
		CreatedTaskCount:  result.CreatedTaskCount,
		ApplicationRecord: applicationRecordName(transactionID, result.ApplicationRecordID),
	})
}

func (a *API) previewTemplate(w http.ResponseWriter, r *http.Request, transactionID string) {
	var request applyTemplateRequest
	if err := decodeBody(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	payloads, err := a.engine.Preview(r.Context(), transactionID, templateIDFromName(request.Template))
	if err != nil {
		writeError(w, err)
		return
	}
	response := previewTemplateResponse{Tasks: make([]previewTaskJSON, 0, len(payloads))}
	for _, payload := range payloads {
		response.Tasks = append(response.Tasks, previewTaskJSON{
			Title:        payload.Title,
			Description:  payload.Description,
			Priority:     string(payload.Priority),
			DueDate:      formatDate(payload.DueDate),
			AgentVisible: payload.AgentVisible,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

type completeTaskRequest struct {
	Completed *bool `json:"completed"`
}

// handleTaskAction dispatches the custom {task}:complete verb.
func (a *API) handleTaskAction(w http.ResponseWriter, r *http.Request) {
	taskID, verb, found := strings.Cut(r.PathValue("action"), ":")
	if !found || verb != "complete" {
		http.NotFound(w, r)
		return
	}

	completed := true
	if r.ContentLength > 0 {
		var request completeTaskRequest
		if err := decodeBody(r, &request); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		if request.Completed != nil {
			completed = *request.Completed
		}
	}

	task, err := a.tasks.SetCompletion(r.Context(), taskID, completed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeTask(task))
}

type applicationRecordJSON struct {
	Name      string `json:"name"`
	Template  string `json:"template"`
	Variant   string `json:"variant"`
	TaskCount int    `json:"taskCount"`
	Status    string `json:"status"`
	ApplyTime string `json:"applyTime"`
}

type listApplicationRecordsResponse struct {
	ApplicationRecords []applicationRecordJSON `json:"applicationRecords"`
}

func (a *API) handleListApplicationRecords(w http.ResponseWriter, r *http.Request) {
	records, err := a.engine.History(r.Context(), r.PathValue("transaction"))
	if err != nil {
		writeError(w, err)
		return
	}
	response := listApplicationRecordsResponse{ApplicationRecords: make([]applicationRecordJSON, 0, len(records))}
	for _, record := range records {
		response.ApplicationRecords = append(response.ApplicationRecords, applicationRecordJSON{
			Name:      applicationRecordName(record.TransactionID, record.ID),
			Template:  templateName(record.TemplateID),
			Variant:   string(record.Variant),
			TaskCount: record.TaskCount,
			Status:    record.Status,
			ApplyTime: formatTime(record.AppliedAt),
		})
	}
	writeJSON(w, http.StatusOK, response)
}
