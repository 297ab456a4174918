package http

import (
	"net/http"

	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
)

type clientJSON struct {
	Name       string `json:"name"`
	FullName   string `json:"fullName"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	CreateTime string `json:"createTime"`
	UpdateTime string `json:"updateTime"`
}

func encodeClient(client domain.Client) clientJSON {
	return clientJSON{
		Name:       clientName(client.ID),
		FullName:   client.FullName,
		Email:      client.Email,
		Phone:      client.Phone,
		CreateTime: formatTime(client.CreatedAt),
		UpdateTime: formatTime(client.UpdatedAt),
	}
}

type createClientRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func (a *API) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var request createClientRequest
	if err := decodeBody(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	client, err := a.clients.Create(r.Context(), domain.CreateClientInput{
		FullName: request.FullName,
		Email:    request.Email,
		Phone:    request.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, encodeClient(client))
}

type listClientsResponse struct {
	Clients []clientJSON `json:"clients"`
}

func (a *API) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := a.clients.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response := listClientsResponse{Clients: make([]clientJSON, 0, len(clients))}
	for _, client := range clients {
		response.Clients = append(response.Clients, encodeClient(client))
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) handleGetClient(w http.ResponseWriter, r *http.Request) {
	client, err := a.clients.Get(r.Context(), r.PathValue("client"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeClient(client))
}

type communicationJSON struct {
	Name    string `json:"name"`
	Channel string `json:"channel"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
	LogTime string `json:"logTime"`
}

func encodeCommunication(comm domain.Communication) communicationJSON {
	return communicationJSON{
		Name:    communicationName(comm.TransactionID, comm.ID),
		Channel: comm.Channel,
		Subject: comm.Subject,
		Body:    comm.Body,
		LogTime: formatTime(comm.LoggedAt),
	}
}

type logCommunicationRequest struct {
	Channel string `json:"channel"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (a *API) handleLogCommunication(w http.ResponseWriter, r *http.Request) {
	var request logCommunicationRequest
	if err := decodeBody(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	comm, err := a.communications.Log(r.Context(), domain.LogCommunicationInput{
		TransactionID: r.PathValue("transaction"),
		Channel:       request.Channel,
		Subject:       request.Subject,
		Body:          request.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, encodeCommunication(comm))
}

type listCommunicationsResponse struct {
	Communications []communicationJSON `json:"communications"`
}

func (a *API) handleListCommunications(w http.ResponseWriter, r *http.Request) {
	comms, err := a.communications.List(r.Context(), r.PathValue("transaction"))
	if err != nil {
		writeError(w, err)
		return
	}
	response := listCommunicationsResponse{Communications: make([]communicationJSON, 0, len(comms))}
	for _, comm := range comms {
		response.Communications = append(response.Communications, encodeCommunication(comm))
	}
	writeJSON(w, http.StatusOK, response)
}
