package clients

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"3tcapital/wealthdesk/internal/application/history"
	"3tcapital/wealthdesk/internal/application/portfolio"
	"3tcapital/wealthdesk/internal/application/workflow"
	"3tcapital/wealthdesk/internal/core/audit"
	httperrors "3tcapital/wealthdesk/internal/infrastructure/http"
)

// Handler serves the advisor portfolio, client profiles and the transition history.
type Handler struct {
	portfolio *portfolio.Service
	workflow  *workflow.Service
	history   *history.Service
	log       *slog.Logger
}

// NewHandler creates the handler. history may be nil when the audit trail is disabled;
// the transitions route is then not mounted.
func NewHandler(portfolio *portfolio.Service, workflow *workflow.Service, history *history.Service, log *slog.Logger) *Handler {
	return &Handler{portfolio: portfolio, workflow: workflow, history: history, log: log}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/clients", h.List)
	r.Get("/clients/{clientID}", h.Profile)
	r.Get("/clients/{clientID}/summary", h.Summary)
	if h.history != nil {
		r.Get("/clients/{clientID}/transitions", h.Transitions)
	}
}

// ListResponse wraps the advisor's client list.
type ListResponse struct {
	Total int               `json:"total"`
	Data  []portfolio.Entry `json:"data"`
}

// TransitionResponse is one audit entry as exposed over HTTP.
type TransitionResponse struct {
	ID            uuid.UUID `json:"id"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Kind          string    `json:"kind"`
	EntityID      int64     `json:"entityId"`
	OldStatus     string    `json:"oldStatus,omitempty"`
	NewStatus     string    `json:"newStatus"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// TransitionsResponse wraps a client's transition history.
type TransitionsResponse struct {
	ClientID string               `json:"clientId"`
	Total    int                  `json:"total"`
	Data     []TransitionResponse `json:"data"`
}

// List handles GET /clients.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	entries, err := h.portfolio.ListClients(r.Context(), sess)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, ListResponse{Total: len(entries), Data: entries}, h.log)
}

// Profile handles GET /clients/{clientID}.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	overview, err := h.portfolio.Profile(r.Context(), sess, chi.URLParam(r, "clientID"))
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, overview, h.log)
}

// Summary handles GET /clients/{clientID}/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	summary, err := h.workflow.Summary(r.Context(), sess, chi.URLParam(r, "clientID"))
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, summary, h.log)
}

// Transitions handles GET /clients/{clientID}/transitions[?limit=].
func (h *Handler) Transitions(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httperrors.WriteError(w, http.StatusBadRequest, "Erro de Validação", []string{"limit deve ser um número inteiro"}, h.log)
			return
		}
		limit = n
	}

	clientID := chi.URLParam(r, "clientID")
	entries, err := h.history.Transitions(r.Context(), sess, clientID, limit)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	data := make([]TransitionResponse, 0, len(entries))
	for _, e := range entries {
		data = append(data, toTransition(e))
	}
	httperrors.WriteJSON(w, http.StatusOK, TransitionsResponse{ClientID: clientID, Total: len(data), Data: data}, h.log)
}

func toTransition(e audit.Entry) TransitionResponse {
	return TransitionResponse{
		ID:            e.ID,
		CorrelationID: e.CorrelationID,
		Kind:          string(e.Kind),
		EntityID:      e.EntityID,
		OldStatus:     e.OldStatus,
		NewStatus:     e.NewStatus,
		Actor:         e.Actor,
		OccurredAt:    e.OccurredAt,
	}
}
