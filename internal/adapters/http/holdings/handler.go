package holdings

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"3tcapital/wealthdesk/internal/application/workflow"
	"3tcapital/wealthdesk/internal/core/holding"
	"3tcapital/wealthdesk/internal/core/lifecycle"
	"3tcapital/wealthdesk/internal/core/session"
	httperrors "3tcapital/wealthdesk/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the holding pipeline of the workflow service.
type Handler struct {
	service *workflow.Service
	log     *slog.Logger
}

func NewHandler(service *workflow.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Register mounts the holding routes under /clients/{clientID}/holdings.
func (h *Handler) Register(r chi.Router) {
	r.Route("/clients/{clientID}/holdings", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.StartFormation)
		r.Get("/{holdingID}", h.Get)
		r.Post("/{holdingID}/advance", h.Advance)
		r.Post("/{holdingID}/status", h.SetStatus)
		r.Post("/{holdingID}/resume", h.Resume)
	})
}

// StartFormationRequest is the body of POST /clients/{clientID}/holdings.
// totalValue accepts a JSON number or a decimal string.
type StartFormationRequest struct {
	Name         string          `json:"name"`
	EntityType   string          `json:"entityType"`
	PartnerCount int             `json:"partnerCount"`
	AssetCount   int             `json:"assetCount"`
	TotalValue   decimal.Decimal `json:"totalValue"`
}

// SetStatusRequest is the body of POST .../holdings/{holdingID}/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// CaseResponse is a holding case with its formation progress.
type CaseResponse struct {
	holding.Case
	Progress float64 `json:"progress"`
}

// ListResponse wraps a holding list.
type ListResponse struct {
	Total int            `json:"total"`
	Data  []CaseResponse `json:"data"`
}

func toResponse(c holding.Case) CaseResponse {
	return CaseResponse{Case: c, Progress: holding.ProgressRatio(c)}
}

// List handles GET /clients/{clientID}/holdings.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}

	cases, err := h.service.ListHoldings(r.Context(), sess, chi.URLParam(r, "clientID"))
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	data := make([]CaseResponse, 0, len(cases))
	for _, c := range cases {
		data = append(data, toResponse(c))
	}
	httperrors.WriteJSON(w, http.StatusOK, ListResponse{Total: len(data), Data: data}, h.log)
}

// Get handles GET /clients/{clientID}/holdings/{holdingID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.GetHolding)
}

// StartFormation handles POST /clients/{clientID}/holdings.
func (h *Handler) StartFormation(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	var body StartFormationRequest
	if err := httperrors.DecodeJSON(r, &body); err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	c, err := h.service.StartFormation(r.Context(), sess, chi.URLParam(r, "clientID"), holding.FormationRequest{
		Name:         body.Name,
		EntityType:   body.EntityType,
		PartnerCount: body.PartnerCount,
		AssetCount:   body.AssetCount,
		TotalValue:   body.TotalValue,
	})
	h.respond(w, http.StatusCreated, c, err)
}

// Advance handles POST .../holdings/{holdingID}/advance.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.AdvanceStage)
}

// Resume handles POST .../holdings/{holdingID}/resume.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ResumeHolding)
}

// SetStatus handles POST .../holdings/{holdingID}/status; only the two administrative
// pauses can be set directly.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := httperrors.RequireSession(w, r); !ok {
		return
	}
	var body SetStatusRequest
	if err := httperrors.DecodeJSON(r, &body); err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	status, err := holding.ParseStatus(body.Status)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	switch status {
	case holding.StatusUnderAnalysis:
		h.transition(w, r, h.service.SetUnderAnalysis)
	case holding.StatusPendingReview:
		h.transition(w, r, h.service.SetPending)
	default:
		err := fmt.Errorf("status %s cannot be set directly: %w", status, lifecycle.ErrInvalidInput)
		httperrors.WriteDomainError(w, err, h.log)
	}
}

type caseFunc func(ctx context.Context, sess *session.Session, clientID string, holdingID int64) (holding.Case, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply caseFunc) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	id, err := httperrors.PathID(r, "holdingID")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	c, err := apply(r.Context(), sess, chi.URLParam(r, "clientID"), id)
	h.respond(w, http.StatusOK, c, err)
}

func (h *Handler) respond(w http.ResponseWriter, status int, c holding.Case, err error) {
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, status, toResponse(c), h.log)
}
