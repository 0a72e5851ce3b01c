package documents

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"3tcapital/wealthdesk/internal/application/workflow"
	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/session"
	httperrors "3tcapital/wealthdesk/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the document side of the workflow service.
type Handler struct {
	service *workflow.Service
	log     *slog.Logger
}

func NewHandler(service *workflow.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Register mounts the document routes under /clients/{clientID}/documents.
func (h *Handler) Register(r chi.Router) {
	r.Route("/clients/{clientID}/documents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Request)
		r.Get("/{documentID}", h.Get)
		r.Post("/{documentID}/submit", h.Submit)
		r.Post("/{documentID}/review/start", h.BeginReview)
		r.Post("/{documentID}/review", h.Review)
	})
}

// RequestDocumentRequest is the body of POST /clients/{clientID}/documents.
type RequestDocumentRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ReviewRequest is the body of POST .../documents/{documentID}/review.
type ReviewRequest struct {
	Outcome string `json:"outcome"`
}

// ListResponse wraps a document list.
type ListResponse struct {
	Total int               `json:"total"`
	Data  []document.Record `json:"data"`
}

// List handles GET /clients/{clientID}/documents[?status=].
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}

	var filter *document.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := document.ParseStatus(raw)
		if err != nil {
			httperrors.WriteDomainError(w, err, h.log)
			return
		}
		filter = &status
	}

	records, err := h.service.ListDocuments(r.Context(), sess, chi.URLParam(r, "clientID"), filter)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if records == nil {
		records = []document.Record{}
	}
	httperrors.WriteJSON(w, http.StatusOK, ListResponse{Total: len(records), Data: records}, h.log)
}

// Get handles GET /clients/{clientID}/documents/{documentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	id, err := httperrors.PathID(r, "documentID")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	rec, err := h.service.GetDocument(r.Context(), sess, chi.URLParam(r, "clientID"), id)
	h.respond(w, http.StatusOK, rec, err)
}

// Request handles POST /clients/{clientID}/documents.
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	var body RequestDocumentRequest
	if err := httperrors.DecodeJSON(r, &body); err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	rec, err := h.service.RequestDocument(r.Context(), sess, chi.URLParam(r, "clientID"), body.Name, body.Message)
	h.respond(w, http.StatusCreated, rec, err)
}

// Submit handles POST .../documents/{documentID}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.SubmitDocument)
}

// BeginReview handles POST .../documents/{documentID}/review/start.
func (h *Handler) BeginReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.BeginReview)
}

// Review handles POST .../documents/{documentID}/review.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	id, err := httperrors.PathID(r, "documentID")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	var body ReviewRequest
	if err := httperrors.DecodeJSON(r, &body); err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	outcome, err := document.ParseOutcome(body.Outcome)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	rec, err := h.service.ReviewDocument(r.Context(), sess, chi.URLParam(r, "clientID"), id, outcome)
	h.respond(w, http.StatusOK, rec, err)
}

type transitionFunc func(ctx context.Context, sess *session.Session, clientID string, documentID int64) (document.Record, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply transitionFunc) {
	sess, ok := httperrors.RequireSession(w, r)
	if !ok {
		return
	}
	id, err := httperrors.PathID(r, "documentID")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	rec, err := apply(r.Context(), sess, chi.URLParam(r, "clientID"), id)
	h.respond(w, http.StatusOK, rec, err)
}

func (h *Handler) respond(w http.ResponseWriter, status int, rec document.Record, err error) {
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, status, rec, h.log)
}
