package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"3tcapital/wealthdesk/internal/core/lifecycle"
	"3tcapital/wealthdesk/internal/core/session"
)

// ErrorResponse represents a standardized error response format.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// WriteError writes a standardized JSON error response to the HTTP response writer.
// It sets the appropriate Content-Type header, status code, and encodes the error response.
func WriteError(w http.ResponseWriter, statusCode int, message string, errors []string, log *slog.Logger) {
	response := ErrorResponse{
		Message: message,
		Errors:  errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		// The status code is already written; nothing left to send.
		if log != nil {
			log.Error("failed to encode error response", "error", err)
		}
	}
}

// StatusFor maps a workflow error to its HTTP status code and envelope message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound, "Recurso Não Encontrado"
	case errors.Is(err, lifecycle.ErrInvalidStatus), errors.Is(err, lifecycle.ErrInvalidInput):
		return http.StatusBadRequest, "Erro de Validação"
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrDuplicateActiveRequest),
		errors.Is(err, lifecycle.ErrNotInProgress):
		return http.StatusConflict, "Conflito de Estado"
	case errors.Is(err, session.ErrForbidden):
		return http.StatusForbidden, "Acesso Negado"
	case errors.Is(err, session.ErrSessionClosed), errors.Is(err, session.ErrInvalidSession):
		return http.StatusUnauthorized, "Erro de Autenticação"
	default:
		return http.StatusInternalServerError, "Erro Interno"
	}
}

// WriteDomainError writes err using the status mapping of StatusFor.
// Internal errors are logged and their detail is not exposed to the caller.
func WriteDomainError(w http.ResponseWriter, err error, log *slog.Logger) {
	status, message := StatusFor(err)
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", "error", err)
		}
		WriteError(w, status, message, []string{"Erro inesperado ao processar a solicitação"}, log)
		return
	}
	WriteError(w, status, message, []string{err.Error()}, log)
}
