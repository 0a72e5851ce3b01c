package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"3tcapital/wealthdesk/internal/core/lifecycle"
	"3tcapital/wealthdesk/internal/core/session"
	ctxutil "3tcapital/wealthdesk/internal/infrastructure/context"
)

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil && log != nil {
		log.Error("failed to encode response", "error", err)
	}
}

// RequireSession returns the request's session, answering 401 when there is none.
func RequireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := ctxutil.GetSession(r.Context())
	if sess == nil {
		WriteError(w, http.StatusUnauthorized, "Erro de Autenticação", []string{"Sessão ausente"}, nil)
		return nil, false
	}
	return sess, true
}

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s %q is not a valid id: %w", name, raw, lifecycle.ErrInvalidInput)
	}
	return id, nil
}

// DecodeJSON reads the request body into v; malformed bodies wrap lifecycle.ErrInvalidInput.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("corpo da requisição inválido: %w", lifecycle.ErrInvalidInput)
	}
	return nil
}
