package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"3tcapital/wealthdesk/internal/core/session"
	"3tcapital/wealthdesk/internal/infrastructure/config"
	ctxutil "3tcapital/wealthdesk/internal/infrastructure/context"
	httperrors "3tcapital/wealthdesk/internal/infrastructure/http"
)

// Headers read when authentication is disabled, so local callers can pick an acting role.
const (
	HeaderActingRole    = "X-Acting-Role"
	HeaderActingClient  = "X-Acting-Client"
	HeaderActingSubject = "X-Acting-Subject"
)

// SessionClaims are the token claims mapped onto a session.
type SessionClaims struct {
	Role     string `json:"role"`
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator validates Authorization headers and opens a session per request.
// Keys come from a remote JWKS or, when none is configured, from a shared HMAC secret.
type JWTAuthenticator struct {
	cfg        config.AuthSettings
	log        *slog.Logger
	jwks       keyfunc.Keyfunc
	cancel     context.CancelFunc
	bypassPath map[string]struct{}
	now        func() time.Time
}

func NewJWTAuthenticator(cfg config.AuthSettings, log *slog.Logger) (*JWTAuthenticator, error) {
	auth := &JWTAuthenticator{
		cfg:        cfg,
		log:        log,
		bypassPath: make(map[string]struct{}),
		now:        time.Now,
	}

	for _, path := range cfg.BypassPaths {
		if path != "" {
			auth.bypassPath[path] = struct{}{}
		}
	}

	if !cfg.Enabled || cfg.JWKSetURI == "" {
		return auth, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	override := keyfunc.Override{
		RefreshInterval: 6 * time.Hour,
		RefreshErrorHandlerFunc: func(url string) func(context.Context, error) {
			return func(c context.Context, err error) {
				log.Error("failed to refresh JWKS", "url", url, "error", err)
			}
		},
		HTTPTimeout: 10 * time.Second,
	}

	jwks, err := keyfunc.NewDefaultOverrideCtx(ctx, []string{cfg.JWKSetURI}, override)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to load JWKS: %w", err)
	}
	auth.jwks = jwks
	auth.cancel = cancel

	return auth, nil
}

// Middleware opens the caller's session and stores it in the request context.
// The session is closed once the request completes.
func (a *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.shouldBypass(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		var (
			sess *session.Session
			err  error
		)
		if a.cfg.Enabled {
			sess, err = a.sessionFromToken(r)
		} else {
			sess, err = a.sessionFromHeaders(r)
		}
		if err != nil {
			a.log.Warn("session rejected", "path", r.URL.Path, "error", err)
			httperrors.WriteError(w, http.StatusUnauthorized, "Erro de Autenticação", []string{"Credenciais de acesso inválidas"}, a.log)
			return
		}
		defer sess.Close()

		next.ServeHTTP(w, r.WithContext(ctxutil.WithSession(r.Context(), sess)))
	})
}

// Close stops background JWKS refreshers.
func (a *JWTAuthenticator) Close() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *JWTAuthenticator) sessionFromToken(r *http.Request) (*session.Session, error) {
	tokenString, err := extractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, a.keyfunc(),
		jwt.WithIssuer(a.cfg.IssuerURI),
		jwt.WithLeeway(a.cfg.ClockSkew),
		jwt.WithValidMethods(a.validMethods()),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	role, ok := session.NormalizeRole(claims.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role claim %q", claims.Role)
	}
	return session.Open(claims.Subject, role, claims.ClientID, a.now())
}

// sessionFromHeaders serves local development: without a role header the caller acts as an advisor.
func (a *JWTAuthenticator) sessionFromHeaders(r *http.Request) (*session.Session, error) {
	role := session.RoleAdvisor
	if raw := r.Header.Get(HeaderActingRole); raw != "" {
		normalized, ok := session.NormalizeRole(raw)
		if !ok {
			return nil, fmt.Errorf("unknown acting role %q", raw)
		}
		role = normalized
	}
	subject := r.Header.Get(HeaderActingSubject)
	if subject == "" {
		subject = "local-" + string(role)
	}
	return session.Open(subject, role, r.Header.Get(HeaderActingClient), a.now())
}

func (a *JWTAuthenticator) keyfunc() jwt.Keyfunc {
	if a.jwks != nil {
		return a.jwks.Keyfunc
	}
	secret := []byte(a.cfg.HMACSecret)
	return func(*jwt.Token) (any, error) {
		return secret, nil
	}
}

func (a *JWTAuthenticator) validMethods() []string {
	if a.jwks == nil {
		return []string{jwt.SigningMethodHS256.Alg()}
	}
	return []string{
		jwt.SigningMethodRS256.Alg(),
		jwt.SigningMethodRS384.Alg(),
		jwt.SigningMethodRS512.Alg(),
		jwt.SigningMethodPS256.Alg(),
		jwt.SigningMethodES256.Alg(),
	}
}

func (a *JWTAuthenticator) shouldBypass(path string) bool {
	_, ok := a.bypassPath[path]
	return ok
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid Authorization header format")
	}
	return parts[1], nil
}
