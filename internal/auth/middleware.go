// Package auth provides session authentication middleware for the
// indicators API server.
package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/painel-economico/indicadores-server/internal/session"
)

// SessionCookieName is the cookie that carries the session token for
// browser clients. API clients may send the token as a bearer token
// instead.
const SessionCookieName = "sessao_token"

// realm is the protection space reported on 401 responses.
const realm = "indicadores"

const bearerPrefix = "Bearer "

// unauthorizedMessage is the error body served on failed authentication.
const unauthorizedMessage = "não autenticado"

// TokenFromRequest extracts the session token from the Authorization
// header (Bearer scheme) or, failing that, from the session cookie.
// The header wins when both are present so API clients can override a
// stale browser cookie.
func TokenFromRequest(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if token != "" {
			return token, true
		}
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// RequireSession returns middleware that rejects requests lacking a
// valid session with 401 and a JSON error body. It never distinguishes
// missing, unknown and expired tokens to the client.
func RequireSession(sessions session.Authority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromRequest(r)
			if !ok {
				slog.WarnContext(r.Context(), "Request without session token",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path)
				writeUnauthorized(w)
				return
			}

			if !sessions.Validate(r.Context(), token) {
				slog.WarnContext(r.Context(), "Session validation failed",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewSessionCookie builds the HttpOnly cookie set on login. Its
// lifetime mirrors the session lifetime so the browser drops the cookie
// when the server would reject it anyway.
func NewSessionCookie(token string, sessions session.Authority) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessions.Lifetime().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds the cookie that clears the session on
// logout.
func ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="`+realm+`"`)
	w.WriteHeader(http.StatusUnauthorized)

	resp := struct {
		Error string `json:"error"`
	}{
		Error: unauthorizedMessage,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
