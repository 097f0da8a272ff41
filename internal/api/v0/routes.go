// Package v0 provides the REST API handlers for the economic
// indicators API.
package v0

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/painel-economico/indicadores-server/internal/auth"
	"github.com/painel-economico/indicadores-server/internal/service"
	"github.com/painel-economico/indicadores-server/internal/session"
	"github.com/painel-economico/indicadores-server/internal/versions"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpdateResponse acknowledges a forced refresh request.
type UpdateResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Password string `json:"senha"`
}

// LoginResponse carries the issued session token. Browser clients get
// the same token as an HttpOnly cookie.
type LoginResponse struct {
	Token string `json:"token"`
}

// AnnotationRequest is the payload for annotation writes.
type AnnotationRequest struct {
	Text string `json:"texto"`
}

// Routes defines the routes for the indicators API with dependency injection
type Routes struct {
	service  service.Service
	sessions session.Authority
}

// NewRoutes creates a new Routes instance with the provided service and
// session authority
func NewRoutes(svc service.Service, sessions session.Authority) *Routes {
	return &Routes{
		service:  svc,
		sessions: sessions,
	}
}

// Router creates a new router for the indicators API
func Router(svc service.Service, sessions session.Authority) http.Handler {
	routes := NewRoutes(svc, sessions)

	r := chi.NewRouter()

	r.Get("/indicadores", routes.listIndicators)
	r.Route("/indicadores/{nome}", func(r chi.Router) {
		r.Get("/", routes.getIndicator)
		r.Get("/historico", routes.getHistorical)
		r.Get("/anotacao", routes.getAnnotation)
		r.With(auth.RequireSession(sessions)).Put("/anotacao", routes.putAnnotation)
	})
	r.Post("/atualizar", routes.forceUpdate)
	r.Get("/status", routes.getStatus)

	r.Post("/auth/login", routes.login)
	r.Post("/auth/logout", routes.logout)

	return r
}

// listIndicators handles GET /api/indicadores
//
// @Summary		List indicators
// @Description	Get all economic indicators from the current snapshot
// @Tags			indicadores
// @Produce		json
// @Success		200	{array}	service.IndicatorJSON
// @Router			/api/indicadores [get]
func (rr *Routes) listIndicators(w http.ResponseWriter, r *http.Request) {
	records := rr.service.ListIndicators(r.Context())
	rr.writeJSONResponse(w, records, http.StatusOK)
}

// getIndicator handles GET /api/indicadores/{nome}
//
// @Summary		Get an indicator by name
// @Description	Get a single indicator; the name is matched case-insensitively ignoring spaces and hyphens
// @Tags			indicadores
// @Produce		json
// @Param			nome	path		string	true	"Indicator name, e.g. \"taxa-selic\" or \"Taxa Selic\""
// @Success		200		{object}	service.IndicatorJSON
// @Failure		404		{object}	ErrorResponse
// @Router			/api/indicadores/{nome} [get]
func (rr *Routes) getIndicator(w http.ResponseWriter, r *http.Request) {
	nome := chi.URLParam(r, "nome")

	record, err := rr.service.GetIndicator(r.Context(), nome)
	if err != nil {
		if errors.Is(err, service.ErrIndicatorNotFound) {
			rr.writeErrorResponse(w, fmt.Sprintf("Indicador '%s' não encontrado", nome), http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to get indicator", "nome", nome, "error", err)
		rr.writeErrorResponse(w, "Erro ao buscar indicador", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, record, http.StatusOK)
}

// getHistorical handles GET /api/indicadores/{nome}/historico
//
// @Summary		Get the historical series of an indicator
// @Description	Get up to twelve periods of history; indicators without history yield empty arrays
// @Tags			indicadores
// @Produce		json
// @Param			nome	path		string	true	"Indicator slug, e.g. \"taxa-selic\""
// @Success		200		{object}	service.HistoricalJSON
// @Router			/api/indicadores/{nome}/historico [get]
func (rr *Routes) getHistorical(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "nome")
	payload := rr.service.GetHistorical(r.Context(), slug)
	rr.writeJSONResponse(w, payload, http.StatusOK)
}

// forceUpdate handles POST /api/atualizar
//
// @Summary		Force a refresh
// @Description	Trigger a snapshot refresh in the background and return immediately
// @Tags			indicadores
// @Produce		json
// @Success		200	{object}	UpdateResponse
// @Router			/api/atualizar [post]
func (rr *Routes) forceUpdate(w http.ResponseWriter, r *http.Request) {
	rr.service.TriggerRefresh(r.Context())

	rr.writeJSONResponse(w, UpdateResponse{
		Message:   "Atualização iniciada em background",
		Timestamp: time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

// getStatus handles GET /api/status
//
// @Summary		Cache status
// @Description	Report cache freshness, age and size
// @Tags			system
// @Produce		json
// @Success		200	{object}	service.StatusJSON
// @Router			/api/status [get]
func (rr *Routes) getStatus(w http.ResponseWriter, r *http.Request) {
	rr.writeJSONResponse(w, rr.service.Status(r.Context()), http.StatusOK)
}

// getAnnotation handles GET /api/indicadores/{nome}/anotacao
//
// @Summary		Get the annotation of an indicator
// @Description	Get the editorial note attached to an indicator slug
// @Tags			anotacoes
// @Produce		json
// @Param			nome	path		string	true	"Indicator slug"
// @Success		200		{object}	service.AnnotationJSON
// @Failure		404		{object}	ErrorResponse
// @Router			/api/indicadores/{nome}/anotacao [get]
func (rr *Routes) getAnnotation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "nome")

	annotation, err := rr.service.GetAnnotation(r.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrAnnotationNotFound) {
			rr.writeErrorResponse(w, fmt.Sprintf("Anotação para '%s' não encontrada", slug), http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to read annotation", "slug", slug, "error", err)
		rr.writeErrorResponse(w, "Erro ao buscar anotação", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, annotation, http.StatusOK)
}

// putAnnotation handles PUT /api/indicadores/{nome}/anotacao
//
// @Summary		Write the annotation of an indicator
// @Description	Create or replace the editorial note attached to an indicator slug; requires a session
// @Tags			anotacoes
// @Accept			json
// @Param			nome	path	string				true	"Indicator slug"
// @Param			body	body	AnnotationRequest	true	"Annotation text"
// @Success		204
// @Failure		400	{object}	ErrorResponse
// @Failure		401	{object}	ErrorResponse
// @Router			/api/indicadores/{nome}/anotacao [put]
func (rr *Routes) putAnnotation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "nome")

	var req AnnotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rr.writeErrorResponse(w, "Corpo da requisição inválido", http.StatusBadRequest)
		return
	}

	if _, err := rr.service.PutAnnotation(r.Context(), slug, req.Text); err != nil {
		slog.ErrorContext(r.Context(), "Failed to store annotation", "slug", slug, "error", err)
		rr.writeErrorResponse(w, "Erro ao salvar anotação", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// login handles POST /api/auth/login
//
// @Summary		Log in
// @Description	Exchange the shared password for a session token; the token is also set as an HttpOnly cookie
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			body	body		LoginRequest	true	"Credentials"
// @Success		200		{object}	LoginResponse
// @Failure		400		{object}	ErrorResponse
// @Failure		401		{object}	ErrorResponse
// @Router			/api/auth/login [post]
func (rr *Routes) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rr.writeErrorResponse(w, "Corpo da requisição inválido", http.StatusBadRequest)
		return
	}

	token, err := rr.sessions.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidPassword) {
			rr.writeErrorResponse(w, "senha inválida", http.StatusUnauthorized)
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		rr.writeErrorResponse(w, "Erro ao processar login", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, auth.NewSessionCookie(token, rr.sessions))
	rr.writeJSONResponse(w, LoginResponse{Token: token}, http.StatusOK)
}

// logout handles POST /api/auth/logout
//
// @Summary		Log out
// @Description	Revoke the presented session token and clear the session cookie
// @Tags			auth
// @Success		204
// @Router			/api/auth/logout [post]
func (rr *Routes) logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := auth.TokenFromRequest(r); ok {
		rr.sessions.Revoke(r.Context(), token)
	}

	http.SetCookie(w, auth.ExpiredSessionCookie())
	w.WriteHeader(http.StatusNoContent)
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.Service) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler(svc))
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)

	return r
}

// healthHandler handles health check requests
//
// @Summary		Health check
// @Description	Check if the indicators API is healthy
// @Tags			system
// @Produce		json
// @Success		200	{object}	map[string]any
// @Router			/health [get]
func healthHandler(svc service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := svc.Status(r.Context())

		response := map[string]any{
			"status":       "healthy",
			"timestamp":    time.Now().Format(time.RFC3339),
			"cache_active": status.CacheUpdated != nil,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			slog.Error("Failed to encode health response", "error", err)
		}
	}
}

// readinessHandler handles readiness check requests
//
// @Summary		Readiness check
// @Description	Check if the indicators API is ready to serve requests
// @Tags			system
// @Produce		json
// @Success		200	{object}	map[string]string
// @Failure		503	{object}	ErrorResponse
// @Router			/readiness [get]
func readinessHandler(svc service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			errorResp := ErrorResponse{
				Error: "Service not ready: " + err.Error(),
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if encodeErr := json.NewEncoder(w).Encode(errorResp); encodeErr != nil {
				slog.Error("Failed to encode readiness error response", "error", encodeErr)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}

// versionHandler handles version information requests
//
// @Summary		Version information
// @Description	Get version information about the indicators API
// @Tags			system
// @Produce		json
// @Success		200	{object}	versions.VersionInfo
// @Router			/version [get]
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	info := versions.GetVersionInfo()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(info); err != nil {
		slog.Error("Failed to encode version info", "error", err)
	}
}

// writeJSONResponse writes a JSON response with the given data
func (*Routes) writeJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes a standardized error response
func (*Routes) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	errorResp := ErrorResponse{
		Error: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
