/**
 * @description
 * This file contains the HTTP handler functions for the subtrack-service.
 * Handlers parse incoming requests, call the application service, and map the
 * outcome to a response: validation failures become structured 400 bodies
 * naming the offending field, missing rows become 404, and storage failures
 * become a generic 500 with the detail logged server-side only.
 */
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/subtrack/subtrack-service/internal/app"
	"github.com/subtrack/subtrack-service/internal/domain"
	"github.com/subtrack/subtrack-service/internal/store"
)

// Handler holds the application service that handlers will interact with.
type Handler struct {
	service *app.Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the given service.
func NewHandler(service *app.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// handleCreateSubscription handles POST /subscription.
func (h *Handler) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.service.CreateSubscription(r.Context(), owner, body); err != nil {
		h.respondWithServiceError(w, "create subscription", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleEditSubscription handles PUT /subscription/edit. The update is a
// single atomic statement scoped by (id, owner); a 404 means no row matched.
func (h *Handler) handleEditSubscription(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateSubscription(r.Context(), owner, body)
	if err != nil {
		h.respondWithServiceError(w, "update subscription", err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// handleDeleteSubscription handles DELETE /subscription/delete.
func (h *Handler) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		respondWithError(w, http.StatusBadRequest, "ID is required")
		return
	}
	id, err := uuid.Parse(body.ID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	if err := h.service.DeleteSubscription(r.Context(), owner, id); err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found or you do not have access to it.")
			return
		}
		h.respondWithServiceError(w, "delete subscription", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Subscription deleted successfully"})
}

// handleListSubscriptions handles GET /subscriptions.
func (h *Handler) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	subs, err := h.service.ListSubscriptions(r.Context(), owner)
	if err != nil {
		h.respondWithServiceError(w, "list subscriptions", err)
		return
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}

	respondWithJSON(w, http.StatusOK, subs)
}

// handleSubscriptionDetail handles GET /subscription/{id}: the record plus
// its next projected payment dates.
func (h *Handler) handleSubscriptionDetail(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	detail, err := h.service.SubscriptionDetail(r.Context(), owner, id)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		h.respondWithServiceError(w, "subscription detail", err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

// handleDashboard handles GET /dashboard.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := h.service.Dashboard(r.Context(), owner)
	if err != nil {
		h.respondWithServiceError(w, "dashboard", err)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// handleGetSettings handles GET /settings.
func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), owner)
	if err != nil {
		h.respondWithServiceError(w, "get settings", err)
		return
	}

	respondWithJSON(w, http.StatusOK, prefs)
}

// handleSaveSettings handles PUT /settings.
func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var prefs domain.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := h.service.SavePreferences(r.Context(), owner, prefs)
	if err != nil {
		h.respondWithServiceError(w, "save settings", err)
		return
	}

	respondWithJSON(w, http.StatusOK, saved)
}

// respondWithServiceError maps service-layer errors onto HTTP responses.
// Validation failures carry their own message; anything else is logged and
// reported as a generic 500 so internal detail never leaks to the caller.
func (h *Handler) respondWithServiceError(w http.ResponseWriter, operation string, err error) {
	var fieldErr *domain.FieldError
	if errors.As(err, &fieldErr) {
		respondWithError(w, http.StatusBadRequest, fieldErr.Message)
		return
	}
	if errors.Is(err, store.ErrSubscriptionNotFound) {
		respondWithError(w, http.StatusNotFound, "Subscription not found")
		return
	}
	h.logger.Error("request failed", "operation", operation, "error", err)
	respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
}

// respondWithError writes a structured JSON error body.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
