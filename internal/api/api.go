// Package api exposes the engine to the device UI layer over a local
// HTTP surface. This is the engine's own boundary, not the remote
// ingestion service (which this subsystem only consumes).
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/safetrail/engine/internal/alert"
	"github.com/safetrail/engine/internal/geo"
	"github.com/safetrail/engine/internal/monitor"
	"github.com/safetrail/engine/internal/storage"
)

// PanicSender is the awaited panic-alert path.
type PanicSender interface {
	SendPanic(ctx context.Context, loc *alert.Location, message string) error
}

// Handler routes UI requests to the engine.
type Handler struct {
	supervisor *monitor.Supervisor
	fences     storage.GeofenceStore
	panic      PanicSender
	logger     *slog.Logger
}

// NewHandler creates the control API handler.
func NewHandler(supervisor *monitor.Supervisor, fences storage.GeofenceStore, panicSender PanicSender, logger *slog.Logger) *Handler {
	return &Handler{
		supervisor: supervisor,
		fences:     fences,
		panic:      panicSender,
		logger:     logger,
	}
}

// Router builds the mux router for the control surface.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/status", h.getStatus).Methods(http.MethodGet)
	api.HandleFunc("/monitoring/start", h.startMonitoring).Methods(http.MethodPost)
	api.HandleFunc("/monitoring/stop", h.stopMonitoring).Methods(http.MethodPost)
	api.HandleFunc("/alerts", h.listAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts", h.clearAlerts).Methods(http.MethodDelete)
	api.HandleFunc("/geofences", h.listGeofences).Methods(http.MethodGet)
	api.HandleFunc("/geofences", h.addGeofence).Methods(http.MethodPost)
	api.HandleFunc("/geofences/{id}", h.removeGeofence).Methods(http.MethodDelete)
	api.HandleFunc("/route", h.setRoute).Methods(http.MethodPut)
	api.HandleFunc("/panic", h.sendPanic).Methods(http.MethodPost)

	return router
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.supervisor.Status())
}

func (h *Handler) startMonitoring(w http.ResponseWriter, r *http.Request) {
	if err := h.supervisor.Start(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, h.supervisor.Status())
}

func (h *Handler) stopMonitoring(w http.ResponseWriter, r *http.Request) {
	h.supervisor.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.supervisor.RecentAlerts()
	if err != nil {
		h.logger.Error("failed to read alert history", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handler) clearAlerts(w http.ResponseWriter, r *http.Request) {
	if err := h.supervisor.ClearAlerts(); err != nil {
		h.logger.Error("failed to clear alert history", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGeofences(w http.ResponseWriter, r *http.Request) {
	fences, err := h.fences.List()
	if err != nil {
		h.logger.Error("failed to list geofences", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if fences == nil {
		fences = []storage.Geofence{}
	}
	writeJSON(w, http.StatusOK, fences)
}

func (h *Handler) addGeofence(w http.ResponseWriter, r *http.Request) {
	var def storage.GeofenceDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid geofence payload"))
		return
	}

	fence, err := h.fences.Add(def)
	if err != nil {
		if errors.Is(err, storage.ErrValidation) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		h.logger.Error("failed to add geofence", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, fence)
}

func (h *Handler) removeGeofence(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.fences.Remove(id); err != nil {
		h.logger.Error("failed to remove geofence", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setRoute(w http.ResponseWriter, r *http.Request) {
	var waypoints []geo.Point
	if err := json.NewDecoder(r.Body).Decode(&waypoints); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid route payload"))
		return
	}
	h.supervisor.SetExpectedRoute(waypoints)
	w.WriteHeader(http.StatusNoContent)
}

type panicRequest struct {
	Message  string          `json:"message"`
	Location *alert.Location `json:"location,omitempty"`
}

func (h *Handler) sendPanic(w http.ResponseWriter, r *http.Request) {
	var req panicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid panic payload"))
		return
	}
	if req.Message == "" {
		req.Message = "Emergency! Panic button pressed"
	}

	// The one path where the caller must see the delivery outcome
	if err := h.panic.SendPanic(r.Context(), req.Location, req.Message); err != nil {
		h.logger.Error("panic alert delivery failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
