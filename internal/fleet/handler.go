// internal/fleet/handler.go
package fleet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the fleet endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/vehicles", h.HandleAdd)
	r.Get("/vehicles", h.HandleList)
	r.Get("/vehicles/{vehicleID}", h.HandleGet)
	r.Put("/vehicles/{vehicleID}", h.HandleUpdate)
	r.Delete("/vehicles/{vehicleID}", h.HandleRemove)
	return r
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type               string   `json:"type"`
		Model              string   `json:"model"`
		HourlyRate         int64    `json:"hourly_rate_cents"`
		BatteryLife        string   `json:"battery_life"`
		Features           []string `json:"features"`
		AccessCodeTemplate string   `json:"access_code_template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.service.AddVehicle(r.Context(), AddVehicleInput{
		Type:               req.Type,
		Model:              req.Model,
		HourlyRate:         req.HourlyRate,
		BatteryLife:        req.BatteryLife,
		Features:           req.Features,
		AccessCodeTemplate: req.AccessCodeTemplate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetVehicle(r.Context(), chi.URLParam(r, "vehicleID"))
	if err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.service.ListVehicles(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model       *string  `json:"model"`
		HourlyRate  *int64   `json:"hourly_rate_cents"`
		BatteryLife *string  `json:"battery_life"`
		Features    []string `json:"features"`
		Status      *string  `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.service.UpdateVehicle(r.Context(), chi.URLParam(r, "vehicleID"), UpdateVehicleInput{
		Model:       req.Model,
		HourlyRate:  req.HourlyRate,
		BatteryLife: req.BatteryLife,
		Features:    req.Features,
		Status:      req.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// writeServiceError distinguishes caller mistakes from infrastructure
// failures so a storage outage never reads as a bad request.
func writeServiceError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveVehicle(r.Context(), chi.URLParam(r, "vehicleID")); err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
