// internal/booking/handler.go
package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the booking endpoints. Caller identity arrives in the
// X-User-ID header and is trusted as-is; authentication is out of scope.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/bookings", h.HandleCreate)
	r.Get("/bookings", h.HandleList)
	r.Get("/bookings/{bookingID}", h.HandleGet)
	r.Delete("/bookings/{bookingID}", h.HandleCancel)
	r.Get("/available-vehicles", h.HandleAvailability)
	return r
}

func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner := callerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req struct {
		VehicleID      string `json:"vehicle_id"`
		BookingDate    string `json:"booking_date"`
		StartTime      string `json:"start_time"`
		EndTime        string `json:"end_time"`
		PickupLocation string `json:"pickup_location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.CreateBooking(r.Context(), CreateBookingInput{
		OwnerID:        owner,
		VehicleID:      req.VehicleID,
		Window:         TimeWindow{Date: req.BookingDate, Start: req.StartTime, End: req.EndTime},
		PickupLocation: req.PickupLocation,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	owner := callerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	res, err := h.service.CancelBooking(r.Context(), id, owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	owner := callerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	res, err := h.service.GetBooking(r.Context(), id, owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner := callerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	filter := ListFilter{
		Status: Status(r.URL.Query().Get("status")),
		Date:   r.URL.Query().Get("date"),
	}

	bookings, err := h.service.ListBookings(r.Context(), owner, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window := TimeWindow{
		Date:  q.Get("date"),
		Start: q.Get("start_time"),
		End:   q.Get("end_time"),
	}

	vehicles, err := h.service.AvailableVehicles(r.Context(), window, q.Get("type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available_vehicles": vehicles,
		"count":              len(vehicles),
	})
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses. A
// failed conditional write arrives here as a ConflictError like any other
// conflict; nothing maps to an unknown failure unless it really is one.
func writeServiceError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	var conflict *ConflictError

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":               conflict.Error(),
			"conflicting_booking": conflict.Reference,
		})
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAlreadyFinal), errors.Is(err, ErrWindowElapsed):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
