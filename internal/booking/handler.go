package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/andesalud/citas-platform/internal/availability"
	"github.com/andesalud/citas-platform/pkg/logging"
)

// Handler exposes the booking flow over HTTP.
type Handler struct {
	facade *Facade
	logger *logging.Logger
}

func NewHandler(facade *Facade, logger *logging.Logger) *Handler {
	if facade == nil {
		panic("booking: facade required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{facade: facade, logger: logger}
}

// Register installs the booking endpoints on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/availability", h.findAvailability)
	r.Post("/appointments", h.reserve)
	r.Post("/payments", h.initiatePayment)
	r.Put("/payments/{token}", h.confirmPayment)
}

// Routes returns the booking endpoints as a standalone router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

type availabilityItem struct {
	ID       uuid.UUID `json:"id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

func (h *Handler) findAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := availability.Request{Specialty: q.Get("specialty")}

	var err error
	if req.RegionID, err = parseUUIDParam(q.Get("region_id")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid region_id")
		return
	}
	if req.CommuneID, err = parseUUIDParam(q.Get("commune_id")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid commune_id")
		return
	}
	if req.AreaID, err = parseUUIDParam(q.Get("area_id")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid area_id")
		return
	}
	if req.TimeOfDay, err = availability.ParseWindow(q.Get("time_of_day")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid time_of_day")
		return
	}

	open, err := h.facade.FindAvailability(r.Context(), req)
	if err != nil {
		h.writeFacadeError(w, r, err)
		return
	}
	if len(open) == 0 {
		writeError(w, http.StatusNotFound, "no slots available for the given filters")
		return
	}
	items := make([]availabilityItem, 0, len(open))
	for _, s := range open {
		items = append(items, availabilityItem{ID: s.ID, StartsAt: s.StartsAt, EndsAt: s.EndsAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": items})
}

type reserveRequest struct {
	SlotID    uuid.UUID `json:"slot_id"`
	PatientID uuid.UUID `json:"patient_id"`
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := h.facade.Reserve(r.Context(), req.SlotID, req.PatientID)
	if err != nil {
		h.writeFacadeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"appointment_id": appt.ID,
		"medic_id":       appt.MedicID,
		"slot_id":        appt.SlotID,
		"starts_at":      appt.StartsAt,
		"ends_at":        appt.EndsAt,
		"status":         appt.Status,
	})
}

type initiatePaymentRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Amount        int       `json:"amount"`
}

func (h *Handler) initiatePayment(w http.ResponseWriter, r *http.Request) {
	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	checkout, err := h.facade.InitiatePayment(r.Context(), req.AppointmentID, req.Amount)
	if err != nil {
		h.writeFacadeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment_id": checkout.Payment.ID,
		"token":      checkout.Payment.Token,
		"url":        checkout.URL,
	})
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	payment, err := h.facade.ConfirmPayment(r.Context(), token)
	if err != nil {
		h.writeFacadeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payment_id":     payment.ID,
		"appointment_id": payment.AppointmentID,
		"status":         payment.Status,
	})
}

func (h *Handler) writeFacadeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot is no longer available")
	case errors.Is(err, ErrUnknownToken):
		writeError(w, http.StatusNotFound, "unknown payment token")
	case errors.Is(err, ErrGatewayUnavailable):
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
	default:
		h.logger.Error("booking request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseUUIDParam(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
