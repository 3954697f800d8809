package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/szalonlabs/booking-api/internal/booking/service"
	"github.com/szalonlabs/booking-api/pkg/httpx"
	"github.com/szalonlabs/booking-api/pkg/slogx"
)

type AppointmentsHandler struct {
	Appointments *service.AppointmentService
}

type createAppointmentRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
}

// HandleCreate serves POST /appointments.
func (h *AppointmentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid_request", "Malformed JSON body.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeBadRequest(w, "invalid_request", "name is required")
		return
	}

	appt, err := h.Appointments.Book(r.Context(), actor, strings.TrimSpace(req.Name), req.StartTime)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("appointment booked",
		"appointment_id", appt.ID, "start_time", appt.StartTime)
	httpx.WriteJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

// HandleDelete serves DELETE /appointments/{id}.
func (h *AppointmentsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.Appointments.Cancel(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type publicSlot struct {
	StartTime time.Time `json:"start_time"`
}

// HandleListPublic serves GET /appointments/public: the busy instants and
// nothing else, so anyone can find a free slot without seeing who booked.
func (h *AppointmentsHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	times, err := h.Appointments.ListPublic(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slots := make([]publicSlot, 0, len(times))
	for _, t := range times {
		slots = append(slots, publicSlot{StartTime: t})
	}
	httpx.WriteJSON(w, http.StatusOK, slots)
}

// HandleListMine serves GET /appointments/me.
func (h *AppointmentsHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	appts, err := h.Appointments.ListOwn(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
