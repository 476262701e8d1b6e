package handlers

import (
	"github.com/gin-gonic/gin"

	"doctor-booking-server/internal/appointments"
	"doctor-booking-server/internal/catalog"
	"doctor-booking-server/internal/utils"
)

// AppointmentHandler handles the user's booked appointments.
type AppointmentHandler struct {
	Appointments *appointments.Service
	Catalog      *catalog.Catalog
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(a *appointments.Service, c *catalog.Catalog) *AppointmentHandler {
	return &AppointmentHandler{Appointments: a, Catalog: c}
}

// GetAppointmentsForUser lists the user's appointments.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.Appointments.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointments retrieved successfully", list)
}

// CancelAppointment cancels one of the user's appointments and frees its slot.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	a, err := h.Appointments.Cancel(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointment cancelled successfully", a)
}

// RescheduleRequest represents the request body for rescheduling.
type RescheduleRequest struct {
	SlotID string `json:"slotId" binding:"required"`
}

// RescheduleAppointment moves an appointment to another slot of the same doctor.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	current, err := h.Appointments.Get(ctx, user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	slot, err := h.Catalog.Slot(ctx, current.DoctorID, req.SlotID)
	if err != nil {
		respondError(c, err)
		return
	}

	a, err := h.Appointments.Reschedule(ctx, user.ID, current.ID, slot)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointment rescheduled successfully", a)
}
