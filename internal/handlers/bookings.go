package handlers

import (
	"github.com/gin-gonic/gin"

	"doctor-booking-server/internal/booking"
	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/payment"
	"doctor-booking-server/internal/utils"
)

// BookingHandler drives booking flows, quotes and payment methods.
type BookingHandler struct {
	Booking  *booking.Service
	Payments payment.Provider
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(b *booking.Service, p payment.Provider) *BookingHandler {
	return &BookingHandler{Booking: b, Payments: p}
}

type StartFlowRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
}

type SelectTypeRequest struct {
	ConsultationType models.ConsultationType `json:"consultationType" binding:"required,oneof=in-person video chat audio"`
}

type SelectSlotRequest struct {
	SlotID string `json:"slotId" binding:"required"`
}

type CheckoutRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

type QuoteRequest struct {
	DoctorID         string                  `json:"doctorId" binding:"required"`
	ConsultationType models.ConsultationType `json:"consultationType" binding:"required,oneof=in-person video chat audio"`
	Insured          bool                    `json:"insured"`
}

// StartFlow opens a booking flow with a doctor.
func (h *BookingHandler) StartFlow(c *gin.Context) {
	var req StartFlowRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	f, err := h.Booking.Start(c.Request.Context(), user, req.DoctorID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Booking started", f)
}

func (h *BookingHandler) GetFlow(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	f, err := h.Booking.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Booking retrieved successfully", f)
}

func (h *BookingHandler) SelectType(c *gin.Context) {
	var req SelectTypeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	h.respondFlow(c, "Consultation type selected")(h.Booking.SelectType(c.Request.Context(), user, c.Param("id"), req.ConsultationType))
}

func (h *BookingHandler) SelectSlot(c *gin.Context) {
	var req SelectSlotRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	h.respondFlow(c, "Slot selected")(h.Booking.SelectSlot(c.Request.Context(), user, c.Param("id"), req.SlotID))
}

func (h *BookingHandler) SetInsurance(c *gin.Context) {
	var req booking.Insurance
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	h.respondFlow(c, "Insurance details saved")(h.Booking.SetInsurance(c.Request.Context(), user, c.Param("id"), req))
}

func (h *BookingHandler) Next(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	h.respondFlow(c, "Moved to next step")(h.Booking.Next(c.Request.Context(), user, c.Param("id")))
}

func (h *BookingHandler) Back(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	h.respondFlow(c, "Moved to previous step")(h.Booking.Back(c.Request.Context(), user, c.Param("id")))
}

// Checkout pays for the flow and books its slot.
func (h *BookingHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if c.Request.ContentLength > 0 && !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	receipt, err := h.Booking.Checkout(c.Request.Context(), user, c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Appointment booked successfully!", receipt)
}

// DiscardFlow closes a flow without booking.
func (h *BookingHandler) DiscardFlow(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Booking.Discard(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Booking discarded", nil)
}

// Quote prices a consultation without opening a flow.
func (h *BookingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	q, err := h.Booking.Quote(c.Request.Context(), user, req.DoctorID, req.ConsultationType, req.Insured)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Quote calculated", q)
}

// GetPaymentMethods lists the user's saved payment methods.
func (h *BookingHandler) GetPaymentMethods(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	methods, err := h.Payments.Methods(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Payment methods retrieved successfully", methods)
}

func (h *BookingHandler) respondFlow(c *gin.Context, message string) func(*booking.Flow, error) {
	return func(f *booking.Flow, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		utils.Success(c, message, f)
	}
}
