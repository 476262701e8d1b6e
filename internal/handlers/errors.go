package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"doctor-booking-server/internal/admin"
	"doctor-booking-server/internal/appointments"
	"doctor-booking-server/internal/booking"
	"doctor-booking-server/internal/catalog"
	"doctor-booking-server/internal/chat"
	"doctor-booking-server/internal/middleware"
	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/payment"
	"doctor-booking-server/internal/session"
	"doctor-booking-server/internal/utils"
)

// respondError maps domain errors to the response envelope. Unknown errors
// are attached to the gin context for the request logger.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, chat.ErrNotAuthenticated),
		errors.Is(err, booking.ErrNotAuthenticated):
		utils.Unauthorized(c, "Please sign in to continue")

	case errors.Is(err, session.ErrInvalidAdminCredentials):
		utils.Unauthorized(c, "Invalid username or password")

	case errors.Is(err, catalog.ErrDoctorNotFound),
		errors.Is(err, catalog.ErrSlotNotFound),
		errors.Is(err, appointments.ErrNotFound),
		errors.Is(err, booking.ErrFlowNotFound),
		errors.Is(err, chat.ErrThreadNotFound),
		errors.Is(err, chat.ErrMessageNotFound),
		errors.Is(err, admin.ErrProfileNotFound):
		utils.NotFound(c, err.Error())

	case errors.Is(err, appointments.ErrNotOwner),
		errors.Is(err, chat.ErrNotParticipant),
		errors.Is(err, chat.ErrNotSender):
		utils.Forbidden(c, err.Error())

	case errors.Is(err, appointments.ErrSlotTaken),
		errors.Is(err, appointments.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrSlotBooked),
		errors.Is(err, admin.ErrAlreadyReviewed):
		utils.Conflict(c, err.Error())

	case errors.Is(err, booking.ErrSlotRequired),
		errors.Is(err, booking.ErrWrongStep),
		errors.Is(err, booking.ErrUnknownType),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, admin.ErrUnknownStatus),
		errors.Is(err, admin.ErrReasonRequired),
		errors.Is(err, payment.ErrInvalidAmount):
		utils.BadRequest(c, err.Error())

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		utils.Error(c, http.StatusRequestTimeout, "Request was cancelled")

	default:
		_ = c.Error(err)
		utils.InternalServerError(c, "Something went wrong. Please try again.")
	}
}

// requireUser returns the user set by the auth middleware or answers 401.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Please sign in to continue")
	}
	return user, ok
}

// requireSession returns the session set by the session middleware or
// answers 401.
func requireSession(c *gin.Context) (*session.Session, bool) {
	s, ok := middleware.GetSessionFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Please sign in to continue")
	}
	return s, ok
}
