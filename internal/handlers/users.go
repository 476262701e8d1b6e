package handlers

import (
	"github.com/gin-gonic/gin"

	"doctor-booking-server/internal/catalog"
	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/utils"
)

// UserHandler handles the signed-in user's favorite doctors.
type UserHandler struct {
	Catalog *catalog.Catalog
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(c *catalog.Catalog) *UserHandler {
	return &UserHandler{Catalog: c}
}

// GetFavorites lists the doctors the user liked, in the order they were
// liked. Doctors no longer in the catalog are skipped.
func (h *UserHandler) GetFavorites(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	doctors := make([]models.Doctor, 0, len(user.Favorites))
	for _, id := range user.Favorites {
		d, err := h.Catalog.Doctor(c.Request.Context(), id)
		if err != nil {
			continue
		}
		doctors = append(doctors, *d)
	}
	utils.Success(c, "Favorites retrieved successfully", doctors)
}

// ToggleFavorite likes or unlikes a doctor.
func (h *UserHandler) ToggleFavorite(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	doctorID := c.Param("doctorId")
	if _, err := h.Catalog.Doctor(c.Request.Context(), doctorID); err != nil {
		respondError(c, err)
		return
	}

	liked, err := s.ToggleFavorite(c.Request.Context(), doctorID)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Removed from favorites"
	if liked {
		message = "Added to favorites"
	}
	utils.Success(c, message, gin.H{"doctorId": doctorID, "liked": liked})
}
