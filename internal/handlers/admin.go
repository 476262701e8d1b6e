package handlers

import (
	"github.com/gin-gonic/gin"

	"doctor-booking-server/internal/admin"
	"doctor-booking-server/internal/utils"
)

// AdminHandler handles the doctor profile review console.
type AdminHandler struct {
	Profiles *admin.Profiles
}

func NewAdminHandler(p *admin.Profiles) *AdminHandler {
	return &AdminHandler{Profiles: p}
}

// GetProfiles lists profiles by ?status=all|pending|approved|rejected,
// ?search= and ?specialty=.
func (h *AdminHandler) GetProfiles(c *gin.Context) {
	list, err := h.Profiles.List(c.Request.Context(), admin.Filter{
		Status:    c.DefaultQuery("status", admin.StatusAll),
		Search:    c.Query("search"),
		Specialty: c.Query("specialty"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Doctor profiles retrieved successfully", list)
}

func (h *AdminHandler) GetProfile(c *gin.Context) {
	p, err := h.Profiles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Doctor profile retrieved successfully", p)
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	utils.Success(c, "Stats retrieved successfully", h.Profiles.Stats(c.Request.Context()))
}

func (h *AdminHandler) ApproveProfile(c *gin.Context) {
	p, err := h.Profiles.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Doctor profile approved", p)
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *AdminHandler) RejectProfile(c *gin.Context) {
	var req RejectRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	p, err := h.Profiles.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Doctor profile rejected", p)
}
