package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"doctor-booking-server/internal/admin"
	"doctor-booking-server/internal/catalog"
	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/slots"
	"doctor-booking-server/internal/utils"
)

// DoctorHandler serves the doctor catalog and doctor onboarding.
type DoctorHandler struct {
	Catalog  *catalog.Catalog
	Profiles *admin.Profiles
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(c *catalog.Catalog, profiles *admin.Profiles) *DoctorHandler {
	return &DoctorHandler{Catalog: c, Profiles: profiles}
}

// GetDoctors lists doctors filtered by search and specialty.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.Catalog.Doctors(c.Request.Context(), catalog.Query{
		Search:    c.Query("search"),
		Specialty: c.Query("specialty"),
		SortBy:    c.Query("sort"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) GetSpecialties(c *gin.Context) {
	utils.Success(c, "Specialties retrieved successfully", catalog.Specialties())
}

func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	d, err := h.Catalog.Doctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Doctor retrieved successfully", d)
}

// SlotsResponse lists bookable dates and the free slots of one day.
type SlotsResponse struct {
	Dates []string          `json:"dates"`
	Date  string            `json:"date,omitempty"`
	Slots []models.TimeSlot `json:"slots"`
}

// GetDoctorSlots returns the free slots on ?date=YYYY-MM-DD, or every slot
// of the window when no date is given.
func (h *DoctorHandler) GetDoctorSlots(c *gin.Context) {
	d, err := h.Catalog.Doctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := SlotsResponse{Dates: slots.Dates(d.AvailableSlots), Slots: d.AvailableSlots}
	if date := c.Query("date"); date != "" {
		day, err := time.Parse(slots.DateLayout, date)
		if err != nil {
			utils.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		resp.Date = date
		resp.Slots = slots.Available(d.AvailableSlots, day)
	}
	utils.Success(c, "Slots retrieved successfully", resp)
}

// OnboardingRequest is a doctor's application to join.
type OnboardingRequest struct {
	Name            string   `json:"name" binding:"required"`
	Email           string   `json:"email" binding:"required,email"`
	Mobile          string   `json:"mobile"`
	Specialty       string   `json:"specialty" binding:"required"`
	Experience      int      `json:"experience" binding:"gte=0,lte=70"`
	Qualifications  []string `json:"qualifications" binding:"required,min=1"`
	RegistrationNo  string   `json:"registrationNumber" binding:"required"`
	ConsultationFee int64    `json:"consultationFee" binding:"gte=0"`
}

// SubmitOnboarding records a doctor profile for admin review.
func (h *DoctorHandler) SubmitOnboarding(c *gin.Context) {
	var req OnboardingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, err := h.Profiles.Submit(c.Request.Context(), models.DoctorProfile{
		Name:            req.Name,
		Email:           req.Email,
		Mobile:          req.Mobile,
		Specialty:       req.Specialty,
		Experience:      req.Experience,
		Qualifications:  req.Qualifications,
		RegistrationNo:  req.RegistrationNo,
		ConsultationFee: req.ConsultationFee,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Profile submitted for review", profile)
}
