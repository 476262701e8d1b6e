package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/config"
	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/otp"
	"doctor-booking-server/internal/session"
	"doctor-booking-server/internal/utils"
)

// AuthHandler handles sign-in, profile and admin login requests.
type AuthHandler struct {
	Sessions *session.Manager
	OTP      otp.Sender
	Cfg      *config.Config
	Logger   *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *session.Manager, sender otp.Sender, cfg *config.Config, logger *logrus.Logger) *AuthHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthHandler{Sessions: sessions, OTP: sender, Cfg: cfg, Logger: logger}
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents the request body for user registration.
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// SessionResponse is returned by every sign-in endpoint.
type SessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

// Login handles user login. Any email and password is accepted.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	s, err := h.Sessions.Start()
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := s.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.WithField("user_id", user.ID).Info("user logged in")
	utils.Success(c, "Login successful", SessionResponse{Token: s.Token, User: user})
}

// Signup handles user registration.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	s, err := h.Sessions.Start()
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := s.SignUp(c.Request.Context(), req.Name, req.Email, req.Mobile, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.WithField("user_id", user.ID).Info("user signed up")
	utils.Created(c, "User registered successfully", SessionResponse{Token: s.Token, User: user})
}

// SendOTPRequest asks for a one-time code on a mobile number.
type SendOTPRequest struct {
	Mobile string `json:"mobile" binding:"required"`
}

// VerifyOTPRequest checks a one-time code.
type VerifyOTPRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	sent, err := h.OTP.Send(c.Request.Context(), req.Mobile)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "OTP sent", gin.H{"sent": sent})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ok, err := h.OTP.Verify(c.Request.Context(), req.Mobile, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		utils.BadRequest(c, "Invalid OTP")
		return
	}
	utils.Success(c, "OTP verified", gin.H{"verified": true})
}

// Logout clears the signed-in user from the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	if err := s.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Logged out successfully", nil)
}

// GetProfile returns the signed-in user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	utils.Success(c, "Profile retrieved successfully", user)
}

// UpdateProfileRequest represents the request body for a profile update.
type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Mobile *string `json:"mobile"`
	Avatar *string `json:"avatar" binding:"omitempty,url"`
}

// UpdateProfile merges the given fields into the stored profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	s, ok := requireSession(c)
	if !ok {
		return
	}

	user, err := s.UpdateUser(c.Request.Context(), models.UserPatch{
		Name:   req.Name,
		Email:  req.Email,
		Mobile: req.Mobile,
		Avatar: req.Avatar,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Profile updated successfully", user)
}

// AdminLoginRequest represents the admin console credentials.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin opens an admin session when the credentials match.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	s, err := h.Sessions.Start()
	if err != nil {
		respondError(c, err)
		return
	}
	err = session.AdminLogin(c.Request.Context(), s, h.Cfg.Admin.Username, h.Cfg.Admin.PasswordHash, req.Username, req.Password)
	if err != nil {
		h.Logger.WithField("username", req.Username).Warn("admin login rejected")
		respondError(c, err)
		return
	}

	utils.Success(c, "Admin login successful", SessionResponse{Token: s.Token})
}

// AdminLogout closes the admin gate of the session.
func (h *AuthHandler) AdminLogout(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	if err := s.RevokeAdmin(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Logged out successfully", nil)
}
