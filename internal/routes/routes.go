package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/admin"
	"doctor-booking-server/internal/appointments"
	"doctor-booking-server/internal/booking"
	"doctor-booking-server/internal/catalog"
	"doctor-booking-server/internal/chat"
	"doctor-booking-server/internal/config"
	"doctor-booking-server/internal/handlers"
	"doctor-booking-server/internal/middleware"
	"doctor-booking-server/internal/notify"
	"doctor-booking-server/internal/otp"
	"doctor-booking-server/internal/payment"
	"doctor-booking-server/internal/session"
)

// Services holds everything the HTTP layer talks to.
type Services struct {
	Sessions     *session.Manager
	Catalog      *catalog.Catalog
	Appointments *appointments.Service
	Booking      *booking.Service
	Payments     payment.Provider
	OTP          otp.Sender
	Chat         *chat.Service
	Hub          *chat.Hub
	Notifier     *notify.Notifier
	Profiles     *admin.Profiles
	RateLimiter  *middleware.RateLimiter
	Gatherer     prometheus.Gatherer
	Logger       *logrus.Logger
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, svc Services, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(svc.Sessions, svc.OTP, cfg, svc.Logger)
	userHandler := handlers.NewUserHandler(svc.Catalog)
	doctorHandler := handlers.NewDoctorHandler(svc.Catalog, svc.Profiles)
	appointmentHandler := handlers.NewAppointmentHandler(svc.Appointments, svc.Catalog)
	bookingHandler := handlers.NewBookingHandler(svc.Booking, svc.Payments)
	messageHandler := handlers.NewMessageHandler(svc.Chat, svc.Hub, svc.Logger)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifier)
	adminHandler := handlers.NewAdminHandler(svc.Profiles)

	limited := func(c *gin.Context) { c.Next() }
	if svc.RateLimiter != nil {
		limited = middleware.RateLimit(svc.RateLimiter)
	}

	// Public routes (no session required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(limited)
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/otp/send", authHandler.SendOTP)
			authRoutes.POST("/otp/verify", authHandler.VerifyOTP)
		}
		public.POST("/admin/login", limited, authHandler.AdminLogin)

		doctorRoutes := public.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/specialties", doctorHandler.GetSpecialties)
			doctorRoutes.POST("/onboarding", doctorHandler.SubmitOnboarding)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)
			doctorRoutes.GET("/:id/slots", doctorHandler.GetDoctorSlots)
		}
	}

	// Any valid session token
	withSession := router.Group("/api/v1")
	withSession.Use(middleware.SessionMiddleware(svc.Sessions))
	{
		withSession.POST("/auth/logout", authHandler.Logout)
	}

	// Signed-in user routes
	private := withSession.Group("")
	private.Use(middleware.AuthMiddleware())
	{
		private.GET("/auth/profile", authHandler.GetProfile)
		private.PUT("/auth/profile", authHandler.UpdateProfile)

		private.GET("/favorites", userHandler.GetFavorites)
		private.POST("/favorites/:doctorId", userHandler.ToggleFavorite)

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		}

		flowRoutes := private.Group("/booking-flows")
		{
			flowRoutes.POST("", bookingHandler.StartFlow)
			flowRoutes.GET("/:id", bookingHandler.GetFlow)
			flowRoutes.PUT("/:id/type", bookingHandler.SelectType)
			flowRoutes.PUT("/:id/slot", bookingHandler.SelectSlot)
			flowRoutes.PUT("/:id/insurance", bookingHandler.SetInsurance)
			flowRoutes.POST("/:id/next", bookingHandler.Next)
			flowRoutes.POST("/:id/back", bookingHandler.Back)
			flowRoutes.POST("/:id/checkout", bookingHandler.Checkout)
			flowRoutes.DELETE("/:id", bookingHandler.DiscardFlow)
		}
		private.POST("/bookings/quote", bookingHandler.Quote)
		private.GET("/payments/methods", bookingHandler.GetPaymentMethods)

		chatRoutes := private.Group("/chats")
		{
			chatRoutes.POST("", messageHandler.StartChat)
			chatRoutes.GET("", messageHandler.GetConversations)
			chatRoutes.GET("/ws/:doctorId", messageHandler.Stream)
			chatRoutes.GET("/:doctorId/messages", messageHandler.GetMessages)
			chatRoutes.POST("/:doctorId/messages", messageHandler.SendMessage)
			chatRoutes.PATCH("/:doctorId/read", messageHandler.MarkAsRead)
			chatRoutes.DELETE("/:threadId", messageHandler.DeleteChat)
		}
		messageRoutes := private.Group("/messages")
		{
			messageRoutes.PATCH("/:id", messageHandler.EditMessage)
			messageRoutes.DELETE("/:id", messageHandler.DeleteMessage)
		}

		private.GET("/notifications", notificationHandler.GetNotifications)
		private.POST("/notifications/follow-ups", notificationHandler.ScheduleFollowUp)
	}

	// Admin console
	adminRoutes := withSession.Group("/admin")
	adminRoutes.Use(middleware.AdminMiddleware())
	{
		adminRoutes.POST("/logout", authHandler.AdminLogout)
		adminRoutes.GET("/stats", adminHandler.GetStats)
		adminRoutes.GET("/doctor-profiles", adminHandler.GetProfiles)
		adminRoutes.GET("/doctor-profiles/:id", adminHandler.GetProfile)
		adminRoutes.POST("/doctor-profiles/:id/approve", adminHandler.ApproveProfile)
		adminRoutes.POST("/doctor-profiles/:id/reject", adminHandler.RejectProfile)
		adminRoutes.POST("/chats/:threadId/replies", messageHandler.Reply)
	}

	gatherer := svc.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
