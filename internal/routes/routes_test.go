package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"doctor-booking-server/internal/admin"
	"doctor-booking-server/internal/appointments"
	"doctor-booking-server/internal/booking"
	"doctor-booking-server/internal/catalog"
	"doctor-booking-server/internal/chat"
	"doctor-booking-server/internal/config"
	"doctor-booking-server/internal/metrics"
	"doctor-booking-server/internal/middleware"
	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/notify"
	"doctor-booking-server/internal/otp"
	"doctor-booking-server/internal/payment"
	"doctor-booking-server/internal/session"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		Origin: "http://localhost:5173",
		Admin:  config.AdminConfig{Username: "admin", PasswordHash: string(hash)},
		Booking: config.BookingConfig{
			DaysAhead: 3,
			Currency:  "INR",
		},
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	appts := appointments.NewService(appointments.NewMemoryStore(), nil, m)
	cat := catalog.New(time.Now(), cfg.Booking.DaysAhead, appts)
	payments := payment.NewMockProvider(0, nil)
	notifier := notify.NewNotifier(nil, nil)
	hub := chat.NewHub(nil, nil)

	router := gin.New()
	SetupRoutes(router, Services{
		Sessions:     session.NewManager(session.NewMemoryBackend(time.Hour), "test-secret", time.Hour),
		Catalog:      cat,
		Appointments: appts,
		Booking:      booking.NewService(booking.NewFlowStore(time.Hour), cat, appts, payments, notifier, "INR", nil, m),
		Payments:     payments,
		OTP:          otp.NewMockSender(0, nil),
		Chat:         chat.NewService(chat.NewMemoryRepository(), hub, nil, m),
		Hub:          hub,
		Notifier:     notifier,
		Profiles:     admin.NewProfiles(nil),
		RateLimiter:  limiter,
		Gatherer:     registry,
	}, cfg)
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "whatever"})
	require.Equal(s.t, http.StatusOK, code, env.Error)
	return decode[struct {
		Token string `json:"token"`
	}](s.t, env.Data).Token
}

func (s *testServer) firstFreeSlot(doctorID string) models.TimeSlot {
	s.t.Helper()
	code, env := s.do(http.MethodGet, "/api/v1/doctors/"+doctorID+"/slots", "", nil)
	require.Equal(s.t, http.StatusOK, code)
	resp := decode[struct {
		Slots []models.TimeSlot `json:"slots"`
	}](s.t, env.Data)
	for _, slot := range resp.Slots {
		if !slot.IsBooked {
			return slot
		}
	}
	s.t.Fatal("no free slot")
	return models.TimeSlot{}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginProfileLogout(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodGet, "/api/v1/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization header required", env.Error)

	token := s.login("john@example.com")
	code, env = s.do(http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	user := decode[models.User](t, env.Data)
	assert.Equal(t, "John Doe", user.Name)
	assert.Equal(t, session.UserIDFor("john@example.com"), user.ID)

	code, env = s.do(http.MethodPut, "/api/v1/auth/profile", token, gin.H{"name": "Johnny"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "Johnny", decode[models.User](t, env.Data).Name)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/v1/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/api/v1/auth/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLoginValidation(t *testing.T) {
	s := newTestServer(t, nil)
	code, env := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "Invalid request payload")
}

func TestOTP(t *testing.T) {
	s := newTestServer(t, nil)

	code, _ := s.do(http.MethodPost, "/api/v1/auth/otp/send", "", gin.H{"mobile": "+1234567890"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/otp/verify", "", gin.H{"mobile": "+1234567890", "code": "123"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/otp/verify", "", gin.H{"mobile": "+1234567890", "code": "123456"})
	assert.Equal(t, http.StatusOK, code)
}

func TestBookingFlowEndToEnd(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("john@example.com")
	slot := s.firstFreeSlot("1")

	code, env := s.do(http.MethodPost, "/api/v1/booking-flows", token, gin.H{"doctorId": "1"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	flow := decode[booking.Flow](t, env.Data)
	base := "/api/v1/booking-flows/" + flow.ID

	code, env = s.do(http.MethodPost, base+"/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, code, "checkout before payment step")

	code, _ = s.do(http.MethodPut, base+"/type", token, gin.H{"consultationType": "video"})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, base+"/next", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodPost, base+"/next", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, booking.ErrSlotRequired.Error(), env.Error)

	code, _ = s.do(http.MethodPut, base+"/slot", token, gin.H{"slotId": slot.ID})
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodPost, base+"/next", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, booking.StepPayment, decode[booking.Flow](t, env.Data).Step)

	code, env = s.do(http.MethodPost, base+"/checkout", token, gin.H{"notes": "headache"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	receipt := decode[booking.Receipt](t, env.Data)
	assert.Equal(t, int64(108000), receipt.Appointment.Fee)
	assert.Equal(t, slot.ID, receipt.Appointment.SlotID)

	code, env = s.do(http.MethodGet, "/api/v1/doctors/1", "", nil)
	require.Equal(t, http.StatusOK, code)
	doc := decode[models.Doctor](t, env.Data)
	for _, ds := range doc.AvailableSlots {
		if ds.ID == slot.ID {
			assert.True(t, ds.IsBooked)
		}
	}

	// a second patient cannot pick the taken slot
	other := s.login("jane@example.com")
	code, env = s.do(http.MethodPost, "/api/v1/booking-flows", other, gin.H{"doctorId": "1"})
	require.Equal(t, http.StatusCreated, code)
	otherFlow := "/api/v1/booking-flows/" + decode[booking.Flow](t, env.Data).ID
	code, _ = s.do(http.MethodPost, otherFlow+"/next", other, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPut, otherFlow+"/slot", other, gin.H{"slotId": slot.ID})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodGet, base, other, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodGet, "/api/v1/appointments", token, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[[]models.Appointment](t, env.Data)
	require.Len(t, list, 1)

	apptPath := "/api/v1/appointments/" + list[0].ID
	code, _ = s.do(http.MethodPatch, apptPath+"/cancel", other, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPatch, apptPath+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPatch, apptPath+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.Notification](t, env.Data), 1)
}

func TestQuoteAndPaymentMethods(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("john@example.com")

	code, env := s.do(http.MethodPost, "/api/v1/bookings/quote", token, gin.H{"doctorId": "1", "consultationType": "video"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, int64(108000), decode[booking.Quote](t, env.Data).Fee)
	assert.Contains(t, string(env.Data), `"feeMinor":108000`)
	assert.Contains(t, string(env.Data), `"baseFee":1500`)

	code, _ = s.do(http.MethodPost, "/api/v1/bookings/quote", token, gin.H{"doctorId": "1", "consultationType": "house-call"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, "/api/v1/payments/methods", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.PaymentMethod](t, env.Data), 3)
}

func TestChatEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("john@example.com")
	userID := session.UserIDFor("john@example.com")

	code, env := s.do(http.MethodPost, "/api/v1/chats", token, gin.H{"doctorId": "1"})
	require.Equal(t, http.StatusOK, code)
	threadID := decode[struct {
		ThreadID string `json:"threadId"`
	}](t, env.Data).ThreadID
	assert.Equal(t, userID+"-1", threadID)

	code, env = s.do(http.MethodPost, "/api/v1/chats/1/messages", token, gin.H{"content": "Hello doctor"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	msg := decode[models.Message](t, env.Data)

	code, env = s.do(http.MethodPatch, "/api/v1/messages/"+msg.ID, token, gin.H{"content": "Hello, doctor"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[models.Message](t, env.Data).Edited)

	code, env = s.do(http.MethodGet, "/api/v1/chats", token, nil)
	require.Equal(t, http.StatusOK, code)
	threads := decode[[]models.ChatThread](t, env.Data)
	require.Len(t, threads, 1)
	assert.Equal(t, "Hello, doctor", threads[0].LastMessage.Content)

	other := s.login("jane@example.com")
	code, _ = s.do(http.MethodDelete, "/api/v1/messages/"+msg.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodDelete, "/api/v1/chats/"+threadID, other, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/messages/"+msg.ID, token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, "/api/v1/chats/"+threadID, token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/v1/chats/1/messages", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]models.Message](t, env.Data))
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("john@example.com")

	code, env := s.do(http.MethodPost, "/api/v1/favorites/2", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Added to favorites", env.Message)

	code, env = s.do(http.MethodGet, "/api/v1/favorites", token, nil)
	require.Equal(t, http.StatusOK, code)
	doctors := decode[[]models.Doctor](t, env.Data)
	require.Len(t, doctors, 1)
	assert.Equal(t, "2", doctors[0].ID)

	code, env = s.do(http.MethodPost, "/api/v1/favorites/2", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Removed from favorites", env.Message)

	code, _ = s.do(http.MethodPost, "/api/v1/favorites/404", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDoctorListingAndSlots(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodGet, "/api/v1/doctors?specialty=Dermatologist", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.Doctor](t, env.Data), 2)

	code, env = s.do(http.MethodGet, "/api/v1/doctors/specialties", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]string](t, env.Data), 10)

	today := time.Now().Format("2006-01-02")
	code, env = s.do(http.MethodGet, "/api/v1/doctors/1/slots?date="+today, "", nil)
	require.Equal(t, http.StatusOK, code)
	resp := decode[struct {
		Dates []string          `json:"dates"`
		Slots []models.TimeSlot `json:"slots"`
	}](t, env.Data)
	assert.Len(t, resp.Dates, 3)
	for _, slot := range resp.Slots {
		assert.Equal(t, today, slot.Date)
	}

	code, _ = s.do(http.MethodGet, "/api/v1/doctors/1/slots?date=tomorrow", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(http.MethodGet, "/api/v1/doctors/404", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminReview(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodPost, "/api/v1/doctors/onboarding", "", gin.H{
		"name":               "Dr. Rajesh Kumar",
		"email":              "rajesh@example.com",
		"specialty":          "Cardiologist",
		"experience":         10,
		"qualifications":     []string{"MBBS", "MD"},
		"registrationNumber": "MCI-12345",
		"consultationFee":    1500,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	profile := decode[models.DoctorProfile](t, env.Data)
	assert.Equal(t, models.ProfilePending, profile.Status)

	userToken := s.login("john@example.com")
	code, _ = s.do(http.MethodGet, "/api/v1/admin/doctor-profiles", userToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodPost, "/api/v1/admin/login", "", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodPost, "/api/v1/admin/login", "", gin.H{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, code)
	adminToken := decode[struct {
		Token string `json:"token"`
	}](t, env.Data).Token

	code, env = s.do(http.MethodGet, "/api/v1/admin/doctor-profiles?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.DoctorProfile](t, env.Data), 1)

	path := "/api/v1/admin/doctor-profiles/" + profile.ID
	code, _ = s.do(http.MethodPost, path+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, path+"/reject", adminToken, gin.H{"reason": "too late"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, admin.Stats{Total: 1, Approved: 1}, decode[admin.Stats](t, env.Data))

	code, _ = s.do(http.MethodPost, "/api/v1/admin/logout", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/v1/admin/doctor-profiles", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminRepliesToChat(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("john@example.com")
	threadID := session.UserIDFor("john@example.com") + "-1"

	code, env := s.do(http.MethodPost, "/api/v1/chats/1/messages", token, gin.H{"content": "Is fasting needed?"})
	require.Equal(t, http.StatusCreated, code, env.Error)

	replyPath := "/api/v1/admin/chats/" + threadID + "/replies"
	code, _ = s.do(http.MethodPost, replyPath, token, gin.H{"content": "No"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodPost, "/api/v1/admin/login", "", gin.H{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, code)
	adminToken := decode[struct {
		Token string `json:"token"`
	}](t, env.Data).Token

	code, env = s.do(http.MethodPost, replyPath, adminToken, gin.H{"content": "No fasting needed"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	assert.Equal(t, "1", decode[models.Message](t, env.Data).SenderID)

	code, _ = s.do(http.MethodPost, "/api/v1/admin/chats/nobody-1/replies", adminToken, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodPatch, "/api/v1/chats/1/read", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, decode[struct {
		Updated int `json:"updated"`
	}](t, env.Data).Updated)
}

func TestLoginIsRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 1)
	defer limiter.Stop()
	s := newTestServer(t, limiter)

	s.login("john@example.com")
	code, env := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "john@example.com", "password": "x"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "too many requests", env.Error)
}
