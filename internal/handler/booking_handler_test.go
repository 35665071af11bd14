package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/db"
)

func setupBookingEngine(t *testing.T) (*gin.Engine, *db.Vehicle) {
	t.Helper()
	api := setupTestDB(t)
	api.Bookings().SetClock(func() time.Time {
		return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	})

	vt := db.VehicleType{Title: "SUV"}
	if err := db.DB.Create(&vt).Error; err != nil {
		t.Fatalf("failed to seed vehicle type: %v", err)
	}
	vehicle := db.Vehicle{Title: "Ford Explorer", VehicleTypeID: vt.ID, Seats: 7, DailyRate: 8000, Available: true, Description: "**Roomy**"}
	if err := db.DB.Omit("VehicleType").Create(&vehicle).Error; err != nil {
		t.Fatalf("failed to seed vehicle: %v", err)
	}

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.GET("/api/vehicles/:slug", api.GetVehicleBySlug)
	r.POST("/api/bookings", api.CreateBooking)
	r.GET("/payment/checkout", api.PaymentCheckout)
	r.GET("/payment/success", api.PaymentSuccess)
	r.GET("/payment/cancel", api.PaymentCancel)
	return r, &vehicle
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

func TestGetVehicleBySlugRendersDescription(t *testing.T) {
	r, vehicle := setupBookingEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vehicles/"+vehicle.Slug, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	got := decodeBody(t, w)["vehicle"].(map[string]any)
	if got["slug"] != "ford-explorer" {
		t.Fatalf("unexpected slug %v", got["slug"])
	}
	if html, _ := got["descriptionHtml"].(string); !strings.Contains(html, "<strong>Roomy</strong>") {
		t.Fatalf("expected rendered description, got %q", html)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vehicles/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestBookingPaymentSuccessUsesSession(t *testing.T) {
	r, vehicle := setupBookingEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/bookings", map[string]any{
		"vehicleSlug":   vehicle.Slug,
		"customerName":  "Ana Souza",
		"customerEmail": "ana@example.com",
		"startDate":     "2026-03-02",
		"endDate":       "2026-03-05",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	booking := body["booking"].(map[string]any)
	reference := booking["reference"].(string)
	if booking["totalAmount"].(float64) != 24000 {
		t.Fatalf("expected total 24000, got %v", booking["totalAmount"])
	}
	if checkout := body["checkoutUrl"].(string); checkout != "/payment/checkout?reference="+reference {
		t.Fatalf("unexpected checkout url %q", checkout)
	}
	cookies := w.Result().Cookies()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/payment/checkout", nil), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/payment/success?payment_ref=pay_1", nil), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("success: expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	paid := decodeBody(t, w)["booking"].(map[string]any)
	if paid["status"] != db.BookingStatusPaid || paid["reference"] != reference {
		t.Fatalf("unexpected paid booking: %v", paid)
	}

	// the success callback clears the session, so a bare retry has no reference
	cleared := w.Result().Cookies()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/payment/success", nil), cleared))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without reference, got %d", w.Code)
	}

	// replaying with the reference is idempotent
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/success?reference="+reference+"&payment_ref=pay_1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected idempotent success, got %d", w.Code)
	}
}

func TestBookingPaymentCancelReleasesDates(t *testing.T) {
	r, vehicle := setupBookingEngine(t)

	request := map[string]any{
		"vehicleId":     vehicle.ID,
		"customerName":  "Ana Souza",
		"customerEmail": "ana@example.com",
		"startDate":     "2026-03-02",
		"endDate":       "2026-03-04",
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/bookings", request))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	reference := decodeBody(t, w)["booking"].(map[string]any)["reference"].(string)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/bookings", request))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected overlap conflict, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/cancel?reference="+reference, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/bookings", request))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected booking after cancel, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateBookingValidation(t *testing.T) {
	r, vehicle := setupBookingEngine(t)

	cases := []struct {
		name    string
		payload map[string]any
		status  int
	}{
		{"missing fields", map[string]any{"vehicleId": vehicle.ID}, http.StatusBadRequest},
		{"bad date", map[string]any{"vehicleId": vehicle.ID, "customerName": "A", "customerEmail": "a@example.com", "startDate": "tomorrow", "endDate": "2026-03-04"}, http.StatusBadRequest},
		{"reversed", map[string]any{"vehicleId": vehicle.ID, "customerName": "A", "customerEmail": "a@example.com", "startDate": "2026-03-04", "endDate": "2026-03-02"}, http.StatusBadRequest},
		{"unknown vehicle", map[string]any{"vehicleSlug": "nope", "customerName": "A", "customerEmail": "a@example.com", "startDate": "2026-03-02", "endDate": "2026-03-04"}, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/bookings", tc.payload))
			if w.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}
}
