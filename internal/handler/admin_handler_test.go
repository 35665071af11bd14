package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/db"
)

func setupAdminEngine(t *testing.T) *gin.Engine {
	t.Helper()
	api := setupTestDB(t)

	if err := db.EnsureUser("admin", "secret"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/admin/api/login", api.Login)
	r.POST("/admin/api/logout", api.Logout)

	auth := r.Group("/admin/api")
	auth.Use(AuthRequired())
	auth.GET("/me", api.CurrentUser)
	auth.GET("/dashboard", api.ShowDashboard)
	auth.GET("/users", api.ListUsers)
	auth.POST("/users", api.CreateUser)
	auth.PUT("/users/:id", api.UpdateUser)
	auth.DELETE("/users/:id", api.DeleteUser)
	auth.GET("/settings", api.GetSystemSettings)
	auth.PUT("/settings", api.UpdateSystemSettings)
	auth.GET("/tracker-purchases", api.ListTrackerPurchases)
	auth.POST("/tracker-purchases", api.CreateTrackerPurchase)
	return r
}

func loginCookies(t *testing.T, r *gin.Engine) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/admin/api/login", map[string]any{"username": "admin", "password": "secret"}))
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r := setupAdminEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/admin/api/login", map[string]any{"username": "admin", "password": "nope"}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestAuthRequiredBlocksAnonymous(t *testing.T) {
	r := setupAdminEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/dashboard", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestLoginSessionUnlocksDashboard(t *testing.T) {
	r := setupAdminEngine(t)
	cookies := loginCookies(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/admin/api/me", nil), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected status 200, got %d", w.Code)
	}
	if got := decodeBody(t, w)["username"]; got != "admin" {
		t.Fatalf("expected username admin, got %v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/admin/api/dashboard", nil), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: expected status 200, got %d", w.Code)
	}
	if users := decodeBody(t, w)["users"].(float64); users != 1 {
		t.Fatalf("expected 1 user, got %v", users)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodPost, "/admin/api/logout", nil), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected status 200, got %d", w.Code)
	}
	cleared := w.Result().Cookies()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/admin/api/dashboard", nil), cleared))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 after logout, got %d", w.Code)
	}
}

func TestUserHandlersLifecycle(t *testing.T) {
	r := setupAdminEngine(t)
	cookies := loginCookies(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(jsonRequest(t, http.MethodPost, "/admin/api/users", map[string]any{
		"username": "staff1",
		"password": "pw",
		"fullName": "Staff One",
	}), cookies))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)["user"].(map[string]any)
	if _, leaked := created["password"]; leaked {
		t.Fatalf("password must not be exposed")
	}
	id := strconv.Itoa(int(created["id"].(float64)))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(jsonRequest(t, http.MethodPost, "/admin/api/users", map[string]any{"username": "staff1", "password": "pw"}), cookies))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected status 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(jsonRequest(t, http.MethodPut, "/admin/api/users/"+id, map[string]any{"username": "staff1", "role": "admin"}), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodDelete, "/admin/api/users/"+id, nil), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected status 200, got %d", w.Code)
	}
}

func TestSystemSettingsHandlers(t *testing.T) {
	r := setupAdminEngine(t)
	cookies := loginCookies(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(jsonRequest(t, http.MethodPut, "/admin/api/settings", map[string]any{"supportEmail": "bad"}), cookies))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid email, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(jsonRequest(t, http.MethodPut, "/admin/api/settings", map[string]any{
		"siteName": "City Wheels",
		"currency": "eur",
	}), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/admin/api/settings", nil), cookies))
	settings := decodeBody(t, w)["settings"].(map[string]any)
	if settings["siteName"] != "City Wheels" || settings["currency"] != "EUR" {
		t.Fatalf("unexpected settings: %v", settings)
	}
}

func TestTrackerPurchaseHandlers(t *testing.T) {
	r := setupAdminEngine(t)
	cookies := loginCookies(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(jsonRequest(t, http.MethodPost, "/admin/api/tracker-purchases", map[string]any{
		"deviceModel": "GT06N",
		"quantity":    3,
		"unitPrice":   1000,
		"purchasedAt": "2026-02-01",
	}), cookies))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	purchase := decodeBody(t, w)["purchase"].(map[string]any)
	if purchase["totalAmount"].(float64) != 3000 || purchase["purchasedAt"] != "2026-02-01" {
		t.Fatalf("unexpected purchase: %v", purchase)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/admin/api/tracker-purchases?status=ordered", nil), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected status 200, got %d", w.Code)
	}
	if spend := decodeBody(t, w)["totalSpend"].(float64); spend != 3000 {
		t.Fatalf("expected spend 3000, got %v", spend)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/admin/api/tracker-purchases?status=lost", nil), cookies))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown status, got %d", w.Code)
	}
}
