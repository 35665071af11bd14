package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func createUserViaHandler(t *testing.T, api *API, payload map[string]any) map[string]any {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/admin/api/users", payload)

	api.CreateUser(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	user, ok := decodeBody(t, w)["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user payload, got %s", w.Body.String())
	}
	return user
}

func TestCreateUserDefaultsToStaffAndHidesPassword(t *testing.T) {
	api := setupTestDB(t)

	user := createUserViaHandler(t, api, map[string]any{
		"username": "desk",
		"fullName": "Front Desk",
		"password": "secret",
	})

	if user["role"] != "staff" {
		t.Fatalf("expected staff role, got %v", user["role"])
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password must not be part of the payload")
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	api := setupTestDB(t)
	createUserViaHandler(t, api, map[string]any{"username": "desk", "password": "secret"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/admin/api/users", map[string]any{"username": "desk", "password": "other"})

	api.CreateUser(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteLastAdminIsRejected(t *testing.T) {
	api := setupTestDB(t)
	admin := createUserViaHandler(t, api, map[string]any{"username": "root", "password": "secret", "role": "admin"})
	id := fmt.Sprintf("%v", admin["id"])

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/admin/api/users/"+id, nil)
	c.Params = gin.Params{{Key: "id", Value: id}}

	api.DeleteUser(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	api := setupTestDB(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/admin/api/users/99", map[string]any{"username": "ghost"})
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	api.UpdateUser(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
