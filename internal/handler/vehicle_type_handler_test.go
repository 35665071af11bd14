package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Setup(gdb, 100); err != nil {
		t.Fatalf("failed to set up test database: %v", err)
	}

	db.DB = gdb
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
		db.DB = nil
	})

	return NewAPI(gdb, "/payment/checkout")
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func TestCreateVehicleTypeAssignsSlug(t *testing.T) {
	api := setupTestDB(t)

	slugs := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = jsonRequest(t, http.MethodPost, "/admin/api/vehicle-types", map[string]any{"title": "Toyota Camry"})

		api.CreateVehicleType(c)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		vt := decodeBody(t, w)["vehicleType"].(map[string]any)
		slugs = append(slugs, vt["slug"].(string))
	}

	if slugs[0] != "toyota-camry" || slugs[1] != "toyota-camry-1" {
		t.Fatalf("unexpected slugs: %v", slugs)
	}
}

func TestCreateVehicleTypeRejectsDegenerateTitle(t *testing.T) {
	api := setupTestDB(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/admin/api/vehicle-types", map[string]any{"title": "!!!"})

	api.CreateVehicleType(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUpdateVehicleTypeKeepsSlugForSameTitle(t *testing.T) {
	api := setupTestDB(t)

	vt := db.VehicleType{Title: "Pickup Truck"}
	if err := db.DB.Create(&vt).Error; err != nil {
		t.Fatalf("failed to seed vehicle type: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/admin/api/vehicle-types/"+strconv.Itoa(int(vt.ID)), map[string]any{
		"title":       "Pickup Truck",
		"description": "Heavy duty",
	})
	c.Params = gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(vt.ID))}}

	api.UpdateVehicleType(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decodeBody(t, w)["vehicleType"].(map[string]any)
	if got["slug"] != "pickup-truck" {
		t.Fatalf("expected slug pickup-truck, got %v", got["slug"])
	}
}

func TestDeleteVehicleTypeBlockedWhenInUse(t *testing.T) {
	api := setupTestDB(t)

	vt := db.VehicleType{Title: "Sedan"}
	if err := db.DB.Create(&vt).Error; err != nil {
		t.Fatalf("failed to seed vehicle type: %v", err)
	}
	vehicle := db.Vehicle{Title: "Toyota Camry", VehicleTypeID: vt.ID, Seats: 5, DailyRate: 5000, Available: true}
	if err := db.DB.Omit("VehicleType").Create(&vehicle).Error; err != nil {
		t.Fatalf("failed to seed vehicle: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/admin/api/vehicle-types/"+strconv.Itoa(int(vt.ID)), nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(vt.ID))}}

	api.DeleteVehicleType(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestGetVehicleTypeInvalidID(t *testing.T) {
	api := setupTestDB(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/api/vehicle-types/abc", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "abc"}}

	api.GetVehicleType(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
