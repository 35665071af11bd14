package service

import (
	"errors"
	"testing"

	"github.com/wheelhub/internal/db"
)

func TestSystemSettingServiceDefaults(t *testing.T) {
	gdb := setupServiceTestDB(t)

	svc := NewSystemSettingService(gdb)
	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}

	if settings.SiteName != defaultSiteName {
		t.Fatalf("expected default site name %s, got %s", defaultSiteName, settings.SiteName)
	}
	if settings.Currency != defaultCurrency {
		t.Fatalf("expected default currency %s, got %s", defaultCurrency, settings.Currency)
	}
	if settings.SupportEmail != "" || settings.SupportPhone != "" {
		t.Fatalf("expected contact fields to be empty, got %#v", settings)
	}
}

func TestSystemSettingServiceUpdateAndReload(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSystemSettingService(gdb)

	updated, err := svc.UpdateSettings(SystemSettingsInput{
		SiteName:     "  City Wheels  ",
		SupportEmail: "help@citywheels.test",
		SupportPhone: " +1 555 0100 ",
		Currency:     "eur",
	})
	if err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	if updated.SiteName != "City Wheels" || updated.Currency != "EUR" || updated.SupportPhone != "+1 555 0100" {
		t.Fatalf("unexpected sanitized settings: %#v", updated)
	}

	// second update goes through the upsert path
	if _, err := svc.UpdateSettings(SystemSettingsInput{SiteName: "City Wheels", Currency: "GBP"}); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	reloaded, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if reloaded.Currency != "GBP" {
		t.Fatalf("expected currency GBP, got %s", reloaded.Currency)
	}
	if reloaded.SupportEmail != "" {
		t.Fatalf("expected support email cleared, got %q", reloaded.SupportEmail)
	}

	var count int64
	if err := gdb.Model(&db.SystemSetting{}).Count(&count).Error; err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if count != int64(len(settingKeys)) {
		t.Fatalf("expected %d setting rows, got %d", len(settingKeys), count)
	}
}

func TestSystemSettingServiceRejectsInvalidInput(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSystemSettingService(gdb)

	if _, err := svc.UpdateSettings(SystemSettingsInput{SupportEmail: "not-an-email"}); !errors.Is(err, ErrSettingsEmailInvalid) {
		t.Fatalf("expected ErrSettingsEmailInvalid, got %v", err)
	}
	if _, err := svc.UpdateSettings(SystemSettingsInput{Currency: "EURO"}); !errors.Is(err, ErrSettingsCurrencyInvalid) {
		t.Fatalf("expected ErrSettingsCurrencyInvalid, got %v", err)
	}
}

func TestSystemSettingServiceRejectsUnknownCurrency(t *testing.T) {
	svc := NewSystemSettingService(setupServiceTestDB(t))

	if _, err := svc.UpdateSettings(SystemSettingsInput{Currency: "ZZQ"}); !errors.Is(err, ErrSettingsCurrencyInvalid) {
		t.Fatalf("expected ErrSettingsCurrencyInvalid for unknown code, got %v", err)
	}
}
