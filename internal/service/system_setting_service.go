package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/wheelhub/internal/db"
	"golang.org/x/text/currency"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultSiteName = "WheelHub"
	defaultCurrency = "USD"
)

// ErrSettingsEmailInvalid 表示客服邮箱格式不正确。
var ErrSettingsEmailInvalid = errors.New("support email is invalid")

// ErrSettingsCurrencyInvalid 表示货币代码不是可识别的 ISO 4217 代码。
var ErrSettingsCurrencyInvalid = errors.New("currency must be an ISO 4217 code")

// SystemSettings 描述店铺前台展示的站点信息。
type SystemSettings struct {
	SiteName     string
	SupportEmail string
	SupportPhone string
	Currency     string
}

// SystemSettingsInput 用于更新系统设置，字段与 SystemSettings 一致。
type SystemSettingsInput = SystemSettings

// SystemSettingService 提供系统设置的读取与更新能力。
type SystemSettingService struct {
	db *gorm.DB
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeySiteName,
	db.SettingKeySupportEmail,
	db.SettingKeySupportPhone,
	db.SettingKeyCurrency,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := SystemSettings{SiteName: defaultSiteName, Currency: defaultCurrency}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeySiteName:
			if strings.TrimSpace(record.Value) != "" {
				result.SiteName = record.Value
			}
		case db.SettingKeySupportEmail:
			result.SupportEmail = record.Value
		case db.SettingKeySupportPhone:
			result.SupportPhone = record.Value
		case db.SettingKeyCurrency:
			if code := normalizeCurrency(record.Value); code != "" {
				result.Currency = code
			}
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置，未填写站点名称或货币时回退默认值。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	sanitized := SystemSettings{
		SiteName:     strings.TrimSpace(input.SiteName),
		SupportEmail: strings.TrimSpace(input.SupportEmail),
		SupportPhone: strings.TrimSpace(input.SupportPhone),
		Currency:     defaultCurrency,
	}

	if sanitized.SiteName == "" {
		sanitized.SiteName = defaultSiteName
	}
	if sanitized.SupportEmail != "" {
		if _, err := mail.ParseAddress(sanitized.SupportEmail); err != nil {
			return SystemSettings{}, ErrSettingsEmailInvalid
		}
	}
	if raw := strings.TrimSpace(input.Currency); raw != "" {
		code := normalizeCurrency(raw)
		if code == "" {
			return SystemSettings{}, ErrSettingsCurrencyInvalid
		}
		sanitized.Currency = code
	}

	values := map[string]string{
		db.SettingKeySiteName:     sanitized.SiteName,
		db.SettingKeySupportEmail: sanitized.SupportEmail,
		db.SettingKeySupportPhone: sanitized.SupportPhone,
		db.SettingKeyCurrency:     sanitized.Currency,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			if err := upsertSetting(tx, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return sanitized, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// normalizeCurrency 返回规范的 ISO 4217 代码，无法识别时返回空串。
func normalizeCurrency(code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return ""
	}
	return unit.String()
}
