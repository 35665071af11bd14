package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/logger"
	"github.com/wheelhub/internal/service"
)

const healthPingTimeout = 2 * time.Second

// HealthCheck pings the database within healthPingTimeout and reports the driver in use.
func (a *API) HealthCheck(c *gin.Context) {
	driver := a.db.Dialector.Name()

	sqlDB, err := a.db.DB()
	if err != nil {
		logger.Error(err, "health check: database handle", nil)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "unavailable", "driver": driver})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Warn("health check: database unreachable", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "down", "driver": driver})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up", "driver": driver})
}

type systemSettingsRequest struct {
	SiteName     string `json:"siteName"`
	SupportEmail string `json:"supportEmail"`
	SupportPhone string `json:"supportPhone"`
	Currency     string `json:"currency"`
}

// GetSiteInfo 前台读取站点名称与客服信息。
func (a *API) GetSiteInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"site": a.sitePayload(c)})
}

// GetSystemSettings 返回当前系统设置。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		respondInternal(c, err, "获取系统设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": systemSettingsPayload(settings)})
}

// UpdateSystemSettings 保存系统设置。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var payload systemSettingsRequest
	if !bindJSON(c, &payload, "请填写完整的系统设置") {
		return
	}

	settings, err := a.system.UpdateSettings(payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSettingsEmailInvalid):
			respondError(c, http.StatusBadRequest, "客服邮箱格式不正确")
		case errors.Is(err, service.ErrSettingsCurrencyInvalid):
			respondError(c, http.StatusBadRequest, "无法识别的货币代码")
		default:
			respondInternal(c, err, "保存系统设置失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "系统设置已保存",
		"settings": systemSettingsPayload(settings),
	})
}

func (r systemSettingsRequest) toInput() service.SystemSettingsInput {
	return service.SystemSettingsInput{
		SiteName:     r.SiteName,
		SupportEmail: r.SupportEmail,
		SupportPhone: r.SupportPhone,
		Currency:     r.Currency,
	}
}

func systemSettingsPayload(settings service.SystemSettings) gin.H {
	return gin.H{
		"siteName":     settings.SiteName,
		"supportEmail": settings.SupportEmail,
		"supportPhone": settings.SupportPhone,
		"currency":     settings.Currency,
	}
}
