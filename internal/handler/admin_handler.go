package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/logger"
	"github.com/wheelhub/internal/service"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
	sessionRoleKey     = "role"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验账号密码并写入会话
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "请输入用户名和密码") {
		return
	}

	user, err := a.users.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserInvalidPassword) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		respondInternal(c, err, "登录失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	session.Set(sessionRoleKey, user.Role)
	if err := session.Save(); err != nil {
		respondInternal(c, err, "会话保存失败")
		return
	}

	logger.Info("admin login", map[string]interface{}{"username": user.Username})
	c.JSON(http.StatusOK, gin.H{"message": "登录成功", "user": userPayload(*user)})
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logger.Warn("clear admin session failed", map[string]interface{}{"error": err.Error()})
	}
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// CurrentUser 返回当前会话的账号信息
func (a *API) CurrentUser(c *gin.Context) {
	session := sessions.Default(c)
	c.JSON(http.StatusOK, gin.H{
		"userId":   session.Get(sessionUserIDKey),
		"username": session.Get(sessionUsernameKey),
		"role":     session.Get(sessionRoleKey),
	})
}

// ShowDashboard 返回后台概览统计
func (a *API) ShowDashboard(c *gin.Context) {
	summary, err := a.dashboard.Summary()
	if err != nil {
		respondInternal(c, err, "获取概览数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicleTypes":      summary.VehicleTypes,
		"vehicles":          summary.Vehicles,
		"availableVehicles": summary.AvailableVehicles,
		"bookings":          summary.Bookings,
		"bookingsByStatus":  summary.BookingsByStatus,
		"users":             summary.Users,
		"trackerPurchases":  summary.TrackerPurchases,
		"trackerSpend":      summary.TrackerSpend,
		"paidRevenue":       summary.PaidRevenue,
		"site":              a.sitePayload(c),
	})
}

// AuthRequired 是一个简单的会话认证中间件
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}
