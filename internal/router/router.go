package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/config"
	"github.com/wheelhub/internal/handler"
	"github.com/wheelhub/internal/logger"
	"github.com/wheelhub/internal/metrics"
	"gorm.io/gorm"
)

const sessionName = "wheelhub_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, gdb *gorm.DB) *gin.Engine {
	api := handler.NewAPI(gdb, cfg.PaymentCheckoutURL)
	return setupRouter(cfg, api)
}

func setupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinLogger())
	r.Use(metrics.Middleware())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", api.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	limited := rateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitBurst)

	// 前台接口
	public := r.Group("/api")
	{
		public.GET("/site", api.GetSiteInfo)
		public.GET("/vehicle-types", api.ListVehicleTypes)
		public.GET("/vehicle-types/:slug", api.GetVehicleTypeBySlug)
		public.GET("/vehicles", api.ListVehicles)
		public.GET("/vehicles/:slug", api.GetVehicleBySlug)
		public.POST("/bookings", limited, api.CreateBooking)
		public.GET("/bookings/:reference", api.GetBookingByReference)
	}

	payment := r.Group("/payment")
	{
		payment.GET("/checkout", api.PaymentCheckout)
		payment.GET("/success", api.PaymentSuccess)
		payment.GET("/cancel", api.PaymentCancel)
	}

	// 后台管理路由
	admin := r.Group("/admin/api")
	{
		admin.POST("/login", limited, api.Login)
		admin.POST("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/me", api.CurrentUser)
			auth.GET("/dashboard", api.ShowDashboard)

			auth.GET("/vehicle-types", api.AdminListVehicleTypes)
			auth.GET("/vehicle-types/:id", api.GetVehicleType)
			auth.POST("/vehicle-types", api.CreateVehicleType)
			auth.PUT("/vehicle-types/:id", api.UpdateVehicleType)
			auth.DELETE("/vehicle-types/:id", api.DeleteVehicleType)
			auth.POST("/vehicle-types/reorder", api.ReorderVehicleTypes)

			auth.GET("/vehicles", api.AdminListVehicles)
			auth.GET("/vehicles/:id", api.GetVehicle)
			auth.POST("/vehicles", api.CreateVehicle)
			auth.PUT("/vehicles/:id", api.UpdateVehicle)
			auth.DELETE("/vehicles/:id", api.DeleteVehicle)

			auth.GET("/bookings", api.AdminListBookings)
			auth.GET("/bookings/:id", api.GetBooking)
			auth.PUT("/bookings/:id/status", api.UpdateBookingStatus)
			auth.DELETE("/bookings/:id", api.DeleteBooking)

			auth.GET("/users", api.ListUsers)
			auth.POST("/users", api.CreateUser)
			auth.PUT("/users/:id", api.UpdateUser)
			auth.DELETE("/users/:id", api.DeleteUser)

			auth.GET("/tracker-purchases", api.ListTrackerPurchases)
			auth.POST("/tracker-purchases", api.CreateTrackerPurchase)
			auth.PUT("/tracker-purchases/:id", api.UpdateTrackerPurchase)
			auth.DELETE("/tracker-purchases/:id", api.DeleteTrackerPurchase)

			auth.GET("/settings", api.GetSystemSettings)
			auth.PUT("/settings", api.UpdateSystemSettings)
		}
	}

	return r
}
