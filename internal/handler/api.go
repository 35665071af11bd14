package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	vehicleTypes *service.VehicleTypeService
	vehicles     *service.VehicleService
	bookings     *service.BookingService
	users        *service.UserService
	trackers     *service.TrackerPurchaseService
	dashboard    *service.DashboardService
	system       *service.SystemSettingService
	checkoutURL  string
}

type siteViewModel struct {
	Name         string
	SupportEmail string
	SupportPhone string
	Currency     string
}

const siteSettingsContextKey = "__site_settings"

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, checkoutURL string) *API {
	checkout := strings.TrimSpace(checkoutURL)
	if checkout == "" {
		checkout = "/payment/checkout"
	}

	return &API{
		db:           db,
		vehicleTypes: service.NewVehicleTypeService(db),
		vehicles:     service.NewVehicleService(db),
		bookings:     service.NewBookingService(db),
		users:        service.NewUserService(db),
		trackers:     service.NewTrackerPurchaseService(db),
		dashboard:    service.NewDashboardService(db),
		system:       service.NewSystemSettingService(db),
		checkoutURL:  checkout,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Bookings exposes the booking service, mainly so tests can pin its clock.
func (a *API) Bookings() *service.BookingService {
	return a.bookings
}

func (a *API) siteSettings(c *gin.Context) siteViewModel {
	if cached, exists := c.Get(siteSettingsContextKey); exists {
		if view, ok := cached.(siteViewModel); ok {
			return view
		}
	}

	settings, err := a.system.GetSettings()
	if err != nil {
		c.Error(err)
	}

	view := siteViewModel{
		Name:         strings.TrimSpace(settings.SiteName),
		SupportEmail: strings.TrimSpace(settings.SupportEmail),
		SupportPhone: strings.TrimSpace(settings.SupportPhone),
		Currency:     strings.TrimSpace(settings.Currency),
	}
	if view.Name == "" {
		view.Name = "WheelHub"
	}
	if view.Currency == "" {
		view.Currency = "USD"
	}

	c.Set(siteSettingsContextKey, view)
	return view
}

// sitePayload 为前台接口附带站点名称与联系方式。
func (a *API) sitePayload(c *gin.Context) gin.H {
	view := a.siteSettings(c)
	return gin.H{
		"name":         view.Name,
		"supportEmail": view.SupportEmail,
		"supportPhone": view.SupportPhone,
		"currency":     view.Currency,
	}
}
