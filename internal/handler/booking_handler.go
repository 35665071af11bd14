package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/db"
	"github.com/wheelhub/internal/logger"
	"github.com/wheelhub/internal/service"
)

const sessionBookingReferenceKey = "booking_reference"

type bookingRequest struct {
	VehicleID     uint   `json:"vehicleId"`
	VehicleSlug   string `json:"vehicleSlug"`
	CustomerName  string `json:"customerName" binding:"required"`
	CustomerEmail string `json:"customerEmail" binding:"required"`
	CustomerPhone string `json:"customerPhone"`
	StartDate     string `json:"startDate" binding:"required"`
	EndDate       string `json:"endDate" binding:"required"`
}

type bookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func bookingPayload(b db.Booking) gin.H {
	payload := gin.H{
		"id":            b.ID,
		"reference":     b.Reference,
		"vehicleId":     b.VehicleID,
		"customerName":  b.CustomerName,
		"customerEmail": b.CustomerEmail,
		"customerPhone": b.CustomerPhone,
		"startDate":     b.StartDate.UTC().Format(time.RFC3339),
		"endDate":       b.EndDate.UTC().Format(time.RFC3339),
		"days":          b.Days,
		"totalAmount":   b.TotalAmount,
		"status":        b.Status,
		"paymentRef":    b.PaymentRef,
		"paidAt":        formatOptionalTime(b.PaidAt),
		"createdAt":     b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.Vehicle.ID != 0 {
		payload["vehicle"] = gin.H{
			"id":        b.Vehicle.ID,
			"title":     b.Vehicle.Title,
			"slug":      b.Vehicle.Slug,
			"dailyRate": b.Vehicle.DailyRate,
		}
	}
	return payload
}

func respondBookingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrBookingNotFound):
		respondError(c, http.StatusNotFound, "预订不存在")
	case errors.Is(err, service.ErrVehicleNotFound):
		respondError(c, http.StatusNotFound, "车辆不存在")
	case errors.Is(err, service.ErrBookingDatesInvalid):
		respondError(c, http.StatusBadRequest, "租车日期无效")
	case errors.Is(err, service.ErrBookingCustomerFields):
		respondError(c, http.StatusBadRequest, "请填写有效的姓名与邮箱")
	case errors.Is(err, service.ErrVehicleUnavailable):
		respondError(c, http.StatusConflict, "车辆暂不可租")
	case errors.Is(err, service.ErrBookingOverlap):
		respondError(c, http.StatusConflict, "所选日期车辆已被预订")
	case errors.Is(err, service.ErrBookingStateInvalid):
		respondError(c, http.StatusConflict, "预订状态不允许该操作")
	case errors.Is(err, service.ErrBookingStatusInvalid):
		respondError(c, http.StatusBadRequest, "无效的预订状态")
	default:
		respondInternal(c, err, fallback)
	}
}

// CreateBooking 前台提交预订，预订号写入会话并返回支付跳转地址。
func (a *API) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if !bindJSON(c, &req, "请填写完整的预订信息") {
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "租车日期无效")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "租车日期无效")
		return
	}

	booking, err := a.bookings.Create(service.BookingInput{
		VehicleID:     req.VehicleID,
		VehicleSlug:   req.VehicleSlug,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		respondBookingError(c, err, "创建预订失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionBookingReferenceKey, booking.Reference)
	if err := session.Save(); err != nil {
		// 会话失败不影响预订，支付回调仍可通过 query 传入预订号
		logger.Warn("save booking session failed", map[string]interface{}{"reference": booking.Reference, "error": err.Error()})
	}

	logger.Info("booking created", map[string]interface{}{
		"reference": booking.Reference,
		"vehicle":   booking.VehicleID,
		"total":     booking.TotalAmount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":     "预订已创建",
		"booking":     bookingPayload(*booking),
		"checkoutUrl": a.checkoutLink(booking.Reference),
	})
}

// GetBookingByReference 前台按预订号查询
func (a *API) GetBookingByReference(c *gin.Context) {
	booking, err := a.bookings.GetByReference(c.Param("reference"))
	if err != nil {
		respondBookingError(c, err, "获取预订失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": bookingPayload(*booking)})
}

// AdminListBookings 后台预订列表
func (a *API) AdminListBookings(c *gin.Context) {
	var vehicleID uint
	if raw := strings.TrimSpace(c.Query("vehicleId")); raw != "" {
		vehicleID = uint(queryInt(c, "vehicleId"))
	}

	result, err := a.bookings.List(service.BookingFilter{
		Status:    c.Query("status"),
		VehicleID: vehicleID,
		Page:      queryInt(c, "page"),
		PerPage:   queryInt(c, "perPage"),
	})
	if err != nil {
		respondInternal(c, err, "获取预订列表失败")
		return
	}

	items := make([]gin.H, 0, len(result.Items))
	for _, booking := range result.Items {
		items = append(items, bookingPayload(booking))
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings":   items,
		"total":      result.Total,
		"page":       result.Page,
		"perPage":    result.PerPage,
		"totalPages": result.TotalPages,
	})
}

// GetBooking 后台预订详情
func (a *API) GetBooking(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的预订ID")
		return
	}

	booking, err := a.bookings.Get(id)
	if err != nil {
		respondBookingError(c, err, "获取预订失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": bookingPayload(*booking)})
}

// UpdateBookingStatus 后台修改预订状态
func (a *API) UpdateBookingStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的预订ID")
		return
	}

	var req bookingStatusRequest
	if !bindJSON(c, &req, "请选择预订状态") {
		return
	}

	booking, err := a.bookings.UpdateStatus(id, req.Status)
	if err != nil {
		respondBookingError(c, err, "更新预订状态失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "预订状态已更新", "booking": bookingPayload(*booking)})
}

// DeleteBooking 后台删除预订
func (a *API) DeleteBooking(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的预订ID")
		return
	}

	if err := a.bookings.Delete(id); err != nil {
		respondBookingError(c, err, "删除预订失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "预订删除成功"})
}

func (a *API) checkoutLink(reference string) string {
	separator := "?"
	if strings.Contains(a.checkoutURL, "?") {
		separator = "&"
	}
	return a.checkoutURL + separator + "reference=" + url.QueryEscape(reference)
}
