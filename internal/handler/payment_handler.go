package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/logger"
)

// bookingReference 优先读取 query 中的预订号，缺省时回退到会话。
func bookingReference(c *gin.Context) string {
	if ref := strings.TrimSpace(c.Query("reference")); ref != "" {
		return ref
	}
	session := sessions.Default(c)
	if ref, ok := session.Get(sessionBookingReferenceKey).(string); ok {
		return strings.TrimSpace(ref)
	}
	return ""
}

func clearBookingSession(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(sessionBookingReferenceKey)
	if err := session.Save(); err != nil {
		logger.Warn("clear booking session failed", map[string]interface{}{"error": err.Error()})
	}
}

// PaymentCheckout 展示待支付预订以及支付结果回调地址。
func (a *API) PaymentCheckout(c *gin.Context) {
	reference := bookingReference(c)
	if reference == "" {
		respondError(c, http.StatusBadRequest, "缺少预订号")
		return
	}

	booking, err := a.bookings.GetByReference(reference)
	if err != nil {
		respondBookingError(c, err, "获取预订失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking":    bookingPayload(*booking),
		"site":       a.sitePayload(c),
		"successUrl": "/payment/success?reference=" + booking.Reference,
		"cancelUrl":  "/payment/cancel?reference=" + booking.Reference,
	})
}

// PaymentSuccess 支付成功回调，将预订标记为已支付。
// 这里信任结账页的重定向，只凭预订号确认支付，不向支付服务商回查交易。
func (a *API) PaymentSuccess(c *gin.Context) {
	reference := bookingReference(c)
	if reference == "" {
		respondError(c, http.StatusBadRequest, "缺少预订号")
		return
	}

	paymentRef := strings.TrimSpace(c.Query("payment_ref"))
	booking, err := a.bookings.CompletePayment(reference, paymentRef)
	if err != nil {
		respondBookingError(c, err, "确认支付失败")
		return
	}

	clearBookingSession(c)
	logger.Info("booking paid", map[string]interface{}{"reference": booking.Reference, "paymentRef": booking.PaymentRef})

	c.JSON(http.StatusOK, gin.H{"message": "支付成功", "booking": bookingPayload(*booking)})
}

// PaymentCancel 支付取消回调，将待支付预订取消并释放车辆档期。
func (a *API) PaymentCancel(c *gin.Context) {
	reference := bookingReference(c)
	if reference == "" {
		respondError(c, http.StatusBadRequest, "缺少预订号")
		return
	}

	booking, err := a.bookings.CancelPayment(reference)
	if err != nil {
		respondBookingError(c, err, "取消支付失败")
		return
	}

	clearBookingSession(c)
	logger.Info("booking payment cancelled", map[string]interface{}{"reference": booking.Reference})

	c.JSON(http.StatusOK, gin.H{"message": "支付已取消", "booking": bookingPayload(*booking)})
}
