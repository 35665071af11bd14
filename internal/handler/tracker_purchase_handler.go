package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/db"
	"github.com/wheelhub/internal/service"
)

type trackerPurchaseRequest struct {
	DeviceModel string `json:"deviceModel" binding:"required"`
	Supplier    string `json:"supplier"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Status      string `json:"status"`
	VehicleID   *uint  `json:"vehicleId"`
	PurchasedAt string `json:"purchasedAt"`
	Note        string `json:"note"`
}

func trackerPurchasePayload(p db.TrackerPurchase) gin.H {
	payload := gin.H{
		"id":          p.ID,
		"deviceModel": p.DeviceModel,
		"supplier":    p.Supplier,
		"quantity":    p.Quantity,
		"unitPrice":   p.UnitPrice,
		"totalAmount": p.TotalAmount,
		"status":      p.Status,
		"vehicleId":   p.VehicleID,
		"purchasedAt": p.PurchasedAt.UTC().Format(dateLayout),
		"note":        p.Note,
	}
	if p.Vehicle != nil {
		payload["vehicle"] = gin.H{"id": p.Vehicle.ID, "title": p.Vehicle.Title, "slug": p.Vehicle.Slug}
	}
	return payload
}

func respondTrackerError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTrackerPurchaseNotFound):
		respondError(c, http.StatusNotFound, "采购记录不存在")
	case errors.Is(err, service.ErrTrackerPurchaseInvalid):
		respondError(c, http.StatusBadRequest, "请填写设备型号、数量与单价")
	case errors.Is(err, service.ErrTrackerStatusInvalid):
		respondError(c, http.StatusBadRequest, "无效的采购状态")
	case errors.Is(err, service.ErrVehicleNotFound):
		respondError(c, http.StatusBadRequest, "关联车辆不存在")
	default:
		respondInternal(c, err, fallback)
	}
}

func (r trackerPurchaseRequest) toInput() (service.TrackerPurchaseInput, error) {
	input := service.TrackerPurchaseInput{
		DeviceModel: r.DeviceModel,
		Supplier:    r.Supplier,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		Status:      r.Status,
		VehicleID:   r.VehicleID,
		Note:        r.Note,
	}
	if strings.TrimSpace(r.PurchasedAt) != "" {
		purchasedAt, err := parseDate(r.PurchasedAt)
		if err != nil {
			return input, err
		}
		input.PurchasedAt = purchasedAt
	}
	return input, nil
}

// ListTrackerPurchases 获取定位设备采购列表
func (a *API) ListTrackerPurchases(c *gin.Context) {
	purchases, err := a.trackers.List(c.Query("status"))
	if err != nil {
		respondTrackerError(c, err, "获取采购列表失败")
		return
	}

	response := make([]gin.H, 0, len(purchases))
	var spend int64
	for _, purchase := range purchases {
		response = append(response, trackerPurchasePayload(purchase))
		if purchase.Status != db.TrackerStatusCancelled {
			spend += purchase.TotalAmount
		}
	}
	c.JSON(http.StatusOK, gin.H{"purchases": response, "totalSpend": spend})
}

// CreateTrackerPurchase 新增采购记录
func (a *API) CreateTrackerPurchase(c *gin.Context) {
	var req trackerPurchaseRequest
	if !bindJSON(c, &req, "设备型号不能为空") {
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "采购日期无效")
		return
	}

	purchase, err := a.trackers.Create(input)
	if err != nil {
		respondTrackerError(c, err, "创建采购记录失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "采购记录已创建", "purchase": trackerPurchasePayload(*purchase)})
}

// UpdateTrackerPurchase 更新采购记录
func (a *API) UpdateTrackerPurchase(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的采购记录ID")
		return
	}

	var req trackerPurchaseRequest
	if !bindJSON(c, &req, "设备型号不能为空") {
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "采购日期无效")
		return
	}

	purchase, err := a.trackers.Update(id, input)
	if err != nil {
		respondTrackerError(c, err, "更新采购记录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "采购记录已更新", "purchase": trackerPurchasePayload(*purchase)})
}

// DeleteTrackerPurchase 删除采购记录
func (a *API) DeleteTrackerPurchase(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的采购记录ID")
		return
	}

	if err := a.trackers.Delete(id); err != nil {
		respondTrackerError(c, err, "删除采购记录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "采购记录已删除"})
}
