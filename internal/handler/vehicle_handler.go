package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/db"
	"github.com/wheelhub/internal/logger"
	"github.com/wheelhub/internal/service"
)

type vehicleRequest struct {
	Title         string `json:"title" binding:"required"`
	VehicleTypeID uint   `json:"vehicleTypeId"`
	Brand         string `json:"brand"`
	Seats         int    `json:"seats"`
	Transmission  string `json:"transmission"`
	DailyRate     int64  `json:"dailyRate"`
	Description   string `json:"description"`
	ImageURL      string `json:"imageUrl"`
	Available     *bool  `json:"available"`
}

func (r vehicleRequest) toInput() service.VehicleInput {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return service.VehicleInput{
		Title:         r.Title,
		VehicleTypeID: r.VehicleTypeID,
		Brand:         r.Brand,
		Seats:         r.Seats,
		Transmission:  r.Transmission,
		DailyRate:     r.DailyRate,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		Available:     available,
	}
}

func vehiclePayload(v db.Vehicle) gin.H {
	payload := gin.H{
		"id":            v.ID,
		"title":         v.Title,
		"slug":          v.Slug,
		"vehicleTypeId": v.VehicleTypeID,
		"brand":         v.Brand,
		"seats":         v.Seats,
		"transmission":  v.Transmission,
		"dailyRate":     v.DailyRate,
		"description":   v.Description,
		"summary":       service.Summarize(v.Description),
		"imageUrl":      v.ImageURL,
		"available":     v.Available,
	}
	if v.VehicleType.ID != 0 {
		payload["vehicleType"] = vehicleTypePayload(v.VehicleType)
	}
	return payload
}

func respondVehicleError(c *gin.Context, err error, fallback string) {
	if respondSlugError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrVehicleNotFound):
		respondError(c, http.StatusNotFound, "车辆不存在")
	case errors.Is(err, service.ErrVehicleTypeNotFound):
		respondError(c, http.StatusBadRequest, "车型不存在")
	case errors.Is(err, service.ErrVehicleTypeUnspecified):
		respondError(c, http.StatusBadRequest, "请选择车型")
	case errors.Is(err, service.ErrVehicleRateInvalid):
		respondError(c, http.StatusBadRequest, "日租金必须大于0")
	case errors.Is(err, service.ErrVehicleSeatsInvalid):
		respondError(c, http.StatusBadRequest, "座位数必须大于0")
	case errors.Is(err, service.ErrVehicleTransmission):
		respondError(c, http.StatusBadRequest, "无效的变速箱类型")
	case errors.Is(err, service.ErrVehicleHasBookings):
		respondError(c, http.StatusBadRequest, "车辆存在未完成的预订，无法删除")
	default:
		respondInternal(c, err, fallback)
	}
}

// ListVehicles 前台车辆列表，支持按车型 slug 过滤，仅展示可租车辆。
func (a *API) ListVehicles(c *gin.Context) {
	result, err := a.vehicles.List(service.VehicleFilter{
		TypeSlug:      c.Query("type"),
		AvailableOnly: true,
		Page:          queryInt(c, "page"),
		PerPage:       queryInt(c, "perPage"),
	})
	if err != nil {
		respondInternal(c, err, "获取车辆列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles":   vehicleListPayload(result.Items),
		"total":      result.Total,
		"page":       result.Page,
		"perPage":    result.PerPage,
		"totalPages": result.TotalPages,
		"site":       a.sitePayload(c),
	})
}

// GetVehicleBySlug 前台车辆详情，描述渲染为清洗后的 HTML。
func (a *API) GetVehicleBySlug(c *gin.Context) {
	vehicle, err := a.vehicles.GetBySlug(c.Param("slug"))
	if err != nil {
		respondVehicleError(c, err, "获取车辆失败")
		return
	}

	payload := vehiclePayload(*vehicle)
	html, err := service.RenderDescription(vehicle.Description)
	if err != nil {
		logger.Warn("render vehicle description failed", map[string]interface{}{"slug": vehicle.Slug, "error": err.Error()})
	}
	payload["descriptionHtml"] = html

	c.JSON(http.StatusOK, gin.H{"vehicle": payload, "site": a.sitePayload(c)})
}

// AdminListVehicles 后台车辆列表
func (a *API) AdminListVehicles(c *gin.Context) {
	result, err := a.vehicles.List(service.VehicleFilter{
		TypeSlug:      c.Query("type"),
		AvailableOnly: queryBool(c, "available"),
		Page:          queryInt(c, "page"),
		PerPage:       queryInt(c, "perPage"),
	})
	if err != nil {
		respondInternal(c, err, "获取车辆列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles":   vehicleListPayload(result.Items),
		"total":      result.Total,
		"page":       result.Page,
		"perPage":    result.PerPage,
		"totalPages": result.TotalPages,
	})
}

// GetVehicle 后台获取车辆
func (a *API) GetVehicle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的车辆ID")
		return
	}

	vehicle, err := a.vehicles.Get(id)
	if err != nil {
		respondVehicleError(c, err, "获取车辆失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehiclePayload(*vehicle)})
}

// CreateVehicle 创建车辆
func (a *API) CreateVehicle(c *gin.Context) {
	var req vehicleRequest
	if !bindJSON(c, &req, "车辆名称不能为空") {
		return
	}

	vehicle, err := a.vehicles.Create(req.toInput())
	if err != nil {
		respondVehicleError(c, err, "创建车辆失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "车辆创建成功", "vehicle": vehiclePayload(*vehicle)})
}

// UpdateVehicle 更新车辆
func (a *API) UpdateVehicle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的车辆ID")
		return
	}

	var req vehicleRequest
	if !bindJSON(c, &req, "车辆名称不能为空") {
		return
	}

	vehicle, err := a.vehicles.Update(id, req.toInput())
	if err != nil {
		respondVehicleError(c, err, "更新车辆失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "车辆更新成功", "vehicle": vehiclePayload(*vehicle)})
}

// DeleteVehicle 删除车辆
func (a *API) DeleteVehicle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的车辆ID")
		return
	}

	if err := a.vehicles.Delete(id); err != nil {
		respondVehicleError(c, err, "删除车辆失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "车辆删除成功"})
}

func vehicleListPayload(items []db.Vehicle) []gin.H {
	response := make([]gin.H, 0, len(items))
	for _, v := range items {
		response = append(response, vehiclePayload(v))
	}
	return response
}
