package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/db"
	"github.com/wheelhub/internal/service"
)

type vehicleTypeRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sortOrder"`
}

type reorderRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

func vehicleTypePayload(vt db.VehicleType) gin.H {
	return gin.H{
		"id":          vt.ID,
		"title":       vt.Title,
		"slug":        vt.Slug,
		"description": vt.Description,
		"sortOrder":   vt.SortOrder,
	}
}

// ListVehicleTypes 前台获取车型列表
func (a *API) ListVehicleTypes(c *gin.Context) {
	types, err := a.vehicleTypes.List()
	if err != nil {
		respondInternal(c, err, "获取车型列表失败")
		return
	}

	response := make([]gin.H, 0, len(types))
	for _, vt := range types {
		response = append(response, vehicleTypePayload(vt))
	}
	c.JSON(http.StatusOK, gin.H{"vehicleTypes": response, "site": a.sitePayload(c)})
}

// GetVehicleTypeBySlug 前台按 slug 获取车型
func (a *API) GetVehicleTypeBySlug(c *gin.Context) {
	vt, err := a.vehicleTypes.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrVehicleTypeNotFound) {
			respondError(c, http.StatusNotFound, "车型不存在")
			return
		}
		respondInternal(c, err, "获取车型失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicleType": vehicleTypePayload(*vt)})
}

// AdminListVehicleTypes 后台获取车型及车辆数量
func (a *API) AdminListVehicleTypes(c *gin.Context) {
	usages, err := a.vehicleTypes.ListWithUsage()
	if err != nil {
		respondInternal(c, err, "获取车型列表失败")
		return
	}

	response := make([]gin.H, 0, len(usages))
	for _, usage := range usages {
		item := vehicleTypePayload(usage.Type)
		item["vehicleCount"] = usage.VehicleCount
		response = append(response, item)
	}
	c.JSON(http.StatusOK, gin.H{"vehicleTypes": response})
}

// GetVehicleType 后台获取单个车型
func (a *API) GetVehicleType(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的车型ID")
		return
	}

	vt, err := a.vehicleTypes.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrVehicleTypeNotFound) {
			respondError(c, http.StatusNotFound, "车型不存在")
			return
		}
		respondInternal(c, err, "获取车型失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicleType": vehicleTypePayload(*vt)})
}

// CreateVehicleType 创建车型
func (a *API) CreateVehicleType(c *gin.Context) {
	var req vehicleTypeRequest
	if !bindJSON(c, &req, "车型名称不能为空") {
		return
	}

	vt, err := a.vehicleTypes.Create(service.VehicleTypeInput{
		Title:       req.Title,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		if respondSlugError(c, err) {
			return
		}
		respondInternal(c, err, "创建车型失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "车型创建成功", "vehicleType": vehicleTypePayload(*vt)})
}

// UpdateVehicleType 更新车型
func (a *API) UpdateVehicleType(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的车型ID")
		return
	}

	var req vehicleTypeRequest
	if !bindJSON(c, &req, "车型名称不能为空") {
		return
	}

	vt, err := a.vehicleTypes.Update(id, service.VehicleTypeInput{
		Title:       req.Title,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		if respondSlugError(c, err) {
			return
		}
		if errors.Is(err, service.ErrVehicleTypeNotFound) {
			respondError(c, http.StatusNotFound, "车型不存在")
			return
		}
		respondInternal(c, err, "更新车型失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "车型更新成功", "vehicleType": vehicleTypePayload(*vt)})
}

// DeleteVehicleType 删除车型
func (a *API) DeleteVehicleType(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的车型ID")
		return
	}

	if err := a.vehicleTypes.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrVehicleTypeInUse):
			respondError(c, http.StatusBadRequest, "车型下仍有车辆，无法删除")
		case errors.Is(err, service.ErrVehicleTypeNotFound):
			respondError(c, http.StatusNotFound, "车型不存在")
		default:
			respondInternal(c, err, "删除车型失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "车型删除成功"})
}

// ReorderVehicleTypes 调整车型排序
func (a *API) ReorderVehicleTypes(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序数据无效") {
		return
	}

	if err := a.vehicleTypes.Reorder(req.IDs); err != nil {
		switch {
		case errors.Is(err, service.ErrVehicleTypeOrder):
			respondError(c, http.StatusBadRequest, "排序数据无效")
		case errors.Is(err, service.ErrVehicleTypeNotFound):
			respondError(c, http.StatusNotFound, "车型不存在")
		default:
			respondInternal(c, err, "更新排序失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}
