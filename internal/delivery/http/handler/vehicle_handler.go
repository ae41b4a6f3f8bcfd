package handler

import (
	"net/http"
	"strconv"

	domainVehicle "fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/usecase/vehicle"
	"fleet-reserve/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VehicleHandler struct {
	service *vehicle.Service
}

func NewVehicleHandler(service *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{service: service}
}

func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	vehicles := router.Group("/vehicles")
	{
		vehicles.POST("", h.CreateVehicle)
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/maintenance-alerts", h.MaintenanceAlerts)
		vehicles.POST("/maintenance-alerts/notify", h.NotifyBlocked)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.PUT("/:id", h.UpdateVehicle)
		vehicles.POST("/:id/confirm-revision", h.ConfirmRevision)
		vehicles.GET("/:id/maintenance-history", h.MaintenanceHistory)
	}
}

func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req vehicle.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Vehicle registered successfully", result)
}

func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	result, err := h.service.Get(c.Request.Context(), vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", result)
}

func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	var req vehicle.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Update(c.Request.Context(), vehicleID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle updated successfully", result)
}

func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	filter := &domainVehicle.Filter{
		Plate:  c.Query("plate"),
		Search: c.Query("search"),
	}
	if status := c.Query("status"); status != "" {
		s := domainVehicle.VehicleStatus(status)
		filter.Status = &s
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	vehicles, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", gin.H{
		"vehicles": vehicles,
		"total":    total,
	})
}

func (h *VehicleHandler) ConfirmRevision(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	var req vehicle.ConfirmRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ConfirmRevision(c.Request.Context(), vehicleID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Revision confirmed successfully", result)
}

func (h *VehicleHandler) MaintenanceAlerts(c *gin.Context) {
	alerts, err := h.service.MaintenanceAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance alerts retrieved successfully", gin.H{
		"alerts": alerts,
		"total":  len(alerts),
	})
}

func (h *VehicleHandler) NotifyBlocked(c *gin.Context) {
	sent, err := h.service.NotifyBlocked(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance alerts dispatched", gin.H{
		"emails_sent": sent,
	})
}

func (h *VehicleHandler) MaintenanceHistory(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	records, err := h.service.MaintenanceHistory(c.Request.Context(), vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance history retrieved successfully", records)
}
