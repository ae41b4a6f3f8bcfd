package handler

import (
	"net/http"
	"strconv"

	domainReservation "fleet-reserve/internal/domain/reservation"
	"fleet-reserve/internal/usecase/reservation"
	"fleet-reserve/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	service *reservation.Service
}

func NewReservationHandler(service *reservation.Service) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) RegisterRoutes(router *gin.RouterGroup) {
	reservations := router.Group("/reservations")
	{
		reservations.POST("", h.CreateReservation)
		reservations.GET("", h.ListReservations)
		reservations.GET("/availability", h.Availability)
		reservations.GET("/:id", h.GetReservation)
		reservations.POST("/:id/finalize", h.FinalizeTrip)
		reservations.POST("/:id/cancel", h.CancelReservation)
	}
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req reservation.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Reservation created successfully", result)
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid reservation ID")
		return
	}

	result, err := h.service.Get(c.Request.Context(), reservationID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reservation retrieved successfully", result)
}

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	filter := &domainReservation.Filter{}
	if status := c.Query("status"); status != "" {
		s := domainReservation.Status(status)
		filter.Status = &s
	}
	if vehicleID, err := uuid.Parse(c.Query("vehicle_id")); err == nil {
		filter.VehicleID = &vehicleID
	}
	if driverID, err := uuid.Parse(c.Query("driver_id")); err == nil {
		filter.DriverID = &driverID
	}
	if pending := c.Query("pending_mileage"); pending != "" {
		parsed := pending == "true"
		filter.PendingMileage = &parsed
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	reservations, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reservations retrieved successfully", gin.H{
		"reservations": reservations,
		"total":        total,
	})
}

func (h *ReservationHandler) FinalizeTrip(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid reservation ID")
		return
	}

	var req reservation.FinalizeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Finalize(c.Request.Context(), reservationID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip finalized successfully", result)
}

func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid reservation ID")
		return
	}

	var req reservation.CancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Cancel(c.Request.Context(), reservationID, &req); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reservation cancelled successfully", nil)
}

func (h *ReservationHandler) Availability(c *gin.Context) {
	req := reservation.AvailabilityRequest{
		PickupDate: c.Query("pickup"),
		ReturnDate: c.Query("return"),
	}

	result, err := h.service.Availability(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Availability retrieved successfully", gin.H{
		"vehicles": result,
		"total":    len(result),
	})
}
