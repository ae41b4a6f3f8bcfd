package handler

import (
	"errors"
	"net/http"

	domainDriver "fleet-reserve/internal/domain/driver"
	domainReservation "fleet-reserve/internal/domain/reservation"
	domainVehicle "fleet-reserve/internal/domain/vehicle"
	appErrors "fleet-reserve/pkg/errors"
	"fleet-reserve/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps service and domain errors to HTTP statuses so every
// handler reports failures the same way.
func respondError(c *gin.Context, err error) {
	switch appErrors.CodeOf(err) {
	case appErrors.CodeValidation, appErrors.CodeInvalidOdometer:
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	case appErrors.CodeNotFound:
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	case appErrors.CodeOverlapping, appErrors.CodeInvalidTransition, appErrors.CodeNoVehicle:
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
		return
	case appErrors.CodeDataUnavailable:
		utils.ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
		return
	}

	switch {
	case errors.Is(err, domainVehicle.ErrVehicleNotFound),
		errors.Is(err, domainDriver.ErrDriverNotFound),
		errors.Is(err, domainReservation.ErrReservationNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domainVehicle.ErrPlateAlreadyExists),
		errors.Is(err, domainDriver.ErrDriverAlreadyExists),
		errors.Is(err, domainReservation.ErrOverlappingDates),
		errors.Is(err, domainReservation.ErrAlreadyFinalized),
		errors.Is(err, domainReservation.ErrTerminalState),
		errors.Is(err, domainReservation.ErrNotActive):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
