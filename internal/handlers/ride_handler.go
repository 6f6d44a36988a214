package handlers

import (
	"net/http"
	"strings"

	"swyft/internal/models"
	"swyft/internal/repositories/interfaces"
	"swyft/internal/services"
	"swyft/internal/utils"
	"swyft/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
	}
}

// BookRide creates a new pending ride and broadcasts it to drivers.
func (h *RideHandler) BookRide(c *gin.Context) {
	var request validators.BookRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateBookRide(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToFieldMap())
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), &services.BookRideInput{
		PassengerName:  request.PassengerName,
		PassengerEmail: request.PassengerEmail,
		PassengerPhone: request.PassengerPhone,
		Pickup:         request.Pickup,
		Dropoff:        request.Dropoff,
		RideType:       models.RideType(request.RideType),
		Price:          *request.Price,
	})
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": utils.MsgRideBooked,
		"rideId":  ride.ID.Hex(),
	})
}

// ListRides returns rides matching the query filters, newest first.
func (h *RideHandler) ListRides(c *gin.Context) {
	filter := &interfaces.RideFilter{
		PassengerEmail: c.Query("passenger_email"),
		DriverEmail:    c.Query("driver_email"),
	}

	if statusParam := c.Query("status"); statusParam != "" {
		for _, s := range strings.Split(statusParam, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Statuses = append(filter.Statuses, models.RideStatus(s))
			}
		}
	}

	rides, err := h.rideService.ListRides(c.Request.Context(), filter)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	c.JSON(http.StatusOK, rides)
}

// ListActiveRides returns a driver's assigned rides still in flight.
func (h *RideHandler) ListActiveRides(c *gin.Context) {
	driverEmail := c.Query("driver_email")
	if driverEmail == "" {
		utils.BadRequestResponse(c, "driver_email is required")
		return
	}

	rides, err := h.rideService.ListActiveRides(c.Request.Context(), driverEmail)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	c.JSON(http.StatusOK, rides)
}

// AcceptRide claims a pending ride for the posting driver. Exactly one of
// two concurrent accepts succeeds; the other gets a 400.
func (h *RideHandler) AcceptRide(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	var request validators.AcceptRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateAcceptRide(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToFieldMap())
		return
	}

	ride, driver, err := h.rideService.AcceptRide(c.Request.Context(), rideID, request.Email, request.Phone)
	if err != nil {
		h.respondRideError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     utils.MsgRideAccepted,
		"driver_name": driver.FullName(),
		"vehicle":     driver.VehiclePlate,
		"ride":        ride,
	})
}

func (h *RideHandler) StartRide(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	ride, err := h.rideService.StartRide(c.Request.Context(), rideID)
	if err != nil {
		h.respondRideError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": utils.MsgRideStarted,
		"rideId":  ride.ID.Hex(),
		"ride":    ride,
	})
}

func (h *RideHandler) CompleteRide(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	ride, err := h.rideService.CompleteRide(c.Request.Context(), rideID)
	if err != nil {
		h.respondRideError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": utils.MsgRideCompleted,
		"ride":    ride,
	})
}

// CancelRide cancels a pending ride (passenger withdrawal) or an assigned
// ride (driver cancel). The body is optional.
func (h *RideHandler) CancelRide(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	var request validators.CancelRideRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			utils.BadRequestResponse(c, "Invalid request: "+err.Error())
			return
		}
		if errs := validators.ValidateCancelRide(&request); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs.ToFieldMap())
			return
		}
	}

	ride, err := h.rideService.CancelRide(c.Request.Context(), rideID, request.CanceledBy, request.Reason)
	if err != nil {
		h.respondRideError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": utils.MsgRideCanceled,
		"ride":    ride,
	})
}

func (h *RideHandler) UpdateDriverLocation(c *gin.Context) {
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	var request validators.DriverLocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateDriverLocation(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToFieldMap())
		return
	}

	ride, err := h.rideService.UpdateDriverLocation(c.Request.Context(), rideID, *request.Lat, *request.Lng)
	if err != nil {
		h.respondRideError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": utils.MsgDriverLocationSaved,
		"rideId":  ride.ID.Hex(),
	})
}

func (h *RideHandler) rideID(c *gin.Context) (primitive.ObjectID, bool) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return primitive.NilObjectID, false
	}
	return rideID, true
}

func (h *RideHandler) respondRideError(c *gin.Context, err error) {
	switch err {
	case models.ErrRideNotFound:
		utils.NotFoundResponse(c, "Ride not found")
	case models.ErrDriverNotFound:
		utils.NotFoundResponse(c, "Driver not found")
	case models.ErrRideAlreadyAssigned:
		utils.BadRequestResponse(c, "Ride already has a driver assigned")
	case models.ErrNoDriverAssigned:
		utils.BadRequestResponse(c, "No driver assigned to this ride")
	case models.ErrInvalidRideState:
		utils.BadRequestResponse(c, "Operation not valid for current ride status")
	default:
		utils.InternalServerErrorResponse(c)
	}
}
