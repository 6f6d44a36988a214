package routes

import (
	"swyft/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes registers the ride lifecycle endpoints.
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, driverHandler *handlers.DriverHandler) {
	rides := r.Group("/rides")
	{
		rides.POST("", rideHandler.BookRide)
		rides.GET("", rideHandler.ListRides)
		rides.POST("/:id/accept", rideHandler.AcceptRide)
		rides.POST("/:id/start", rideHandler.StartRide)
		rides.POST("/:id/complete", rideHandler.CompleteRide)
		rides.POST("/:id/cancel", rideHandler.CancelRide)
		rides.POST("/:id/driver-location", rideHandler.UpdateDriverLocation)
	}

	r.GET("/active-rides", rideHandler.ListActiveRides)
	r.GET("/drivers", driverHandler.ListDrivers)
}
