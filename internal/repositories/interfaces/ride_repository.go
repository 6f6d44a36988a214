package interfaces

import (
	"context"

	"swyft/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideFilter narrows ride listings. Zero values mean "no constraint".
type RideFilter struct {
	PassengerEmail string
	DriverEmail    string
	Statuses       []models.RideStatus
}

// RideRepository persists rides and applies status transitions. Every
// transition method checks its precondition and applies the mutation as one
// atomic store operation, so concurrent writers on the same ride cannot both
// succeed. The returned ride reflects the post-transition document.
type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)

	// List returns matching rides, newest-created first.
	List(ctx context.Context, filter *RideFilter) ([]*models.Ride, error)

	// GetActiveByDriver returns the driver's assigned rides in accepted or
	// in_progress status, newest first.
	GetActiveByDriver(ctx context.Context, driverEmail string) ([]*models.Ride, error)

	// AssignDriver claims the ride for a driver. Only succeeds while
	// driver_assigned is false; the losing side of a race gets
	// models.ErrRideAlreadyAssigned.
	AssignDriver(ctx context.Context, id primitive.ObjectID, driver *models.User) (*models.Ride, error)

	// StartRide moves an accepted ride to in_progress.
	StartRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)

	// CompleteRide moves an accepted or in_progress ride to completed and
	// stamps completed_at.
	CompleteRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)

	// CancelRide moves a pending, accepted or in_progress ride to canceled
	// and stamps canceled_at. Terminal rides are not cancelable.
	CancelRide(ctx context.Context, id primitive.ObjectID, canceledBy, reason string) (*models.Ride, error)

	// UpdateDriverLocation stores the driver's live position while the ride
	// is in an active-driver state.
	UpdateDriverLocation(ctx context.Context, id primitive.ObjectID, lat, lng float64) (*models.Ride, error)
}
