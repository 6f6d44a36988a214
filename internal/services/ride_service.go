package services

import (
	"context"

	"swyft/internal/models"
	"swyft/internal/observability"
	"swyft/internal/repositories/interfaces"
	"swyft/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Realtime event names pushed to connected clients.
const (
	EventNewRide               = "newRide"
	EventRideUpdated           = "rideUpdated"
	EventDriverLocationUpdated = "driverLocationUpdated"
)

// Notifier publishes realtime events. Broadcast reaches every connected
// client; PublishToRoom reaches only clients joined to the named room.
// Publishes are fire-and-forget: nothing is queued for offline clients.
type Notifier interface {
	Broadcast(event string, payload interface{})
	PublishToRoom(room, event string, payload interface{})
}

// BookRideInput carries the validated fields for a new ride.
type BookRideInput struct {
	PassengerName  string
	PassengerEmail string
	PassengerPhone string
	Pickup         string
	Dropoff        string
	RideType       models.RideType
	Price          float64
}

type RideService interface {
	CreateRide(ctx context.Context, input *BookRideInput) (*models.Ride, error)
	ListRides(ctx context.Context, filter *interfaces.RideFilter) ([]*models.Ride, error)
	ListActiveRides(ctx context.Context, driverEmail string) ([]*models.Ride, error)
	AcceptRide(ctx context.Context, rideID primitive.ObjectID, driverEmail, driverPhone string) (*models.Ride, *models.User, error)
	StartRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error)
	CompleteRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error)
	CancelRide(ctx context.Context, rideID primitive.ObjectID, canceledBy, reason string) (*models.Ride, error)
	UpdateDriverLocation(ctx context.Context, rideID primitive.ObjectID, lat, lng float64) (*models.Ride, error)
}

type rideService struct {
	rideRepo interfaces.RideRepository
	userRepo interfaces.UserRepository
	notifier Notifier
	cache    CacheService
	log      *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	userRepo interfaces.UserRepository,
	notifier Notifier,
	cache CacheService,
	log *logger.Logger,
) RideService {
	return &rideService{
		rideRepo: rideRepo,
		userRepo: userRepo,
		notifier: notifier,
		cache:    cache,
		log:      log,
	}
}

func (s *rideService) CreateRide(ctx context.Context, input *BookRideInput) (*models.Ride, error) {
	ride := &models.Ride{
		PassengerName:   input.PassengerName,
		PassengerEmail:  input.PassengerEmail,
		PassengerPhone:  input.PassengerPhone,
		PickupLocation:  input.Pickup,
		DropoffLocation: input.Dropoff,
		RideType:        input.RideType,
		Price:           input.Price,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	observability.RidesCreatedTotal.Inc()
	s.log.LogRideEvent(ride.ID, "created", map[string]interface{}{
		"passenger_email": ride.PassengerEmail,
		"ride_type":       ride.RideType,
	})

	s.notifier.Broadcast(EventNewRide, ride)

	return ride, nil
}

func (s *rideService) ListRides(ctx context.Context, filter *interfaces.RideFilter) ([]*models.Ride, error) {
	return s.rideRepo.List(ctx, filter)
}

func (s *rideService) ListActiveRides(ctx context.Context, driverEmail string) ([]*models.Ride, error) {
	return s.rideRepo.GetActiveByDriver(ctx, driverEmail)
}

// AcceptRide claims the ride for the driver resolved by email. The claim is a
// single conditional store update, so only one of two racing drivers wins;
// the loser gets models.ErrRideAlreadyAssigned.
func (s *rideService) AcceptRide(ctx context.Context, rideID primitive.ObjectID, driverEmail, driverPhone string) (*models.Ride, *models.User, error) {
	driver, err := s.userRepo.GetDriverByEmail(ctx, driverEmail)
	if err != nil {
		return nil, nil, err
	}

	if driverPhone != "" {
		driver.Phone = driverPhone
	}

	ride, err := s.rideRepo.AssignDriver(ctx, rideID, driver)
	if err != nil {
		if err == models.ErrRideAlreadyAssigned {
			observability.AcceptConflictsTotal.Inc()
		}
		return nil, nil, err
	}

	observability.RideTransitionsTotal.WithLabelValues(string(models.RideStatusAccepted)).Inc()
	s.log.LogRideEvent(ride.ID, "accepted", map[string]interface{}{
		"driver_email": driver.Email,
	})

	s.publishRideUpdated(ride)

	return ride, driver, nil
}

func (s *rideService) StartRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rideRepo.StartRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	observability.RideTransitionsTotal.WithLabelValues(string(models.RideStatusInProgress)).Inc()
	s.log.LogRideEvent(ride.ID, "started", nil)

	s.publishRideUpdated(ride)

	return ride, nil
}

func (s *rideService) CompleteRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rideRepo.CompleteRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	observability.RideTransitionsTotal.WithLabelValues(string(models.RideStatusCompleted)).Inc()
	s.log.LogRideEvent(ride.ID, "completed", nil)

	s.publishRideUpdated(ride)

	return ride, nil
}

func (s *rideService) CancelRide(ctx context.Context, rideID primitive.ObjectID, canceledBy, reason string) (*models.Ride, error) {
	if canceledBy == "" {
		canceledBy = models.CanceledByDriver
	}

	ride, err := s.rideRepo.CancelRide(ctx, rideID, canceledBy, reason)
	if err != nil {
		return nil, err
	}

	observability.RideTransitionsTotal.WithLabelValues(string(models.RideStatusCanceled)).Inc()
	s.log.LogRideEvent(ride.ID, "canceled", map[string]interface{}{
		"canceled_by": ride.CanceledBy,
	})

	s.publishRideUpdated(ride)

	return ride, nil
}

// UpdateDriverLocation stores the driver's position on the ride and pushes a
// driverLocationUpdated event. It is deliberately a distinct event type from
// rideUpdated so clients can tell position ticks from status changes.
func (s *rideService) UpdateDriverLocation(ctx context.Context, rideID primitive.ObjectID, lat, lng float64) (*models.Ride, error) {
	ride, err := s.rideRepo.UpdateDriverLocation(ctx, rideID, lat, lng)
	if err != nil {
		return nil, err
	}

	observability.LocationUpdatesTotal.Inc()

	if s.cache != nil && ride.DriverEmail != "" {
		if err := s.cache.RecordDriverPosition(ctx, ride.DriverEmail, lat, lng); err != nil {
			s.log.WithError(err).Warn("Failed to record driver position in cache")
		}
	}

	payload := map[string]interface{}{
		"rideId": ride.ID.Hex(),
		"lat":    lat,
		"lng":    lng,
	}
	s.notifier.Broadcast(EventDriverLocationUpdated, payload)
	s.notifier.PublishToRoom(ride.PassengerEmail, EventDriverLocationUpdated, payload)

	return ride, nil
}

func (s *rideService) publishRideUpdated(ride *models.Ride) {
	s.notifier.Broadcast(EventRideUpdated, ride)
	s.notifier.PublishToRoom(ride.PassengerEmail, EventRideUpdated, ride)
}
