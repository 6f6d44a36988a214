package mongodb

import (
	"context"
	"fmt"
	"time"

	"swyft/internal/models"
	"swyft/internal/repositories/interfaces"
	"swyft/internal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const rideCacheTTL = 15 * time.Minute

type rideRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewRideRepository(db *mongo.Database, cache services.CacheService) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
		cache:      cache,
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.Status = models.RideStatusPending
	ride.DriverAssigned = false
	ride.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	r.cacheRide(ctx, ride)

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	// Try cache first for active rides
	if ride := r.getRideFromCache(ctx, id.Hex()); ride != nil {
		return ride, nil
	}

	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if !ride.IsTerminal() {
		r.cacheRide(ctx, &ride)
	}

	return &ride, nil
}

func (r *rideRepository) List(ctx context.Context, filter *interfaces.RideFilter) ([]*models.Ride, error) {
	query := bson.M{}
	if filter != nil {
		if filter.PassengerEmail != "" {
			query["passenger_email"] = filter.PassengerEmail
		}
		if filter.DriverEmail != "" {
			query["driver_email"] = filter.DriverEmail
		}
		if len(filter.Statuses) > 0 {
			query["status"] = bson.M{"$in": filter.Statuses}
		}
	}

	return r.findRides(ctx, query)
}

func (r *rideRepository) GetActiveByDriver(ctx context.Context, driverEmail string) ([]*models.Ride, error) {
	query := bson.M{
		"driver_email":    driverEmail,
		"driver_assigned": true,
		"status": bson.M{"$in": []models.RideStatus{
			models.RideStatusAccepted,
			models.RideStatusInProgress,
		}},
	}

	return r.findRides(ctx, query)
}

// AssignDriver claims the ride with a single conditional update keyed on
// driver_assigned=false. Two drivers racing on the same ride cannot both
// match the filter, so exactly one wins.
func (r *rideRepository) AssignDriver(ctx context.Context, id primitive.ObjectID, driver *models.User) (*models.Ride, error) {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"driver_name":     driver.FullName(),
		"driver_email":    driver.Email,
		"driver_phone":    driver.Phone,
		"driver_vehicle":  driver.VehiclePlate,
		"driver_assigned": true,
		"status":          models.RideStatusAccepted,
		"accepted_at":     now,
	}}

	filter := bson.M{"_id": id, "driver_assigned": false}

	ride, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.classifyMiss(ctx, id, func(current *models.Ride) error {
			return models.ErrRideAlreadyAssigned
		})
	}
	return ride, err
}

func (r *rideRepository) StartRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	update := bson.M{"$set": bson.M{
		"status":     models.RideStatusInProgress,
		"started_at": time.Now(),
	}}

	filter := bson.M{
		"_id":             id,
		"driver_assigned": true,
		"status":          models.RideStatusAccepted,
	}

	ride, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.classifyMiss(ctx, id, func(current *models.Ride) error {
			if !current.DriverAssigned {
				return models.ErrNoDriverAssigned
			}
			return models.ErrInvalidRideState
		})
	}
	return ride, err
}

func (r *rideRepository) CompleteRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	update := bson.M{"$set": bson.M{
		"status":       models.RideStatusCompleted,
		"completed_at": time.Now(),
	}}

	filter := bson.M{
		"_id": id,
		"status": bson.M{"$in": []models.RideStatus{
			models.RideStatusAccepted,
			models.RideStatusInProgress,
		}},
	}

	ride, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.classifyMiss(ctx, id, func(current *models.Ride) error {
			return models.ErrInvalidRideState
		})
	}
	return ride, err
}

func (r *rideRepository) CancelRide(ctx context.Context, id primitive.ObjectID, canceledBy, reason string) (*models.Ride, error) {
	set := bson.M{
		"status":      models.RideStatusCanceled,
		"canceled_at": time.Now(),
	}
	if canceledBy != "" {
		set["canceled_by"] = canceledBy
	}
	if reason != "" {
		set["cancellation_reason"] = reason
	}

	filter := bson.M{
		"_id": id,
		"status": bson.M{"$in": []models.RideStatus{
			models.RideStatusPending,
			models.RideStatusAccepted,
			models.RideStatusInProgress,
		}},
	}

	ride, err := r.findOneAndUpdate(ctx, filter, bson.M{"$set": set})
	if err == mongo.ErrNoDocuments {
		return nil, r.classifyMiss(ctx, id, func(current *models.Ride) error {
			return models.ErrInvalidRideState
		})
	}
	return ride, err
}

func (r *rideRepository) UpdateDriverLocation(ctx context.Context, id primitive.ObjectID, lat, lng float64) (*models.Ride, error) {
	update := bson.M{"$set": bson.M{
		"driver_lat": lat,
		"driver_lng": lng,
	}}

	filter := bson.M{
		"_id":             id,
		"driver_assigned": true,
		"status": bson.M{"$in": []models.RideStatus{
			models.RideStatusAccepted,
			models.RideStatusInProgress,
		}},
	}

	ride, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.classifyMiss(ctx, id, func(current *models.Ride) error {
			if !current.DriverAssigned {
				return models.ErrNoDriverAssigned
			}
			return models.ErrInvalidRideState
		})
	}
	return ride, err
}

// findOneAndUpdate runs the conditional update and returns the document as it
// looks after the mutation. A filter miss surfaces as mongo.ErrNoDocuments.
func (r *rideRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Ride, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update ride: %w", err)
	}

	r.invalidateRideCache(ctx, ride.ID.Hex())
	if !ride.IsTerminal() {
		r.cacheRide(ctx, &ride)
	}

	return &ride, nil
}

// classifyMiss turns a conditional-update miss into a domain error. The
// follow-up read is for error reporting only; the transition itself already
// failed atomically.
func (r *rideRepository) classifyMiss(ctx context.Context, id primitive.ObjectID, classify func(*models.Ride) error) error {
	var current models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&current)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ErrRideNotFound
		}
		return fmt.Errorf("failed to get ride: %w", err)
	}

	return classify(&current)
}

func (r *rideRepository) findRides(ctx context.Context, query bson.M) ([]*models.Ride, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	rides := []*models.Ride{}
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}

	return rides, cursor.Err()
}

// Cache helpers. The cache is optional; every helper is a no-op without one.

func (r *rideRepository) cacheRide(ctx context.Context, ride *models.Ride) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Set(ctx, "ride:"+ride.ID.Hex(), ride, rideCacheTTL)
}

func (r *rideRepository) getRideFromCache(ctx context.Context, id string) *models.Ride {
	if r.cache == nil {
		return nil
	}

	var ride models.Ride
	if err := r.cache.Get(ctx, "ride:"+id, &ride); err != nil {
		return nil
	}
	return &ride
}

func (r *rideRepository) invalidateRideCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, "ride:"+id)
}
