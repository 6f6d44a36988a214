package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string
type RideType string

const (
	RideStatusPending    RideStatus = "pending"
	RideStatusAccepted   RideStatus = "accepted"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCanceled   RideStatus = "canceled"

	RideTypeEconomy RideType = "economy"
	RideTypePremium RideType = "premium"
	RideTypeLuxury  RideType = "luxury"
)

const (
	CanceledByPassenger = "passenger"
	CanceledByDriver    = "driver"
)

type Ride struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PassengerName      string             `json:"passenger_name" bson:"passenger_name" validate:"required"`
	PassengerEmail     string             `json:"passenger_email" bson:"passenger_email" validate:"required,email"`
	PassengerPhone     string             `json:"passenger_phone" bson:"passenger_phone" validate:"required"`
	PickupLocation     string             `json:"pickup_location" bson:"pickup_location" validate:"required"`
	DropoffLocation    string             `json:"dropoff_location" bson:"dropoff_location" validate:"required"`
	RideType           RideType           `json:"ride_type" bson:"ride_type" validate:"required"`
	Price              float64            `json:"price" bson:"price"`
	DriverName         string             `json:"driver_name" bson:"driver_name"`
	DriverEmail        string             `json:"driver_email" bson:"driver_email"`
	DriverPhone        string             `json:"driver_phone" bson:"driver_phone"`
	DriverVehicle      string             `json:"driver_vehicle" bson:"driver_vehicle"`
	DriverAssigned     bool               `json:"driver_assigned" bson:"driver_assigned" default:"false"`
	DriverLat          *float64           `json:"driver_lat" bson:"driver_lat"`
	DriverLng          *float64           `json:"driver_lng" bson:"driver_lng"`
	Status             RideStatus         `json:"status" bson:"status" default:"pending"`
	CancellationReason string             `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	CanceledBy         string             `json:"canceled_by,omitempty" bson:"canceled_by,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	AcceptedAt         *time.Time         `json:"accepted_at" bson:"accepted_at"`
	StartedAt          *time.Time         `json:"started_at" bson:"started_at"`
	CompletedAt        *time.Time         `json:"completed_at" bson:"completed_at"`
	CanceledAt         *time.Time         `json:"canceled_at" bson:"canceled_at"`
}

// IsActive reports whether the ride still has a driver en route or on trip.
func (r *Ride) IsActive() bool {
	return r.Status == RideStatusAccepted || r.Status == RideStatusInProgress
}

// IsTerminal reports whether the ride can no longer change state.
func (r *Ride) IsTerminal() bool {
	return r.Status == RideStatusCompleted || r.Status == RideStatusCanceled
}

func ValidRideType(t RideType) bool {
	switch t {
	case RideTypeEconomy, RideTypePremium, RideTypeLuxury:
		return true
	}
	return false
}
