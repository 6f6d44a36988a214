package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRolePassenger UserRole = "Passenger"
	UserRoleDriver    UserRole = "Driver"
)

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName    string             `json:"first_name" bson:"first_name" validate:"required"`
	LastName     string             `json:"last_name" bson:"last_name" validate:"required"`
	Email        string             `json:"email" bson:"email" validate:"required,email"`
	Phone        string             `json:"phone" bson:"phone"`
	Role         UserRole           `json:"role" bson:"role" validate:"required"`
	VehiclePlate string             `json:"vehicle_plate,omitempty" bson:"vehicle_plate,omitempty"`
	IsVerified   bool               `json:"is_verified" bson:"is_verified" default:"false"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// FullName joins first and last name for display and event payloads.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// DriverSummary is the public projection returned by the driver listing.
type DriverSummary struct {
	FirstName    string `json:"first_name" bson:"first_name"`
	LastName     string `json:"last_name" bson:"last_name"`
	Email        string `json:"email" bson:"email"`
	Phone        string `json:"phone" bson:"phone"`
	VehiclePlate string `json:"vehicle_plate" bson:"vehicle_plate"`
}
