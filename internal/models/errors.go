package models

import "errors"

// Domain errors surfaced by repositories and services. Handlers map these to
// HTTP status codes.
var (
	ErrRideNotFound        = errors.New("ride not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrRideAlreadyAssigned = errors.New("ride already has a driver assigned")
	ErrNoDriverAssigned    = errors.New("ride has no driver assigned")
	ErrInvalidRideState    = errors.New("operation not valid for current ride status")
)
