package validators

import "strings"

type BookRideRequest struct {
	PassengerName  string   `json:"passenger_name" validate:"required"`
	PassengerEmail string   `json:"passenger_email" validate:"required,email"`
	PassengerPhone string   `json:"passenger_phone" validate:"required"`
	Pickup         string   `json:"pickup" validate:"required"`
	Dropoff        string   `json:"dropoff" validate:"required"`
	RideType       string   `json:"ride_type" validate:"required,oneof=economy premium luxury"`
	Price          *float64 `json:"price" validate:"required"`
}

type AcceptRideRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

type CancelRideRequest struct {
	CanceledBy string `json:"canceled_by" validate:"omitempty,oneof=passenger driver"`
	Reason     string `json:"reason" validate:"omitempty,max=255"`
}

type DriverLocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

func ValidateBookRide(req *BookRideRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.Price != nil && *req.Price < 0 {
		errors = append(errors, ValidationError{
			Field:   "price",
			Tag:     "min",
			Message: "Price cannot be negative",
		})
	}

	if req.Pickup != "" && strings.EqualFold(strings.TrimSpace(req.Pickup), strings.TrimSpace(req.Dropoff)) {
		errors = append(errors, ValidationError{
			Field:   "dropoff",
			Tag:     "nefield",
			Message: "Pickup and dropoff locations must be different",
		})
	}

	return errors
}

func ValidateAcceptRide(req *AcceptRideRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateCancelRide(req *CancelRideRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateDriverLocation(req *DriverLocationRequest) ValidationErrors {
	return ValidateStruct(req)
}
