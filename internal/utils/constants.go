package utils

// Application Constants
const (
	AppName    = "Swyft"
	AppVersion = "1.0.0"
)

// Error Messages
const (
	ErrValidationFailed = "Please provide all required fields"
	ErrInternalServer   = "Internal server error"
)

// Success Messages
const (
	MsgRideBooked          = "Ride booked successfully"
	MsgRideAccepted        = "Ride accepted successfully"
	MsgRideStarted         = "Ride started successfully"
	MsgRideCompleted       = "Ride completed successfully"
	MsgRideCanceled        = "Ride canceled successfully"
	MsgDriverLocationSaved = "Driver location updated"
)
