package errors

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")

	ErrPropertyNotFound = errors.New("property not found")

	ErrGuestNotFound = errors.New("guest not found")

	ErrInvalidID = errors.New("invalid ID format")
)
