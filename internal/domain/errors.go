package domain

import "errors"

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlreadyLoggedIn = errors.New("user already logged in")
	ErrLoginFailed     = errors.New("login failed")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidUser     = errors.New("invalid username or balance")

	ErrNoSuchItinerary     = errors.New("no such itinerary")
	ErrSameDayConflict     = errors.New("cannot book two flights in the same day")
	ErrCapacityExceeded    = errors.New("flight capacity exceeded")
	ErrReservationNotFound = errors.New("unpaid reservation not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")

	// ErrTxConflict is surfaced after the retry ceiling is reached on
	// serialization conflicts.
	ErrTxConflict = errors.New("transaction conflict not resolved")
)
