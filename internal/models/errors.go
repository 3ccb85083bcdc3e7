package models

import "errors"

// Not found
var (
	ErrNotFound     = errors.New("not found")
	ErrNoSuchTrip   = errors.New("trip not found")
	ErrNoSuchSeat   = errors.New("seat not found")
	ErrUserNotFound = errors.New("user not found")
)

// Conflict
var (
	ErrSeatOccupied    = errors.New("seat already occupied")
	ErrAlreadyRefunded = errors.New("ticket already refunded")
	ErrEmailTaken      = errors.New("email already registered")
)

// Forbidden
var (
	ErrForbidden    = errors.New("ticket does not belong to user")
	ErrTripDeparted = errors.New("trip already departed")
)

// Authentication and validation
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("all fields are required")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
	ErrWeakPassword       = errors.New("password does not meet strength rules")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyMessage       = errors.New("message cannot be empty")
)

// ErrAssistantUnavailable is returned when the text generator fails
var ErrAssistantUnavailable = errors.New("assistant service failed")
