package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrAuthentication     = fmt.Errorf("unauthenticated connection")
	ErrEmptyMessage       = fmt.Errorf("message needs a text or an image")
	ErrNotAnImage         = fmt.Errorf("payload is not an image")
	ErrPersistence        = fmt.Errorf("message store unavailable")
	ErrDeliveryPush       = fmt.Errorf("realtime push failed")
	ErrSinkClosed         = fmt.Errorf("connection sink closed")
	ErrSinkBackpressure   = fmt.Errorf("connection sink full")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrOnlyCensoredFiles  = fmt.Errorf("censored directory contains directories")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)

// HTTPStatus maps domain errors to HTTP status codes at the REST boundary.
// Anything unknown is a 500: persistence failures surface as retryable
// server errors, push failures never reach this mapper at all.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuthentication),
		errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrNotAnImage),
		errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
