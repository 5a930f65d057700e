package myerrors

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotConfirmed  = errors.New("order is not in confirmed status")
	ErrOrderTaken         = errors.New("order is no longer available")
	ErrBackendUnavailable = errors.New("backend unavailable")
)
