package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMaintenanceMode indicates the tenant is in maintenance and all
	// report traffic must be rejected before any aggregation runs.
	ErrMaintenanceMode = errors.New("maintenance mode active")
)
