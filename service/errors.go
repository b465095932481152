package service

import "errors"

var (
	// ErrInvalidTransition rejects a lifecycle move the transition table does
	// not allow
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotVisible rejects an action on a complaint outside the acting
	// department's queue
	ErrNotVisible = errors.New("complaint not visible to this department")
	// ErrNotAssigned rejects a stage change on a complaint the acting
	// department does not own
	ErrNotAssigned = errors.New("complaint not assigned to this department")
	// ErrSolutionImageRequired rejects completion without a solution image,
	// before any backend write is attempted
	ErrSolutionImageRequired = errors.New("solution image is required to complete a complaint")
	// ErrRedirectRestricted rejects redirects from water/energy/pwd officials,
	// who may only accept
	ErrRedirectRestricted = errors.New("restricted departments cannot redirect complaints")
	// ErrRoleDenied rejects admin-only actions from non-admin officials
	ErrRoleDenied = errors.New("action requires admin role")
	// ErrInvalidCredentials rejects a failed official login
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError marks a request problem detected before any backend call.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
