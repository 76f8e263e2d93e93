package domain

import "errors"

var (
	// ErrRejected marks an application-level rejection: the backend answered
	// with a well-formed envelope whose code is not 200.
	ErrRejected = errors.New("request rejected by backend")

	// ErrUnauthorized marks an HTTP 401 from any call site. The transport
	// additionally fires its global unauthorized hook.
	ErrUnauthorized = errors.New("unauthorized")

	ErrUnknownRole   = errors.New("unknown role")
	ErrUnknownRoute  = errors.New("unknown route")
	ErrUserNotFound  = errors.New("user not found")
	ErrDroneNotFound = errors.New("drone not found")
	ErrImageNotFound = errors.New("image not found")
	ErrUserExists    = errors.New("user already exists")
)
