package service

import "errors"

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidTransition = errors.New("the session is not in a state that allows this action")
	ErrInvalidInput      = errors.New("invalid input")
)
