package service

import "errors"

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrUnauthorized = errors.New("unauthorized") // 401
	ErrNotFound     = errors.New("not found")    // 404, also for orders of other users
	ErrConflict     = errors.New("conflict")     // 400, see httpserver
)
