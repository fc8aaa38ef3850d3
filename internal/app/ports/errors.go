package ports

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrRunTerminated = errors.New("run terminated")
)
