package binder

import "errors"

var (
	ErrInvalidQuery  = errors.New("binder.invalid_query")
	ErrInvalidPath   = errors.New("binder.invalid_path")
	ErrInvalidTarget = errors.New("binder.invalid_target")
)
