package auth

import "errors"

var (
	ErrUnauthenticated = errors.New("auth.unauthenticated")
	ErrInvalidSubject  = errors.New("auth.invalid_subject")
)
