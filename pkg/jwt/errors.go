package jwt

import "errors"

var (
	ErrInvalidToken         = errors.New("jwt: invalid token")
	ErrExpiredToken         = errors.New("jwt: token is expired")
	ErrMissingSigningKey    = errors.New("jwt: missing signing key")
	ErrMissingClaims        = errors.New("jwt: missing claims")
	ErrInvalidSignature     = errors.New("jwt: invalid signature")
	ErrInvalidSigningMethod = errors.New("jwt: unexpected signing method")
	ErrInvalidIssuer        = errors.New("jwt: invalid issuer")
	ErrMissingToken         = errors.New("jwt: token not provided")
)
