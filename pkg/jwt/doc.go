// Package jwt issues and verifies portal session tokens on top of
// github.com/golang-jwt/jwt/v5.
//
// Tokens are HS256 signed; parsing pins the algorithm and, when configured,
// the issuer. Middleware extracts a token (bearer header by default, cookies
// via CookieTokenExtractor), verifies it and stores the resulting *Claims in
// the request context, retrievable with GetClaims.
package jwt
