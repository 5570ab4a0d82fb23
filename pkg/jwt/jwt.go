package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var signingMethod = jwt.SigningMethodHS256

// Claims is the claim set carried by portal session tokens.
// Subject holds the user ID; CompanyID is the company the session was opened for.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	CompanyID string `json:"cid,omitempty"`
}

// Service signs and verifies HMAC-SHA256 tokens.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*Service)

// WithIssuer sets the "iss" claim on issued tokens and requires it on parsed ones.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithTTL sets the lifetime of issued tokens. Default is one hour.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a JWT service. The key should be at least 32 bytes.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		signingKey: signingKey,
		ttl:        time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for subject with the configured issuer and TTL.
func (s *Service) Issue(subject, email, companyID string) (string, error) {
	now := s.now()
	return s.Generate(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:     email,
		CompanyID: companyID,
	})
}

// Generate signs arbitrary claims.
func (s *Service) Generate(claims jwt.Claims) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and decodes it into claims.
// Library errors are mapped onto this package's sentinels.
func (s *Service) Parse(tokenString string, claims jwt.Claims) error {
	if claims == nil {
		return ErrMissingClaims
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != signingMethod {
			return nil, ErrInvalidSigningMethod
		}
		return s.signingKey, nil
	}, opts...)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.Join(ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable), errors.Is(err, ErrInvalidSigningMethod):
		return errors.Join(ErrInvalidSigningMethod, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return errors.Join(ErrInvalidIssuer, err)
	}
	return errors.Join(ErrInvalidToken, err)
}

// ParseClaims is Parse into a fresh Claims value.
func (s *Service) ParseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.Parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Config is read from JWT_* environment variables.
type Config struct {
	Secret string        `env:"JWT_SECRET,required"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"biportal"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"12h"`
}

// NewFromConfig creates a service from cfg; extra options apply last.
func NewFromConfig(cfg Config, opts ...Option) (*Service, error) {
	return New([]byte(cfg.Secret), append([]Option{WithIssuer(cfg.Issuer), WithTTL(cfg.TTL)}, opts...)...)
}
