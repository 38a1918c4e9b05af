// Package jwt issues and verifies RS256 session tokens. Verification needs
// only the public key, so verifier-only instances can be built without the
// signing key.
package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNoSigningKey = errors.New("token service has no signing key")
)

// Claims binds a token to an account
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenService signs and verifies session tokens
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenService builds a service from PEM encoded keys. privatePEM may be
// empty for a verify-only service.
func NewTokenService(privatePEM, publicPEM []byte, issuer string, ttl time.Duration) (*TokenService, error) {
	if ttl <= 0 {
		return nil, errors.New("jwt: ttl must be positive")
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse public key: %w", err)
	}
	s := &TokenService{publicKey: pub, issuer: issuer, ttl: ttl, now: time.Now}
	if len(privatePEM) > 0 {
		priv, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
		if err != nil {
			return nil, fmt.Errorf("jwt: parse private key: %w", err)
		}
		if !priv.PublicKey.Equal(pub) {
			return nil, errors.New("jwt: private key does not match public key")
		}
		s.privateKey = priv
	}
	return s, nil
}

// LoadTokenService reads the key files once at startup
func LoadTokenService(privatePath, publicPath, issuer string, ttl time.Duration) (*TokenService, error) {
	pub, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("jwt: read public key: %w", err)
	}
	var priv []byte
	if privatePath != "" {
		if priv, err = os.ReadFile(privatePath); err != nil {
			return nil, fmt.Errorf("jwt: read private key: %w", err)
		}
	}
	return NewTokenService(priv, pub, issuer, ttl)
}

// TTL is the lifetime of issued tokens
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the account and returns it with its expiry
func (s *TokenService) Issue(userID, email string) (string, time.Time, error) {
	if s.privateKey == nil {
		return "", time.Time{}, ErrNoSigningKey
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm, issuer and expiry
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
