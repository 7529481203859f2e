// Package auth validates the bearer credential a connection presents
// during the handshake (spec §6.3), with a desktop-mode bypass for single
// operator deployments where auth.enabled is false.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/boardwire/boardwire/internal/config"
)

// Validator authenticates a connection's bearer credential and returns the
// authenticated user id.
type Validator interface {
	Validate(token string) (userID string, err error)
}

// New builds the Validator configured by cfg.Auth: a JWT bearer validator
// when auth is enabled, a desktop-mode validator otherwise. Only an HS256
// shared secret (JWTSecret) is supported; JWTPEMPath is not read, so an
// enabled config that sets only a PEM path is rejected here.
func New(cfg config.AuthConfig) (Validator, error) {
	if !cfg.Enabled {
		return &desktopValidator{userID: cfg.DesktopUserID}, nil
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth: jwt_secret required when auth.enabled is true")
	}
	return &jwtValidator{secret: []byte(cfg.JWTSecret)}, nil
}

// desktopValidator always authenticates as the same configured user,
// matching a single-operator desktop deployment that skips real auth.
type desktopValidator struct {
	userID string
}

func (d *desktopValidator) Validate(token string) (string, error) {
	return d.userID, nil
}

// jwtValidator verifies an HS256-signed bearer JWT and extracts its
// subject claim as the user id.
type jwtValidator struct {
	secret []byte
}

func (j *jwtValidator) Validate(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("auth: token not valid")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("auth: token missing subject claim")
	}
	return claims.Subject, nil
}
