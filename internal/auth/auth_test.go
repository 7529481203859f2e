package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/config"
)

func TestDesktopValidatorBypassesAuth(t *testing.T) {
	v, err := New(config.AuthConfig{Enabled: false, DesktopUserID: "local-user"})
	require.NoError(t, err)

	userID, err := v.Validate("anything, even empty")
	require.NoError(t, err)
	require.Equal(t, "local-user", userID)

	userID, err = v.Validate("")
	require.NoError(t, err)
	require.Equal(t, "local-user", userID)
}

func TestNewRequiresSecretWhenEnabled(t *testing.T) {
	_, err := New(config.AuthConfig{Enabled: true})
	require.Error(t, err)
}

func TestJWTValidatorAcceptsValidToken(t *testing.T) {
	secret := "test-secret"
	v, err := New(config.AuthConfig{Enabled: true, JWTSecret: secret})
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	userID, err := v.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "user-42", userID)
}

func TestJWTValidatorRejectsWrongSecret(t *testing.T) {
	v, err := New(config.AuthConfig{Enabled: true, JWTSecret: "right-secret"})
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{Subject: "user-1"}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	_, err = v.Validate(signed)
	require.Error(t, err)
}

func TestJWTValidatorRejectsMissingSubject(t *testing.T) {
	v, err := New(config.AuthConfig{Enabled: true, JWTSecret: "s"})
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{})
	signed, err := token.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = v.Validate(signed)
	require.Error(t, err)
}

func TestJWTValidatorRejectsUnexpectedSigningMethod(t *testing.T) {
	v, err := New(config.AuthConfig{Enabled: true, JWTSecret: "s"})
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "user-1"})
	signed, err := token.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = v.Validate(signed)
	require.Error(t, err)
}
