package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/config"
)

const testSigningKey = "test-signing-key-that-is-32-chars!!"

func newTestVerifier(t *testing.T) *hmacTokenVerifier {
	t.Helper()
	v, err := NewTokenVerifier(config.AuthConfig{JWTSecret: testSigningKey})
	require.NoError(t, err)
	return v.(*hmacTokenVerifier)
}

func signToken(t *testing.T, key string, claims jwtCustomClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func accessClaims(userID uuid.UUID, issuedAt time.Time, ttl time.Duration) jwtCustomClaims {
	return jwtCustomClaims{
		UserID:    userID,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
}

func TestNewTokenVerifierRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenVerifier(config.AuthConfig{JWTSecret: "short"})
	assert.Error(t, err)
}

func TestVerifyTokenValid(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier(t)
	userID := uuid.New()
	issued := time.Now().UTC().Add(-time.Minute)
	tokenString := signToken(t, testSigningKey, accessClaims(userID, issued, time.Hour))

	claims, err := verifier.VerifyToken(context.Background(), tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.WithinDuration(t, issued, claims.IssuedAt, time.Second)
}

func TestVerifyTokenExpired(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier(t)
	// Expired an hour ago, well past the clock skew allowance.
	issued := time.Now().UTC().Add(-2 * time.Hour)
	tokenString := signToken(t, testSigningKey, accessClaims(uuid.New(), issued, time.Hour))

	_, err := verifier.VerifyToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenNotYetValid(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier(t)
	userID := uuid.New()
	claims := accessClaims(userID, time.Now().UTC(), time.Hour)
	claims.NotBefore = jwt.NewNumericDate(time.Now().UTC().Add(time.Hour))
	tokenString := signToken(t, testSigningKey, claims)

	_, err := verifier.VerifyToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestVerifyTokenWrongSignature(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier(t)
	otherKey := "another-signing-key-with-32-chars!!"
	tokenString := signToken(t, otherKey, accessClaims(uuid.New(), time.Now().UTC(), time.Hour))

	_, err := verifier.VerifyToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsRefreshType(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier(t)
	claims := accessClaims(uuid.New(), time.Now().UTC(), time.Hour)
	claims.TokenType = "refresh"
	tokenString := signToken(t, testSigningKey, claims)

	_, err := verifier.VerifyToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsMissingUserID(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier(t)
	claims := accessClaims(uuid.Nil, time.Now().UTC(), time.Hour)
	tokenString := signToken(t, testSigningKey, claims)

	_, err := verifier.VerifyToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbageInput(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier(t)

	_, err := verifier.VerifyToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
