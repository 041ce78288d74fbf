package auth

import (
	"errors"
	"testing"
	"time"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Generate(7, "ada@example.com", models.RoleVendor)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, models.RoleVendor, claims.Role)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret", time.Hour).Generate(1, "a@b.c", models.RoleCustomer)
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Generate(1, "a@b.c", models.RoleCustomer)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	ok, err := CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "hunter22")
	assert.Error(t, err)
}

func TestAuthorize(t *testing.T) {
	admin := &Claims{Role: models.RoleAdmin}
	customer := &Claims{Role: models.RoleCustomer}

	assert.NoError(t, Authorize(admin, models.RoleAdmin))
	assert.NoError(t, Authorize(customer))
	assert.NoError(t, Authorize(customer, models.RoleVendor, models.RoleCustomer))

	err := Authorize(customer, models.RoleAdmin)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = Authorize(nil, models.RoleAdmin)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	assert.False(t, errors.Is(err, ErrInvalidToken))
}
