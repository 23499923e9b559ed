package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, expires, err := IssueToken(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(TokenLifetime), expires, time.Minute)

	teacherID, claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, teacherID)
	assert.NotEmpty(t, claims.ID)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, _, err := IssueToken(1)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	for _, bad := range []string{"", "not a token", "a.b.c"} {
		_, _, err := ParseToken(bad)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, _, err := IssueToken(7)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-b")
	_, _, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	claims := jwt.RegisteredClaims{
		Subject:   "9",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsNonNumericSubject(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	claims := jwt.RegisteredClaims{
		Subject:   "not-a-number",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
