package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rs/zerolog"

	"github.com/sqlward/sqlward/pkg/errors"
)

func newTestVerifier() *Verifier {
	return NewVerifier(Config{
		Secret:   "test-secret",
		Issuer:   "sqlward",
		TokenTTL: time.Hour,
	}, zerolog.Nop())
}

func TestVerify_RoundTrip(t *testing.T) {
	v := newTestVerifier()
	want := Identity{
		Username:            "alice",
		Roles:               []string{"analyst", "viewer"},
		MayExecuteDangerous: false,
	}

	token, err := v.Issue(want, time.Now())
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerify_CapabilityClaim(t *testing.T) {
	v := newTestVerifier()
	token, err := v.Issue(Identity{Username: "root", Roles: []string{"admin"}, MayExecuteDangerous: true}, time.Now())
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.True(t, got.MayExecuteDangerous)
}

func TestVerify_ExpiredToken(t *testing.T) {
	v := newTestVerifier()
	token, err := v.Issue(Identity{Username: "alice"}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = v.Verify(token)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
}

func TestVerify_WrongSecret(t *testing.T) {
	v := newTestVerifier()
	token, err := v.Issue(Identity{Username: "alice"}, time.Now())
	require.NoError(t, err)

	other := NewVerifier(Config{Secret: "other-secret", TokenTTL: time.Hour}, zerolog.Nop())
	_, err = other.Verify(token)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
}

func TestVerify_RejectsOtherSigningMethods(t *testing.T) {
	v := newTestVerifier()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "sqlward",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = v.Verify(signed)
	require.Error(t, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	v := newTestVerifier()
	issuer := NewVerifier(Config{Secret: "test-secret", Issuer: "someone-else", TokenTTL: time.Hour}, zerolog.Nop())

	token, err := issuer.Issue(Identity{Username: "alice"}, time.Now())
	require.NoError(t, err)

	_, err = v.Verify(token)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	_, ok := IdentityFrom(ctx)
	assert.False(t, ok)

	want := Identity{Username: "alice", Roles: []string{"viewer"}}
	ctx = WithIdentity(ctx, want)

	got, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
