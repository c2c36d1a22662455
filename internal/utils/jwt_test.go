package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-chars-long-for-security"

func newTestService() *TokenService {
	return NewTokenService(testSecret, 15*time.Minute, 30*24*time.Hour, 24*time.Hour)
}

func TestTokenService_IssueAndVerifyAccessToken(t *testing.T) {
	svc := newTestService()

	tok, err := svc.IssueAccessToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	claims, err := svc.VerifyAccessToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, 15*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenService_VerifyAccessToken_Expired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	issuer := newTestService().WithClock(func() time.Time { return past })

	tok, err := issuer.IssueAccessToken(1)
	require.NoError(t, err)

	_, err = newTestService().VerifyAccessToken(tok.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_VerifyAccessToken_InvalidSignature(t *testing.T) {
	other := NewTokenService("different-secret-32-chars-long-for-security!!", 15*time.Minute, time.Hour, time.Hour)
	tok, err := other.IssueAccessToken(1)
	require.NoError(t, err)

	_, err = newTestService().VerifyAccessToken(tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_VerifyAccessToken_Malformed(t *testing.T) {
	svc := newTestService()
	for _, raw := range []string{"not.a.jwt", "invalid-token", "header.payload", ""} {
		_, err := svc.VerifyAccessToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
	}
}

func TestTokenService_VerifyAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := AccessClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestService().VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_VerifyAccessToken_OtherFaultsAreNotClassified(t *testing.T) {
	claims := AccessClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newTestService().VerifyAccessToken(raw)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidToken))
	assert.False(t, errors.Is(err, ErrTokenExpired))
	assert.ErrorIs(t, err, jwt.ErrTokenNotValidYet)
}

func TestTokenService_UserAndAdminTokensDoNotMix(t *testing.T) {
	svc := newTestService()

	user, err := svc.IssueAccessToken(5)
	require.NoError(t, err)
	admin, err := svc.IssueAdminToken(9)
	require.NoError(t, err)

	_, err = svc.VerifyAdminToken(user.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.VerifyAccessToken(admin.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := svc.VerifyAdminToken(admin.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), claims.AdminID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), admin.Exp, 5*time.Second)
}

func TestTokenService_IssueRefreshToken(t *testing.T) {
	svc := newTestService()

	a, err := svc.IssueRefreshToken()
	require.NoError(t, err)
	b, err := svc.IssueRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a.Raw, 80)
	assert.Regexp(t, "^[0-9a-f]{80}$", a.Raw)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), a.Exp, 5*time.Second)
}

func TestDecodeExpiry(t *testing.T) {
	svc := newTestService()
	tok, err := svc.IssueAccessToken(3)
	require.NoError(t, err)

	exp, ok := DecodeExpiry(tok.Token)
	require.True(t, ok)
	assert.Equal(t, tok.Exp.Unix(), exp.Unix())

	// signature is not checked
	other := NewTokenService("another-secret-another-secret-another", time.Minute, time.Hour, time.Hour)
	tok2, err := other.IssueAccessToken(3)
	require.NoError(t, err)
	_, ok = DecodeExpiry(tok2.Token)
	assert.True(t, ok)

	_, ok = DecodeExpiry("garbage")
	assert.False(t, ok)
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("abc")
	h2 := HashRefreshRaw("abc")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashRefreshRaw("abd"))
}
