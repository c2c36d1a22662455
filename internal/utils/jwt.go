package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding and decoding functions
	"errors"        // sentinel errors for token classification
	"fmt"           // error wrapping
	"time"          // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// RefreshTokenBytes is the amount of randomness in a refresh token.  Hex
// encoding doubles it, so clients receive an 80-character string.
const RefreshTokenBytes = 40

// Verification failures.  ErrTokenExpired and ErrInvalidToken cover the
// cases clients branch on; anything else is returned wrapped as-is.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("token is not valid")
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived token used to obtain new access tokens.
// The Raw field contains the raw token string returned to the client.  The Exp
// field records when it expires.  In the database only a SHA-256 hash of the
// raw string is stored.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// AccessClaims is the payload of a user access token.
type AccessClaims struct {
	UserID uint64 `json:"userId"`
	jwt.RegisteredClaims
}

// AdminClaims is the payload of an admin token.  The distinct claim name
// keeps user tokens from passing as admin tokens and vice versa.
type AdminClaims struct {
	AdminID uint64 `json:"adminId"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies every credential the API hands out.
// It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	adminTTL   time.Duration
	now        func() time.Time
}

// NewTokenService builds a TokenService signing with secret.
func NewTokenService(secret string, accessTTL, refreshTTL, adminTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		adminTTL:   adminTTL,
		now:        time.Now,
	}
}

// WithClock returns a copy that reads time from now.  Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// AccessTTL is the lifetime of access tokens issued by s.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// IssueAccessToken builds and signs an HS256 JWT binding userID with
// issued-at and expiry claims.
func (s *TokenService) IssueAccessToken(userID uint64) (AccessToken, error) {
	now := s.now().UTC()
	exp := now.Add(s.accessTTL)
	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// IssueAdminToken signs an admin token valid for the admin TTL.
func (s *TokenService) IssueAdminToken(adminID uint64) (AccessToken, error) {
	now := s.now().UTC()
	exp := now.Add(s.adminTTL)
	claims := AdminClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign admin token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// IssueRefreshToken returns a cryptographically secure random token and its
// expiration time.  Persisting it is the caller's job.
func (s *TokenService) IssueRefreshToken() (RefreshToken, error) {
	raw, err := randomHex(RefreshTokenBytes)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: raw, Exp: s.now().UTC().Add(s.refreshTTL)}, nil
}

// VerifyAccessToken checks signature, algorithm and expiry and returns the
// claims of a user token.
func (s *TokenService) VerifyAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing userId claim", ErrInvalidToken)
	}
	return claims, nil
}

// VerifyAdminToken is VerifyAccessToken for admin tokens.
func (s *TokenService) VerifyAdminToken(raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := s.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.AdminID == 0 {
		return nil, fmt.Errorf("%w: missing adminId claim", ErrInvalidToken)
	}
	return claims, nil
}

func (s *TokenService) parse(raw string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject anything that is not HMAC, including "none".
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return classify(err)
	}
	if !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return err
}

// DecodeExpiry reads the exp claim without verifying the signature.  It is
// only a cheap pre-check; callers must still verify the token.
func DecodeExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a hex
// string.  Storing only the hash in the database prevents attackers from
// using stolen database entries to refresh sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
