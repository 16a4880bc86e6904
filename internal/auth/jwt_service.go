package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	// DefaultAccessTokenTTL is the lifetime of access tokens unless configured otherwise.
	DefaultAccessTokenTTL = 30 * time.Minute
	// DefaultRefreshTokenTTL is the lifetime of refresh tokens unless configured otherwise.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned by Decode for any unusable token. Bad signature,
// malformed payload and natural expiry are deliberately not distinguished.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the signed claims set carried by every token. The subject
// is always the user's email; user id and username ride along on access and
// refresh tokens, scoped tokens carry the subject alone.
type Claims struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// JWTService encodes and decodes signed, expiring claims sets with a shared
// secret and HS256. There is no key rotation.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService creates a new JWT service. Zero TTLs fall back to the defaults.
func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *JWTService) AccessTokenTTL() time.Duration { return s.accessTTL }

// RefreshTokenTTL returns the configured refresh token lifetime.
func (s *JWTService) RefreshTokenTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken generates a new access token for the user.
func (s *JWTService) IssueAccessToken(userID, email, username string) (string, error) {
	return s.sign(userID, email, username, s.accessTTL)
}

// IssueRefreshToken generates a new refresh token carrying the same claims as
// the access token, with the longer lifetime.
func (s *JWTService) IssueRefreshToken(userID, email, username string) (string, error) {
	return s.sign(userID, email, username, s.refreshTTL)
}

// IssueScopedToken generates a short-lived token whose only claim is the
// subject email. Used for email verification and password reset.
func (s *JWTService) IssueScopedToken(email string, ttl time.Duration) (string, error) {
	return s.sign("", email, "", ttl)
}

func (s *JWTService) sign(userID, email, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Decode validates a token string and returns its claims, or ErrInvalidToken.
func (s *JWTService) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RemainingLifetime returns how long a token stays naturally valid, without
// verifying it. Used to bound the revocation TTL; undecodable tokens get the
// refresh lifetime so they are still denied for as long as they could matter.
func (s *JWTService) RemainingLifetime(tokenString string) time.Duration {
	claims, err := s.Decode(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return s.refreshTTL
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return time.Minute
	}
	return remaining
}
