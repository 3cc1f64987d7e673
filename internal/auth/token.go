package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is the only failure Decode reports. Malformed,
// expired and signature-mismatched tokens are indistinguishable to
// the caller so a probing client learns nothing about why a token
// was rejected.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type TokenService struct {
	issuer          string
	signingKey      []byte
	signingMethod   jwt.SigningMethod
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewTokenService(
	issuer string,
	signingKey string,
	algorithm string,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) (*TokenService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unsupported signing algorithm: " + algorithm)
	}

	return &TokenService{
		issuer:          issuer,
		signingKey:      []byte(signingKey),
		signingMethod:   method,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}, nil
}

func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// IssueAccess signs a short-lived access token with the given
// subject, usually a user ID.
func (s *TokenService) IssueAccess(subject string) (string, time.Time, error) {
	return s.issue(subject, TokenTypeAccess, s.accessTokenTTL)
}

// IssueRefresh signs a refresh token. Refresh tokens only mint new
// access tokens and must never authenticate a request directly.
func (s *TokenService) IssueRefresh(subject string) (string, time.Time, error) {
	return s.issue(subject, TokenTypeRefresh, s.refreshTokenTTL)
}

func (s *TokenService) issue(subject, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(s.signingMethod, Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies the signature and expiry atomically and returns
// the claims only if both are valid. Tokens are stateless: a decoded
// token cannot have been revoked, only expired.
func (s *TokenService) Decode(token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return s.signingKey, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
