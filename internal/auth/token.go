package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tracktroop/backend/internal/domain"
)

// Claims is the signed assertion carried by a session token: who the
// subject is, their email and their role. Tokens are stateless, there is
// no server-side revocation.
type Claims struct {
	Email    string      `json:"email"`
	UserType domain.Role `json:"userType"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed session tokens.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenService(secret string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (s *TokenService) Issue(userID, email string, userType domain.Role) (string, error) {
	now := s.now()

	claims := Claims{
		Email:    email,
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify decodes the token and checks signature and expiry. The claims are
// only trusted when the returned error is nil; malformed, tampered and
// expired tokens all come back as errors from the jwt package
// (jwt.ErrTokenMalformed, jwt.ErrTokenSignatureInvalid, jwt.ErrTokenExpired).
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, err
	}

	return claims, nil
}
