package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainerrors "gasflow/internal/errors"
)

const (
	RoleAdmin  = "admin"
	RoleDriver = "driver"
)

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	secret       []byte
	adminExpiry  time.Duration
	driverExpiry time.Duration
}

func NewService(secret string, adminExpiry, driverExpiry time.Duration) *Service {
	return &Service{
		secret:       []byte(secret),
		adminExpiry:  adminExpiry,
		driverExpiry: driverExpiry,
	}
}

// GenerateToken issues an HS256 token for the given subject. Driver tokens
// live longer than admin tokens; the mobile client stays signed in for a week.
func (s *Service) GenerateToken(subject, role string) (string, error) {
	expiry := s.adminExpiry
	if role == RoleDriver {
		expiry = s.driverExpiry
	}

	now := time.Now()
	claims := Claims{
		Sub:  subject,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domainerrors.NewUnauthorized("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, domainerrors.NewUnauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domainerrors.NewUnauthorized("invalid token claims")
	}

	return claims, nil
}
