package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"archiva/internal/platform/middleware"
	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
)

// Claims represents the JWT claims for our access tokens.
type Claims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
	System bool     `json:"system,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAccessToken mints a signed token for a user. System tokens are
// minted by operational tooling, not through this path.
func (s *JWTService) GenerateAccessToken(userID id.UserID, roles []string, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID.String(),
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	return newToken.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token, returning its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// MiddlewareAdapter bridges JWTService to the middleware.TokenValidator
// interface.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID: claims.UserID,
		Roles:  claims.Roles,
		System: claims.System,
	}, nil
}
