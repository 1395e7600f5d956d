package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agencypulse/server/internal/models"
)

// TokenIssuer identifies this service in the tokens it signs.
const TokenIssuer = "AgencyPulse"

// Claims carried by every access token.
type Claims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	AgencyName string `json:"agency_name,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 access token for the profile.
func IssueToken(p *models.Profile, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:      p.Email,
		Role:       p.Role,
		AgencyName: p.AgencyName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   fmt.Sprintf("%d", p.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates the signature, issuer and expiry, and returns the
// claims. Any deviation returns a descriptive error.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Issuer != TokenIssuer {
		return nil, errors.New("invalid token issuer")
	}

	return claims, nil
}
