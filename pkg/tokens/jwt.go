// Package tokens issues and validates short-lived service tokens used to
// authenticate calls to the triage agent.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the JWT claims carried on a service token.
type Claims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// Generator signs and validates HS256 service tokens with a shared secret.
type Generator struct {
	secret []byte
	ttl    time.Duration
}

// NewGenerator creates a Generator. ttl bounds token lifetime; zero means
// a 5 minute default.
func NewGenerator(secret string, ttl time.Duration) *Generator {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Generator{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate signs a token identifying the calling service.
func (g *Generator) Generate(service string) (string, error) {
	claims := Claims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(g.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "aegis-triage",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Validate parses and verifies a service token.
func (g *Generator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return g.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
