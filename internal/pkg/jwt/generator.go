// internal/pkg/jwt/generator.go
package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	method   jwt.SigningMethod
	signKey  interface{}
	issuer   string
	audience string
	kid      string // key id for rotation
	Ttl      time.Duration
}

func NewGenerator(method jwt.SigningMethod, signKey interface{}, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		method:   method,
		signKey:  signKey,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		Ttl:      ttl,
	}
}

// Issued is a signed token with its id and expiry.
type Issued struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// Generate signs a token for sub that expires after the configured TTL.
func (g *Generator) Generate(sub Subject) (*Issued, error) {
	if g.signKey == nil {
		return nil, fmt.Errorf("jwt generator has no signing key")
	}

	now := time.Now()
	expiresAt := now.Add(g.Ttl)
	jti := ulid.Make().String()

	claims := &Claims{
		UserID: sub.ID,
		Email:  sub.Email,
		Name:   sub.Name,
		Role:   sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   strconv.FormatInt(sub.ID, 10),
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(g.method, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	signed, err := tok.SignedString(g.signKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Issued{Token: signed, JTI: jti, ExpiresAt: expiresAt}, nil
}
