// Package tokens issues and verifies the HS256 session tokens shared by the auth
// service and the gateway.
package tokens

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// Claims is the identity carried by a token.
type Claims struct {
	UserID uint
	Email  string
}

// Signer issues and parses tokens with one secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a Signer. Tokens expire after ttl.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the user. Each token carries a fresh jti.
func (s *Signer) Issue(userID uint, email string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    userID,
		"email": email,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry of tokenString.
func (s *Signer) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("invalid token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("invalid token")
	}
	// exp is optional in jwt-go v3; tokens without it are rejected here.
	if _, ok := mapClaims["exp"]; !ok {
		return Claims{}, fmt.Errorf("invalid token: missing exp")
	}
	id, ok := mapClaims["id"].(float64)
	if !ok || id <= 0 {
		return Claims{}, fmt.Errorf("invalid token: missing id")
	}
	email, _ := mapClaims["email"].(string)
	return Claims{UserID: uint(id), Email: email}, nil
}
