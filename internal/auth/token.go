// internal/auth/token.go
package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that does not verify.
var ErrInvalidToken = errors.New("invalid token")

var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// TokenLifetime is how long issued tokens stay valid; 0 issues tokens
	// without an expiry.
	TokenLifetime time.Duration
)

// parseTokenLifetime reads TOKEN_EXPIRE_TIME, a Go duration or "never".
func parseTokenLifetime() error {
	raw := strings.TrimSpace(os.Getenv("TOKEN_EXPIRE_TIME"))
	if raw == "" || raw == "never" || raw == "0" {
		TokenLifetime = 0
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("failed to parse TOKEN_EXPIRE_TIME: %w", err)
	}
	TokenLifetime = d
	return nil
}

// Init generates a signing key pair for this process. Tokens do not survive
// a restart unless InitFromPath is used instead.
func Init() error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	privateKey, publicKey = priv, pub
	return parseTokenLifetime()
}

// InitFromPath loads a raw ed25519 key pair from disk.
func InitFromPath(privatePath, publicPath string) error {
	priv, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	pub, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(priv) != ed25519.PrivateKeySize || len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("unexpected ed25519 key sizes %d/%d", len(priv), len(pub))
	}
	privateKey, publicKey = priv, pub
	return parseTokenLifetime()
}

// CreateJWT signs a token whose subject is playerID.
func CreateJWT(playerID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  playerID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if TokenLifetime > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(TokenLifetime))
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(privateKey)
}

// AuthenticateJWT verifies tokenString and returns its subject.
func AuthenticateJWT(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	t, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
