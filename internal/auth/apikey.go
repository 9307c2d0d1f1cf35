package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	HeaderName = "X-API-Key"
	QueryParam = "api_key"
)

// ErrUnauthorized is returned for a missing or mismatching credential.
var ErrUnauthorized = errors.New("unauthorized: invalid api key")

// Gate checks device credentials against the single shared secret.
type Gate struct {
	secret []byte
}

func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Authenticate compares credential with the secret in constant time.
func (g *Gate) Authenticate(credential string) error {
	if credential == "" || len(g.secret) == 0 {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(credential), g.secret) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Credential extracts the presented key: the X-API-Key header, or the
// api_key query parameter when the header is absent. Values are compared
// as sent, so a padded key does not match.
func Credential(c *gin.Context) string {
	if key := c.GetHeader(HeaderName); key != "" {
		return key
	}
	return c.Query(QueryParam)
}

// Middleware rejects requests whose credential does not match before any
// handler runs. Devices writing telemetry must pass it; readers never do.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := g.Authenticate(Credential(c)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}
