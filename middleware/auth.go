package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AgentClaims identifies one agent across requests. Address is the agent's
// stable identity; Name is display-only.
type AgentClaims struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// IssueToken signs a bearer token for the agent, valid for 24 hours.
func IssueToken(address, name string) (string, error) {
	claims := AgentClaims{
		Address: address,
		Name:    name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// DecodeToken validates the bearer token and returns its claims.
func DecodeToken(tokenString string) (*AgentClaims, error) {
	claims := &AgentClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Address == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// AuthRequired rejects requests without a valid bearer token and stores the
// caller's address and name on the context for the handlers.
func AuthRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" || tokenString == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	claims, err := DecodeToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.Set("address", claims.Address)
	c.Set("name", claims.Name)
	c.Next()
}

// AuthOptional decodes a bearer token when present but never rejects. Used on
// read endpoints where identity only widens visibility.
func AuthOptional(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString != "" && tokenString != header {
		if claims, err := DecodeToken(tokenString); err == nil {
			c.Set("address", claims.Address)
			c.Set("name", claims.Name)
		}
	}
	c.Next()
}
