// Package middleware holds the gin middleware for authentication, team
// membership and request logging.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/utils"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

const (
	authIDKey   = "auth_id"
	authNameKey = "auth_name"
	userKey     = "user"
)

// Claims identifies the caller. The subject is the auth ID a team user is
// registered under.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// JWTManager handles bearer token generation and validation
type JWTManager struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey, issuer string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
	}
}

// Generate creates a signed token for an auth ID
func (m *JWTManager) Generate(authID, name string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   authID,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Validate parses a token and returns its claims
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithIssuer(m.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserResolver finds the active team user for an auth ID
type UserResolver interface {
	Resolve(ctx context.Context, authID string) (*models.User, error)
}

// RequireToken rejects requests without a valid bearer token
func RequireToken(tokens *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			utils.HandleError(c, utils.NewUnauthorizedError(ErrMissingToken.Error()))
			return
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			utils.HandleError(c, utils.NewUnauthorizedError(ErrInvalidToken.Error()))
			return
		}

		SetAuth(c, claims.Subject, claims.Name)
		c.Next()
	}
}

// RequireMember loads the caller's team user. Unknown callers get 403, as
// do revoked ones.
func RequireMember(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Resolve(c.Request.Context(), AuthID(c))
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) || errors.Is(err, utils.ErrForbidden) {
				utils.HandleError(c, utils.NewForbiddenError("no access to a team"))
				return
			}
			utils.HandleError(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireManager only lets managers through. It must run after RequireMember.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsManager() {
			utils.HandleError(c, utils.NewForbiddenError("manager access required"))
			return
		}
		c.Next()
	}
}

// AuthID returns the token subject of the request
func AuthID(c *gin.Context) string {
	return c.GetString(authIDKey)
}

// AuthName returns the display name carried by the token
func AuthName(c *gin.Context) string {
	return c.GetString(authNameKey)
}

// CurrentUser returns the team user resolved by RequireMember
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// TeamID returns the caller's team
func TeamID(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return user.TeamID
	}
	return ""
}

// SetAuth stores the token subject and display name on the context
func SetAuth(c *gin.Context, authID, name string) {
	c.Set(authIDKey, authID)
	c.Set(authNameKey, name)
}

// SetUser stores a resolved user on the context; tests use it to skip
// token handling
func SetUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
}
