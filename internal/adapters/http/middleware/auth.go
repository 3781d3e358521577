package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// AuthSubjectKey holds the authenticated caller id in the Gin context.
	AuthSubjectKey = "auth_subject"
	// AuthRoleKey holds the caller's role.
	AuthRoleKey = "auth_role"
)

// AuthClaims is what a validated token resolves to.
type AuthClaims struct {
	Subject string
	Role    string
	Exp     time.Time
}

// AuthConfig configures the bearer-token middleware.
type AuthConfig struct {
	TokenValidator func(token string) (*AuthClaims, error)
	// SkipPaths bypass authentication entirely.
	SkipPaths []string
}

// Auth validates the Authorization: Bearer header and stores the
// resolved claims in the Gin context.
func Auth(config *AuthConfig) gin.HandlerFunc {
	skipMap := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithUnauthorized(c, "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithUnauthorized(c, "Invalid authorization header format")
			return
		}

		token := parts[1]
		if token == "" {
			abortWithUnauthorized(c, "Token is required")
			return
		}

		claims, err := config.TokenValidator(token)
		if err != nil {
			abortWithUnauthorized(c, "Invalid or expired token")
			return
		}

		if claims.Exp.Before(time.Now()) {
			abortWithUnauthorized(c, "Token has expired")
			return
		}

		c.Set(AuthSubjectKey, claims.Subject)
		c.Set(AuthRoleKey, claims.Role)

		c.Next()
	}
}

func abortWithUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
		"request_id": GetRequestID(c),
		"timestamp":  time.Now().UTC(),
	})
}

// RequireRole gates a route group on the caller's role. Must run after
// Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	roleMap := make(map[string]bool)
	for _, role := range roles {
		roleMap[role] = true
	}

	return func(c *gin.Context) {
		role := GetAuthRole(c)
		if role == "" || !roleMap[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient permissions",
				},
				"request_id": GetRequestID(c),
				"timestamp":  time.Now().UTC(),
			})
			return
		}

		c.Next()
	}
}

// GetAuthSubject returns the authenticated caller id, or "".
func GetAuthSubject(c *gin.Context) string {
	if subject, exists := c.Get(AuthSubjectKey); exists {
		if s, ok := subject.(string); ok {
			return s
		}
	}
	return ""
}

// GetAuthRole returns the caller's role, or "".
func GetAuthRole(c *gin.Context) string {
	if role, exists := c.Get(AuthRoleKey); exists {
		if s, ok := role.(string); ok {
			return s
		}
	}
	return ""
}

// ===== Token validators =====

// JWTTokenValidator validates HMAC-signed JWTs with the given secret.
// The subject claim identifies the caller; the optional "role" claim
// carries the role.
func JWTTokenValidator(secret string) func(token string) (*AuthClaims, error) {
	key := []byte(secret)

	return func(tokenString string) (*AuthClaims, error) {
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return key, nil
		})
		if err != nil {
			return nil, err
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			return nil, errors.New("invalid token claims")
		}

		subject, _ := claims.GetSubject()
		if subject == "" {
			return nil, errors.New("token has no subject")
		}

		exp, err := claims.GetExpirationTime()
		if err != nil || exp == nil {
			return nil, errors.New("token has no expiration")
		}

		role, _ := claims["role"].(string)

		return &AuthClaims{
			Subject: subject,
			Role:    role,
			Exp:     exp.Time,
		}, nil
	}
}

// IssueToken mints an HMAC JWT for a subject. Used by tests and local
// tooling, not exposed over the API.
func IssueToken(secret, subject, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": jwt.NewNumericDate(time.Now().Add(ttl)),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	if role != "" {
		claims["role"] = role
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// StaticTokenValidator accepts exactly one pre-shared token. Meant for
// development environments without an identity provider.
func StaticTokenValidator(expected, subject string) func(token string) (*AuthClaims, error) {
	return func(token string) (*AuthClaims, error) {
		if token != expected {
			return nil, errors.New("unknown token")
		}
		return &AuthClaims{
			Subject: subject,
			Role:    "admin",
			Exp:     time.Now().Add(24 * time.Hour),
		}, nil
	}
}
