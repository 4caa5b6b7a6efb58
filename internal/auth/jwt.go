package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/models"
)

// Constants for context keys
const (
	UserIDKey = "user_id"
	ClaimsKey = "auth_claims"
)

// DefaultTokenTTL is how long an issued token stays valid
const DefaultTokenTTL = 10 * time.Hour

// Claims represents JWT claims
type Claims struct {
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token operations for a single signing key
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateToken generates a JWT token for a user
func (j *JWTService) GenerateToken(claims Claims) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// Keyring holds one JWT service per role; each role signs with its own key
type Keyring struct {
	services map[models.Role]*JWTService
}

// NewKeyring creates a keyring for the student and secretary roles
func NewKeyring(studentSecret, secretarySecret string, ttl time.Duration) *Keyring {
	return &Keyring{
		services: map[models.Role]*JWTService{
			models.RoleStudent:   NewJWTService(studentSecret, ttl),
			models.RoleSecretary: NewJWTService(secretarySecret, ttl),
		},
	}
}

// Issue signs a token for the given account with its role's key
func (k *Keyring) Issue(userID uuid.UUID, email string, role models.Role) (string, time.Time, error) {
	svc, ok := k.services[role]
	if !ok {
		return "", time.Time{}, fmt.Errorf("unknown role: %s", role)
	}
	return svc.GenerateToken(Claims{UserID: userID, Email: email, Role: role})
}

// Validate verifies a token against the given role's key
func (k *Keyring) Validate(token string, role models.Role) (*Claims, error) {
	svc, ok := k.services[role]
	if !ok {
		return nil, fmt.Errorf("unknown role: %s", role)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != role {
		return nil, fmt.Errorf("token role %q does not match %q", claims.Role, role)
	}
	return claims, nil
}

// ValidateAny tries every role's key and returns the first match
func (k *Keyring) ValidateAny(token string) (*Claims, error) {
	for _, role := range []models.Role{models.RoleSecretary, models.RoleStudent} {
		if claims, err := k.Validate(token, role); err == nil {
			return claims, nil
		}
	}
	return nil, fmt.Errorf("invalid token")
}

// tokenFromRequest reads the bearer token, falling back to the auth_token cookie
func tokenFromRequest(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return "", false
		}
		return tokenString, true
	}
	if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.UserID)
	c.Set("user_email", claims.Email)
	c.Set("user_role", claims.Role)
}

// ClaimsFrom returns the claims stored by the auth middleware, if any
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// RequireRole creates a middleware that only admits tokens signed with the role's key
func RequireRole(keys *Keyring, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := tokenFromRequest(c)
		if !ok {
			abort(c, errors.Unauthorized("Authentication required", nil))
			return
		}

		claims, err := keys.Validate(tokenString, role)
		if err != nil {
			abort(c, errors.Unauthorized("Invalid token", err))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func abort(c *gin.Context, err *errors.AppError) {
	c.AbortWithStatusJSON(errors.HTTPStatus(err), err.Body())
}

// OptionalAuth stores claims when a valid token of any role is presented.
// It never aborts the request.
func OptionalAuth(keys *Keyring) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := tokenFromRequest(c); ok {
			if claims, err := keys.ValidateAny(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}
