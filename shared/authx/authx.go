// Package authx issues and verifies the signed session tokens handed out by
// the login endpoints. Tokens are HS256 over a shared secret; there is no
// external identity provider.
package authx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	RoleAdmin  = "admin"
	RoleTenant = "tenant"
)

// AuthContext is the verified identity attached to a request. TenantID,
// TenantName and RoomID are set only for tenant sessions.
type AuthContext struct {
	Role       string
	TenantID   string
	TenantName string
	RoomID     int
}

func (a AuthContext) IsAdmin() bool { return a.Role == RoleAdmin }

type contextKey struct{}

func WithAuth(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, auth)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	if v := ctx.Value(contextKey{}); v != nil {
		if a, ok := v.(AuthContext); ok {
			return a, true
		}
	}
	return AuthContext{}, false
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}, nil
}

// Mint signs a session token for the given identity.
func (i *TokenIssuer) Mint(auth AuthContext) (string, error) {
	if i == nil {
		return "", errors.New("token issuer not initialized")
	}
	if auth.Role != RoleAdmin && auth.Role != RoleTenant {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidToken, auth.Role)
	}
	now := i.now()
	claims := jwt.MapClaims{
		"role": auth.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}
	if auth.Role == RoleTenant {
		claims["sub"] = auth.TenantID
		claims["name"] = auth.TenantName
		claims["room"] = auth.RoomID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses and validates a session token and returns the identity it
// carries. All failure modes collapse to ErrInvalidToken.
func (i *TokenIssuer) Verify(rawToken string) (AuthContext, error) {
	if i == nil {
		return AuthContext{}, ErrInvalidToken
	}
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return AuthContext{}, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	_, err := i.parser.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return AuthContext{}, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	switch role {
	case RoleAdmin:
		return AuthContext{Role: RoleAdmin}, nil
	case RoleTenant:
		sub, _ := claims["sub"].(string)
		if strings.TrimSpace(sub) == "" {
			return AuthContext{}, ErrInvalidToken
		}
		room := 0
		if f, ok := claims["room"].(float64); ok {
			room = int(f)
		}
		name, _ := claims["name"].(string)
		return AuthContext{Role: RoleTenant, TenantID: sub, TenantName: name, RoomID: room}, nil
	default:
		return AuthContext{}, ErrInvalidToken
	}
}
