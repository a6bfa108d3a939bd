// Package auth carries the caller identity from the JWT middleware into the
// services through context.Context.
package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleShopper = "shopper"
	RoleAdmin   = "admin"
)

var ErrNoPrincipal = errors.New("no authenticated principal")

// Principal is the caller identity decoded from a token.
type Principal struct {
	UserID int64
	Name   string
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// IssueToken signs an HS256 token for p. The user id travels as a string
// claim since snowflake ids do not survive a float64 round trip.
func IssueToken(secret string, ttl time.Duration, p Principal) (string, error) {
	claims := jwt.MapClaims{
		"email": p.Email,
		"role":  p.Role,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	if p.UserID != 0 {
		claims["user_id"] = strconv.FormatInt(p.UserID, 10)
	}
	if p.Name != "" {
		claims["name"] = p.Name
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// PrincipalFromLocals decodes the token the JWT middleware stored under "user".
func PrincipalFromLocals(c *fiber.Ctx) (Principal, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return Principal{}, ErrNoPrincipal
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrNoPrincipal
	}

	p := Principal{Role: RoleShopper}
	if raw, ok := claims["user_id"]; ok {
		switch v := raw.(type) {
		case string:
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return Principal{}, ErrNoPrincipal
			}
			p.UserID = id
		case float64:
			p.UserID = int64(v)
		case int:
			p.UserID = int64(v)
		case int64:
			p.UserID = v
		default:
			return Principal{}, ErrNoPrincipal
		}
	}
	if v, ok := claims["email"].(string); ok {
		p.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		p.Name = v
	}
	if v, ok := claims["role"].(string); ok && v != "" {
		p.Role = v
	}
	if p.UserID == 0 && p.Role != RoleAdmin {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}

// JWT validates bearer tokens when present. Requests without an Authorization
// header pass through anonymously and the services decide what they may do.
func JWT(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid or expired token"})
		},
	})
}

// Middleware moves the token principal into the request's user context.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p, err := PrincipalFromLocals(c); err == nil {
			c.SetUserContext(WithPrincipal(c.UserContext(), p))
		}
		return c.Next()
	}
}
