package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/teraonavi/navi-admin/internal/authz"
	"github.com/teraonavi/navi-admin/internal/config"
	"github.com/teraonavi/navi-admin/internal/models"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "navi_session"

const actorLocal = "actor"

// sessionClaims carries the actor's identity inside the signed token.
// A superuser session has no user or company id.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID    uint64        `json:"uid,omitempty"`
	CompanyID uint64        `json:"cid,omitempty"`
	RoleID    models.RoleID `json:"rid,omitempty"`
	Superuser bool          `json:"su,omitempty"`
}

// IssueSessionToken signs a session token for an authenticated actor.
func IssueSessionToken(cfg *config.Config, actor authz.Actor) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.SessionTTL)),
		},
		UserID:    actor.UserID,
		CompanyID: actor.CompanyID,
		RoleID:    actor.Role,
		Superuser: actor.Superuser,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// SetSessionCookie writes the session token onto the response.
func SetSessionCookie(c *fiber.Ctx, cfg *config.Config, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(cfg.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SessionAuth resolves the session cookie into an actor and stores it
// in the request context. A missing or invalid cookie leaves an
// unauthenticated actor; handlers decide what that means per action.
func SessionAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			c.Locals(actorLocal, authz.Actor{})
			return c.Next()
		}

		actor, err := parseSessionToken(cfg, token)
		if err != nil {
			c.Locals(actorLocal, authz.Actor{})
			return c.Next()
		}

		c.Locals(actorLocal, actor)
		return c.Next()
	}
}

// ActorFromCtx returns the actor resolved by SessionAuth.
func ActorFromCtx(c *fiber.Ctx) authz.Actor {
	if actor, ok := c.Locals(actorLocal).(authz.Actor); ok {
		return actor
	}
	return authz.Actor{}
}

func parseSessionToken(cfg *config.Config, token string) (authz.Actor, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return authz.Actor{}, err
	}
	if !parsed.Valid {
		return authz.Actor{}, fmt.Errorf("invalid session token")
	}

	return authz.Actor{
		Authenticated: true,
		Superuser:     claims.Superuser,
		UserID:        claims.UserID,
		CompanyID:     claims.CompanyID,
		Role:          claims.RoleID,
	}, nil
}
