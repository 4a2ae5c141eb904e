package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-api/internal/model"
	"github.com/iliyamo/shop-api/internal/repository"
	"github.com/iliyamo/shop-api/internal/utils"
)

// actorKey is the context key under which the authenticated identity is
// stored.  Handlers must use CurrentActor rather than reading it directly.
const actorKey = "actor"

// Actor is the resolved identity attached to the request context after a
// token passes the gate.  It is the only view of the caller downstream code
// gets; hash fields never travel with it.
type Actor struct {
	ID    string
	Email string
	Role  string
}

// UserSource resolves token subjects to live accounts.  *repository.UserRepo
// satisfies it; tests substitute an in-memory fake.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// AccessAuth returns middleware that gates requests on a valid access token.
func AccessAuth(p utils.TokenProfile, users UserSource) echo.MiddlewareFunc {
	return authGate(p, users, false)
}

// RefreshAuth returns middleware that gates requests on a valid refresh
// token.  On top of signature and expiry checks, the presented token must
// match the hash stored for the user: a token that was rotated away or
// cleared by logout fails here even though its signature is still good.
func RefreshAuth(p utils.TokenProfile, users UserSource) echo.MiddlewareFunc {
	return authGate(p, users, true)
}

// authGate implements the shared algorithm for both variants: extract the
// bearer token, verify it against the profile's secret, resolve the subject,
// and attach the actor to the context.  Every failure mode is a 401; the
// response body never explains which step failed.
func authGate(p utils.TokenProfile, users UserSource, wantRefresh bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.VerifyToken(p, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			user, err := users.GetByID(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
			}

			if wantRefresh {
				if user.RefreshTokenHash == nil || !utils.VerifyRefreshSecret(*user.RefreshTokenHash, raw) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
			}

			c.Set(actorKey, Actor{ID: user.ID, Email: user.Email, Role: user.Role})
			return next(c)
		}
	}
}

// CurrentActor returns the identity attached by AccessAuth or RefreshAuth.
// The second return value is false when no gate ran on this request.
func CurrentActor(c echo.Context) (Actor, bool) {
	a, ok := c.Get(actorKey).(Actor)
	return a, ok
}
