// Package auth guards routes with Bearer tokens and the admin flag.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/tokens"
)

const (
	tokenKey = "token"
	userKey  = "user"

	MsgNoToken     = "Not authorized, no token"
	MsgTokenFailed = "Not authorized, token failed"
	MsgNotAdmin    = "Not authorized as an admin"
)

// UserLookup is implemented by repo.GormRepo.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Middleware struct {
	Secret []byte
	Users  UserLookup

	jwt echo.MiddlewareFunc
}

func New(secret []byte, users UserLookup) *Middleware {
	m := &Middleware{Secret: secret, Users: users}
	m.jwt = echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: "HS256",
		ContextKey:    tokenKey,
		TokenLookup:   "header:Authorization:Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(tokens.Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "auth")
			if errors.Is(err, echojwt.ErrJWTMissing) {
				l.Warn("protect_failed", "status", http.StatusUnauthorized, "reason", "no token")
				return echo.NewHTTPError(http.StatusUnauthorized, MsgNoToken).SetInternal(err)
			}
			l.Warn("protect_failed", "status", http.StatusUnauthorized, "reason", "bad token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenFailed).SetInternal(err)
		},
	})
	return m
}

// Protect verifies the Bearer token and loads the caller into the context.
// A token whose user no longer exists fails like a bad signature.
func (m *Middleware) Protect(next echo.HandlerFunc) echo.HandlerFunc {
	return m.jwt(func(c echo.Context) error {
		tkn, ok := c.Get(tokenKey).(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenFailed)
		}
		claims, ok := tkn.Claims.(*tokens.Claims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenFailed)
		}

		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenFailed).SetInternal(err)
		}

		ctx := c.Request().Context()
		user, err := m.Users.GetUserByID(ctx, id)
		if err != nil {
			logging.FromContext(ctx).Warn("protect_failed", "status", http.StatusUnauthorized, "reason", "user lookup", "user_id", id, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenFailed).SetInternal(err)
		}

		c.Set(userKey, user)
		return next(c)
	})
}

// Admin must run after Protect.
func Admin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, MsgNotAdmin)
		}
		return next(c)
	}
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(userKey).(*models.User)
	return u, ok && u != nil
}
