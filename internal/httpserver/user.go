package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/auth"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/service"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user data").SetInternal(err)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("register_failed", "status", 400, "reason", "missing fields", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user data").SetInternal(err)
		case errors.Is(err, service.ErrConflict):
			l.Warn("register_failed", "status", 400, "reason", "email taken", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists").SetInternal(err)
		}
		l.Error("register_failed", "status", 500, "reason", "cannot create user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user").SetInternal(err)
	}

	l.Info("register_success", "user_id", res.ID)
	return c.JSON(http.StatusCreated, res)
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			l.Warn("login_failed", "status", 401, "reason", "bad credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password").SetInternal(err)
		}
		l.Error("login_failed", "status", 500, "reason", "cannot log in", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in").SetInternal(err)
	}

	l.Info("login_success", "user_id", res.ID)
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) GetProfile(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "user.get_profile")

	user, ok := auth.CurrentUser(c)
	if !ok {
		l.Warn("get_profile_failed", "status", 404, "reason", "no user in context")
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(user, ""))
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_profile")

	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_profile_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}

	res, err := h.Svc.UpdateProfile(ctx, user.ID, req)
	if err != nil {
		return h.fail(c, "update_profile_failed", err)
	}

	l.Info("update_profile_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return h.fail(c, "list_users_failed", err)
	}

	out := make([]*transport.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, transport.NewUserResponse(&users[i], ""))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found").SetInternal(err)
	}

	user, err := h.Svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(user, ""))
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_user")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found").SetInternal(err)
	}

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_user_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}

	res, err := h.Svc.UpdateUser(ctx, id, req)
	if err != nil {
		return h.fail(c, "update_user_failed", err)
	}

	l.Info("update_user_success", "user_id", id)
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_user")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found").SetInternal(err)
	}

	if err := h.Svc.DeleteUser(ctx, id); err != nil {
		return h.fail(c, "delete_user_failed", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "User removed"})
}

func (h *UserHTTP) fail(c echo.Context, op string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "user")
	switch {
	case errors.Is(err, service.ErrNotFound):
		l.Warn(op, "status", 404, "reason", "user not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "User not found").SetInternal(err)
	case errors.Is(err, service.ErrConflict):
		l.Warn(op, "status", 400, "reason", "email taken", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists").SetInternal(err)
	case errors.Is(err, service.ErrValidation):
		l.Warn(op, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, reason(err, service.ErrValidation, "Invalid user data")).SetInternal(err)
	}
	l.Error(op, "status", 500, "reason", "storage error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
}
