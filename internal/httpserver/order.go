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

type OrderHTTP struct {
	Svc *service.OrderService
}

func orderID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "Order not found").SetInternal(err)
	}
	return id, nil
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}

	user, _ := auth.CurrentUser(c)
	order, err := h.Svc.CreateOrder(ctx, user, req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("create_order_failed", "status", 404, "reason", "unknown product", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found").SetInternal(err)
		}
		return h.fail(c, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalPrice)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}

	user, _ := auth.CurrentUser(c)
	order, err := h.Svc.GetOrder(c.Request().Context(), id, user)
	if err != nil {
		return h.fail(c, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) PayOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.pay")

	id, err := orderID(c)
	if err != nil {
		return err
	}

	var req transport.PayOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("pay_order_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}

	user, _ := auth.CurrentUser(c)
	order, err := h.Svc.PayOrder(ctx, id, user, req)
	if err != nil {
		return h.fail(c, "pay_order_failed", err)
	}

	l.Info("pay_order_success", "order_id", id)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) DeliverOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.deliver")

	id, err := orderID(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.DeliverOrder(ctx, id)
	if err != nil {
		return h.fail(c, "deliver_order_failed", err)
	}

	l.Info("deliver_order_success", "order_id", id)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	user, _ := auth.CurrentUser(c)
	orders, err := h.Svc.MyOrders(c.Request().Context(), user.ID)
	if err != nil {
		return h.fail(c, "my_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	orders, err := h.Svc.ListOrders(c.Request().Context())
	if err != nil {
		return h.fail(c, "list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) fail(c echo.Context, op string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order")
	switch {
	case errors.Is(err, service.ErrNotFound):
		l.Warn(op, "status", 404, "reason", "order not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Order not found").SetInternal(err)
	case errors.Is(err, service.ErrValidation):
		l.Warn(op, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, reason(err, service.ErrValidation, "Invalid order data")).SetInternal(err)
	}
	l.Error(op, "status", 500, "reason", "storage error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
}
