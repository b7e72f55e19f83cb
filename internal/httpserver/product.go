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
	"github.com/zapper13/Major-Mern-Stack-Project/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func productID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "Product not found").SetInternal(err)
	}
	return id, nil
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("pageNumber"), 1)
	res, err := h.Svc.ListProducts(ctx, c.QueryParam("keyword"), page)
	if err != nil {
		l.Error("get_products_failed", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products").SetInternal(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page)
	if err != nil {
		l.Error("search_products_failed", "status", 500, "reason", "cannot search products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search products").SetInternal(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ProductHTTP) GetTopProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_top")

	items, err := h.Svc.TopProducts(ctx)
	if err != nil {
		l.Error("get_top_products_failed", "status", 500, "reason", "cannot list top products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list top products").SetInternal(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	p, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	user, _ := auth.CurrentUser(c)
	p, err := h.Svc.CreateProduct(ctx, user.ID)
	if err != nil {
		return h.fail(c, "create_product_failed", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := productID(c)
	if err != nil {
		return err
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}

	p, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return h.fail(c, "update_product_failed", err)
	}

	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return h.fail(c, "delete_product_failed", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product removed"})
}

func (h *ProductHTTP) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_review")

	id, err := productID(c)
	if err != nil {
		return err
	}

	var req transport.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_review_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}

	user, _ := auth.CurrentUser(c)
	if _, err := h.Svc.AddReview(ctx, id, user, req); err != nil {
		return h.fail(c, "create_review_failed", err)
	}

	l.Info("create_review_success", "product_id", id, "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Review added"})
}

func (h *ProductHTTP) fail(c echo.Context, op string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product")
	switch {
	case errors.Is(err, service.ErrNotFound):
		l.Warn(op, "status", 404, "reason", "product not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found").SetInternal(err)
	case errors.Is(err, service.ErrConflict):
		l.Warn(op, "status", 400, "reason", "already reviewed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Product already reviewed").SetInternal(err)
	case errors.Is(err, service.ErrValidation):
		l.Warn(op, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, reason(err, service.ErrValidation, "Invalid product data")).SetInternal(err)
	}
	l.Error(op, "status", 500, "reason", "storage error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
}
