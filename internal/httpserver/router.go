package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/db"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/auth"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/metrics"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/ratelimit"
)

type Deps struct {
	DB      *gorm.DB
	Auth    *auth.Middleware
	Users   *UserHTTP
	Product *ProductHTTP
	Orders  *OrderHTTP
	Upload  *UploadHTTP

	// Optional.
	Metrics      *metrics.Metrics
	LoginLimiter *ratelimit.Limiter
	UploadDir    string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET(metrics.Path, echo.WrapHandler(d.Metrics.Handler()))
	}
	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	protect := d.Auth.Protect
	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("", d.Users.Register)
	if d.LoginLimiter != nil {
		users.POST("/login", d.Users.Login, d.LoginLimiter.Middleware)
	} else {
		users.POST("/login", d.Users.Login)
	}
	users.GET("/profile", d.Users.GetProfile, protect)
	users.PUT("/profile", d.Users.UpdateProfile, protect)
	users.GET("", d.Users.ListUsers, protect, auth.Admin)
	users.GET("/:id", d.Users.GetUser, protect, auth.Admin)
	users.PUT("/:id", d.Users.UpdateUser, protect, auth.Admin)
	users.DELETE("/:id", d.Users.DeleteUser, protect, auth.Admin)

	products := api.Group("/products")
	products.GET("", d.Product.GetProducts)
	products.GET("/top", d.Product.GetTopProducts)
	products.GET("/search", d.Product.SearchProducts)
	products.GET("/:id", d.Product.GetProduct)
	products.POST("", d.Product.CreateProduct, protect, auth.Admin)
	products.PUT("/:id", d.Product.UpdateProduct, protect, auth.Admin)
	products.DELETE("/:id", d.Product.DeleteProduct, protect, auth.Admin)
	products.POST("/:id/reviews", d.Product.CreateReview, protect)

	orders := api.Group("/orders", protect)
	orders.POST("", d.Orders.CreateOrder)
	orders.GET("/myorders", d.Orders.MyOrders)
	orders.GET("", d.Orders.ListOrders, auth.Admin)
	orders.GET("/:id", d.Orders.GetOrder)
	orders.PUT("/:id/pay", d.Orders.PayOrder)
	orders.PUT("/:id/deliver", d.Orders.DeliverOrder, auth.Admin)

	api.POST("/upload", d.Upload.Upload)
}
