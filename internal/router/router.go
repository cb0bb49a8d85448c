package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"
)

// maxBodySize leaves room for a 1MB photo plus the rest of the product form.
const maxBodySize = "2M"

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Order    *handler.OrderHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Payment  *handler.PaymentHandler
}

// Register wires routes and middleware. requireSignIn and isAdmin guard the
// signed-in and admin-only routes.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	requireSignIn echo.MiddlewareFunc,
	isAdmin echo.MiddlewareFunc,
	h Handlers,
) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit(maxBodySize))

	e.Validator = NewCustomValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")
	admin := []echo.MiddlewareFunc{requireSignIn, isAdmin}

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
	authGroup.POST("/logout", h.Auth.Logout, requireSignIn)
	authGroup.GET("/test", h.Auth.Test, admin...)
	authGroup.GET("/user-auth", h.Auth.UserAuth, requireSignIn)
	authGroup.GET("/admin-auth", h.Auth.AdminAuth, admin...)
	authGroup.PUT("/profile", h.Auth.UpdateProfile, requireSignIn)
	authGroup.GET("/orders", h.Order.Orders, requireSignIn)
	authGroup.GET("/all-orders", h.Order.AllOrders, admin...)
	authGroup.PUT("/order-status/:orderId", h.Order.SetStatus, admin...)
	authGroup.GET("/all-users", h.User.ListUsers, admin...)

	category := api.Group("/category")
	category.POST("/create-category", h.Category.Create, admin...)
	category.PUT("/update-category/:id", h.Category.Update, admin...)
	category.GET("/get-category", h.Category.List)
	category.GET("/single-category/:slug", h.Category.Single)
	category.DELETE("/delete-category/:id", h.Category.Delete, admin...)

	product := api.Group("/product")
	product.POST("/create-product", h.Product.Create, admin...)
	product.PUT("/update-product/:pid", h.Product.Update, admin...)
	product.GET("/get-product", h.Product.List)
	product.GET("/get-product/:slug", h.Product.Single)
	product.GET("/product-photo/:pid", h.Product.Photo)
	product.DELETE("/delete-product/:pid", h.Product.Delete, admin...)
	product.POST("/product-filters", h.Product.Filter)
	product.GET("/product-count", h.Product.Count)
	product.GET("/product-list/:page", h.Product.Page)
	product.GET("/search/:keyword", h.Product.Search)
	product.GET("/related-product/:pid/:cid", h.Product.Related)
	product.GET("/product-category/:slug", h.Product.ByCategory)
	product.GET("/braintree/token", h.Payment.Token)
	product.POST("/braintree/payment", h.Payment.Pay, requireSignIn)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator returns the validator Register installs.
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
