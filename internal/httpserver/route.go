package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/metrics"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/notify"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Auth    *AuthHTTP
	Catalog *CatalogHTTP
	Cart    *CartHTTP
	Order   *OrderHTTP
	Account *AccountHTTP

	Hub       *notify.Hub
	Metrics   *metrics.Metrics
	DB        Pinger
	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if d.DB != nil {
			if err := d.DB.Ping(ctx); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	authMW := authmw.NewBearerAuth(d.JWTSecret)

	e.GET("/hubs/orders", notify.Handler(d.Hub), authMW.RequireAuth)

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	products := v1.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, authMW.RequireAdmin)
	products.PATCH("/:id", d.Catalog.PatchProduct, authMW.RequireAdmin)
	products.DELETE("/:id", d.Catalog.DeleteProduct, authMW.RequireAdmin)

	categories := v1.Group("/categories")
	categories.GET("", d.Catalog.GetCategories)
	categories.GET("/:id", d.Catalog.GetCategory)
	categories.POST("", d.Catalog.CreateCategory, authMW.RequireAdmin)
	categories.PATCH("/:id", d.Catalog.PatchCategory, authMW.RequireAdmin)
	categories.DELETE("/:id", d.Catalog.DeleteCategory, authMW.RequireAdmin)

	suppliers := v1.Group("/suppliers")
	suppliers.GET("", d.Catalog.GetSuppliers)
	suppliers.GET("/:id", d.Catalog.GetSupplier)
	suppliers.POST("", d.Catalog.CreateSupplier, authMW.RequireAdmin)
	suppliers.PATCH("/:id", d.Catalog.PatchSupplier, authMW.RequireAdmin)
	suppliers.DELETE("/:id", d.Catalog.DeleteSupplier, authMW.RequireAdmin)

	shipping := v1.Group("/shippingoptions")
	shipping.GET("", d.Catalog.GetShippingOptions, authMW.OptionalAuth)
	shipping.GET("/:id", d.Catalog.GetShippingOption)
	shipping.POST("", d.Catalog.CreateShippingOption, authMW.RequireAdmin)
	shipping.PATCH("/:id", d.Catalog.PatchShippingOption, authMW.RequireAdmin)
	shipping.DELETE("/:id", d.Catalog.DeleteShippingOption, authMW.RequireAdmin)

	private := v1.Group("", authMW.RequireAuth)

	users := private.Group("/users")
	users.GET("", d.Auth.ListUsers)
	users.GET("/:userId", d.Auth.GetUser)
	users.DELETE("/:userId", d.Auth.DeleteUser)
	users.GET("/:userId/addresses", d.Account.GetAddresses)
	users.POST("/:userId/addresses", d.Account.CreateAddress)
	users.PUT("/:userId/addresses/:id", d.Account.UpdateAddress)
	users.DELETE("/:userId/addresses/:id", d.Account.DeleteAddress)
	users.POST("/:userId/addresses/:id/default", d.Account.SetDefaultAddress)
	users.GET("/:userId/paymentmethods", d.Account.GetPaymentMethods)
	users.POST("/:userId/paymentmethods", d.Account.CreatePaymentMethod)
	users.PUT("/:userId/paymentmethods/:id", d.Account.UpdatePaymentMethod)
	users.DELETE("/:userId/paymentmethods/:id", d.Account.DeletePaymentMethod)
	users.POST("/:userId/paymentmethods/:id/default", d.Account.SetDefaultPaymentMethod)
	users.GET("/:userId/wishlist", d.Account.GetWishlist)
	users.POST("/:userId/wishlist", d.Account.AddToWishlist)
	users.DELETE("/:userId/wishlist/:productId", d.Account.RemoveFromWishlist)

	cart := private.Group("/cartitems")
	cart.GET("/:userId", d.Cart.GetCart)
	cart.POST("/:userId", d.Cart.AddToCart)
	cart.DELETE("/:userId", d.Cart.ClearCart)
	cart.PUT("/:userId/:itemId", d.Cart.UpdateCartItem)
	cart.DELETE("/:userId/:itemId", d.Cart.DeleteCartItem)

	orders := private.Group("/orders")
	orders.GET("", d.Order.GetOrders)
	orders.POST("/checkout/:userId", d.Order.Checkout)
	orders.GET("/user/:userId", d.Order.GetUserOrders)
	orders.GET("/:id", d.Order.GetOrder)
	orders.PATCH("/:id", d.Order.UpdateStatus, authMW.RequireAdmin)
	orders.POST("/:id/cancel", d.Order.Cancel)
}
