package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casekart/casekart/internal/handlers"
	authmw "github.com/casekart/casekart/internal/middleware/auth"
)

type Deps struct {
	Guard    *authmw.Guard
	Auth     *handlers.AuthHandler
	Password *handlers.PasswordHandler
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Order    *handlers.OrderHandler
	Search   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", d.Auth.SignUp)
	auth.POST("/login", d.Auth.LogIn)
	auth.POST("/logout", d.Auth.LogOut, d.Guard.RequireUser)
	auth.GET("/me", d.Auth.Me, d.Guard.RequireUser)
	auth.POST("/send-otp", d.Password.SendOTP)
	auth.POST("/update-password", d.Password.UpdatePassword)

	api.GET("/users/getUserId/:email", d.Auth.GetUserIDByEmail)

	api.GET("/products", d.Product.GetAll)
	api.GET("/products/detail/:id", d.Product.GetDetail)
	if d.Search != nil {
		api.GET("/products/search", d.Search.Search)
	}
	api.GET("/products/:category", d.Product.GetByCategory)
	api.POST("/add-products", d.Product.Create, d.Guard.RequireAdmin)
	api.PATCH("/products/:id", d.Product.Update, d.Guard.RequireAdmin)

	cart := api.Group("/cart", d.Guard.RequireUser)
	cart.POST("/add", d.Cart.Add)
	cart.GET("/:userId", d.Cart.Get)
	cart.PATCH("/:userId/item/:productId", d.Cart.SetQuantity)
	cart.DELETE("/:userId/item/:productId", d.Cart.Remove)

	api.POST("/orders", d.Order.Place, d.Guard.RequireUser)
	api.GET("/orders", d.Order.ListMine, d.Guard.RequireUser)

	admin := api.Group("/admin", d.Guard.RequireAdmin)
	admin.GET("/orders", d.Order.AdminList)
	admin.PATCH("/orders/:orderId", d.Order.AdminSetStatus)
}
