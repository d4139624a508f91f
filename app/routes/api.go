// Package routes declares the HTTP API.
package routes

import (
	"github.com/reflaxess123/obedi/app/controllers"
	"github.com/reflaxess123/obedi/pkg/auth"
	"github.com/reflaxess123/obedi/pkg/middleware"
	"github.com/reflaxess123/obedi/pkg/router"
)

// Controllers bundles the handlers mounted under /api/v1.
type Controllers struct {
	Auth    *controllers.AuthController
	Users   *controllers.UserController
	Lunches *controllers.LunchController
	Orders  *controllers.OrderController
}

// RegisterAPI mounts every /api/v1 route. Routes inside the protected
// groups require a bearer access token.
func RegisterAPI(r *router.Router, c Controllers, tokens *auth.Tokens) {
	requireAuth := middleware.Auth(tokens)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", "auth.register", c.Auth.Register)
	authGroup.Post("/login", "auth.login", c.Auth.Login)
	authGroup.Post("/google", "auth.google", c.Auth.Google)
	authGroup.Post("/refresh", "auth.refresh", c.Auth.Refresh)
	authGroup.Post("/logout", "auth.logout", c.Auth.Logout, requireAuth)
	authGroup.Get("/me", "auth.me", c.Auth.Me, requireAuth)

	api.Get("/users", "users.index", c.Users.Index)
	api.Get("/users/{id}", "users.show", c.Users.Show)
	api.Patch("/users/{id}", "users.update", c.Users.Update, requireAuth)

	api.Get("/lunches", "lunches.index", c.Lunches.Index)
	api.Get("/lunches/{id}", "lunches.show", c.Lunches.Show)

	lunches := api.Group("/lunches", requireAuth)
	lunches.Post("", "lunches.store", c.Lunches.Store)
	lunches.Patch("/{id}", "lunches.update", c.Lunches.Update)
	lunches.Delete("/{id}", "lunches.destroy", c.Lunches.Destroy)
	lunches.Post("/{id}/images", "lunches.images.store", c.Lunches.AddImage)
	lunches.Post("/{id}/images/upload", "lunches.images.upload", c.Lunches.UploadImage)
	lunches.Delete("/{id}/images/{imageId}", "lunches.images.destroy", c.Lunches.DestroyImage)

	orders := api.Group("/orders", requireAuth)
	orders.Post("", "orders.store", c.Orders.Store)
	orders.Get("", "orders.index", c.Orders.Index)
	orders.Get("/history", "orders.history", c.Orders.History)
	orders.Get("/{id}", "orders.show", c.Orders.Show)
	orders.Patch("/{id}/status", "orders.status", c.Orders.UpdateStatus)
}
