package controllers

import (
	"net/http"

	"github.com/reflaxess123/obedi/app/resources"
	"github.com/reflaxess123/obedi/app/services"
	"github.com/reflaxess123/obedi/pkg/response"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (c *UserController) Index(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.List(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewUsers(users))
}

func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	user, err := c.users.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewUser(user))
}

// Update changes the caller's own profile.
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if id != caller(r) {
		response.Error(w, http.StatusForbidden, "You can only update your own profile")
		return
	}

	var in services.UserUpdate
	if !decode(w, r, &in) {
		return
	}
	user, err := c.users.Update(r.Context(), id, in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewUser(user))
}
