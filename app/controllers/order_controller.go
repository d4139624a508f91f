package controllers

import (
	"net/http"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/app/repositories"
	"github.com/reflaxess123/obedi/app/resources"
	"github.com/reflaxess123/obedi/app/services"
	"github.com/reflaxess123/obedi/pkg/response"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (c *OrderController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	if !decode(w, r, &in) {
		return
	}
	order, err := c.orders.Create(r.Context(), caller(r), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, resources.NewOrder(order))
}

// Index lists the caller's orders: ?role=customer|chef&status=.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	q := services.OrderQuery{}

	switch role := repositories.OrderRole(r.URL.Query().Get("role")); role {
	case repositories.RoleAny, repositories.RoleCustomer, repositories.RoleChef:
		q.Role = role
	default:
		response.ValidationError(w, map[string]string{"role": "The selected role is invalid."})
		return
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.OrderStatus(raw)
		if !status.Valid() {
			response.ValidationError(w, map[string]string{"status": "The selected status is invalid."})
			return
		}
		q.Status = &status
	}

	orders, err := c.orders.FindAll(r.Context(), caller(r), q)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewOrders(orders))
}

func (c *OrderController) History(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.GetHistory(r.Context(), caller(r))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewOrders(orders))
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	order, err := c.orders.FindOne(r.Context(), id, caller(r))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewOrder(order))
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var in services.UpdateStatusInput
	if !decode(w, r, &in) {
		return
	}
	order, err := c.orders.UpdateStatus(r.Context(), id, caller(r), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewOrder(order))
}
