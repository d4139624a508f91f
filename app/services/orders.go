package services

import (
	"context"

	"github.com/reflaxess123/obedi/app/events"
	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/app/repositories"
	"github.com/reflaxess123/obedi/pkg/apperror"
	"github.com/reflaxess123/obedi/pkg/event"
)

// CreateOrderInput is the body of POST /orders. Repeated lunch ids each
// become their own item.
type CreateOrderInput struct {
	ChefID   uint    `json:"chefId"   validate:"required"`
	LunchIDs []uint  `json:"lunchIds" validate:"gte=1"`
	Comment  *string `json:"comment"`
}

// UpdateStatusInput is the body of PATCH /orders/{id}/status.
type UpdateStatusInput struct {
	Status  models.OrderStatus `json:"status"  validate:"required,in=PENDING,ACCEPTED,COOKING,READY,DELIVERED,CANCELLED"`
	Comment *string            `json:"comment"`
}

// OrderQuery filters FindAll.
type OrderQuery struct {
	Role   repositories.OrderRole
	Status *models.OrderStatus
}

// OrderService places orders and moves them through their statuses. It
// checks who may request a status, not which status may follow which.
type OrderService struct {
	orders *repositories.OrderRepository
	users  *UserService
	bus    *event.Bus
}

// NewOrderService wires the order engine. bus may be nil.
func NewOrderService(orders *repositories.OrderRepository, users *UserService, bus *event.Bus) *OrderService {
	return &OrderService{orders: orders, users: users, bus: bus}
}

// Create places an order from customerID with the chef named in the input.
// Every lunch must belong to that chef.
func (s *OrderService) Create(ctx context.Context, customerID uint, in CreateOrderInput) (*models.Order, error) {
	if customerID == in.ChefID {
		return nil, apperror.BadRequest("Cannot order from yourself")
	}

	chef, err := s.users.FindByID(ctx, in.ChefID)
	if err != nil {
		return nil, err
	}
	if chef == nil {
		return nil, apperror.NotFound("Chef not found")
	}

	order := &models.Order{
		CustomerID: customerID,
		ChefID:     in.ChefID,
		Comment:    in.Comment,
		Status:     models.StatusPending,
		Items:      make([]models.OrderItem, 0, len(in.LunchIDs)),
		History:    []models.OrderHistory{{Status: models.StatusPending}},
	}
	for _, id := range in.LunchIDs {
		order.Items = append(order.Items, models.OrderItem{LunchID: id})
	}

	err = s.orders.Transaction(ctx, func(tx *repositories.OrderRepository) error {
		if ids := distinct(in.LunchIDs); len(ids) > 0 {
			n, err := tx.CountChefLunches(ctx, in.ChefID, ids)
			if err != nil {
				return err
			}
			if n != int64(len(ids)) {
				return apperror.BadRequest("Some lunches do not belong to the specified chef")
			}
		}
		return tx.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.bus.Fire(ctx, events.OrderCreated, events.OrderCreatedPayload{
		OrderID:    order.ID,
		CustomerID: customerID,
		ChefID:     in.ChefID,
		Items:      len(order.Items),
	})
	return s.load(ctx, order.ID)
}

// FindAll lists the caller's orders, newest first.
func (s *OrderService) FindAll(ctx context.Context, callerID uint, q OrderQuery) ([]models.Order, error) {
	return s.orders.FindAll(ctx, repositories.OrderFilter{
		UserID: callerID,
		Role:   q.Role,
		Status: q.Status,
	})
}

// FindOne returns an order the caller takes part in.
func (s *OrderService) FindOne(ctx context.Context, id, callerID uint) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NotFound("Order not found")
	}
	if !party(order, callerID) {
		return nil, apperror.Forbidden("Access denied")
	}
	return order, nil
}

// UpdateStatus records a new status. Either party may cancel; any other
// status may only be set by the chef. The status column and the history
// entry are written together, and a concurrent change of the status
// between read and write is a Conflict.
func (s *OrderService) UpdateStatus(ctx context.Context, id, callerID uint, in UpdateStatusInput) (*models.Order, error) {
	if !in.Status.Valid() {
		return nil, apperror.BadRequest("Invalid order status")
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NotFound("Order not found")
	}

	if in.Status == models.StatusCancelled {
		if !party(order, callerID) {
			return nil, apperror.Forbidden("Access denied")
		}
	} else if order.ChefID != callerID {
		return nil, apperror.Forbidden("Only chef can update order status")
	}

	moved, err := s.orders.Transition(ctx, order.ID, order.Status, in.Status, in.Comment)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, apperror.Conflict("Order status was changed concurrently")
	}

	s.bus.Fire(ctx, events.OrderStatusChanged, events.OrderStatusChangedPayload{
		OrderID: order.ID,
		ActorID: callerID,
		From:    order.Status,
		To:      in.Status,
	})
	return s.load(ctx, order.ID)
}

// GetHistory lists the caller's delivered and cancelled orders, most
// recently updated first.
func (s *OrderService) GetHistory(ctx context.Context, callerID uint) ([]models.Order, error) {
	return s.orders.History(ctx, callerID)
}

func (s *OrderService) load(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NotFound("Order not found")
	}
	return order, nil
}

func party(o *models.Order, userID uint) bool {
	return o.CustomerID == userID || o.ChefID == userID
}

func distinct(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
