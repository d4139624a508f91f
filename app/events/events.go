// Package events names the domain events and registers their listeners.
package events

import (
	"context"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/pkg/event"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/metrics"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// OrderCreatedPayload is fired once the order is committed.
type OrderCreatedPayload struct {
	OrderID    uint
	CustomerID uint
	ChefID     uint
	Items      int
}

// OrderStatusChangedPayload is fired after a committed transition.
type OrderStatusChangedPayload struct {
	OrderID uint
	ActorID uint
	From    models.OrderStatus
	To      models.OrderStatus
}

// Register attaches the metric and log listeners to bus.
func Register(bus *event.Bus) {
	bus.Listen(OrderCreated, func(ctx context.Context, p interface{}) {
		e, ok := p.(OrderCreatedPayload)
		if !ok {
			return
		}
		metrics.OrdersCreated.Inc()
		logger.WithCtx(ctx).Info("order created",
			"order_id", e.OrderID, "customer_id", e.CustomerID, "chef_id", e.ChefID, "items", e.Items)
	})

	bus.Listen(OrderStatusChanged, func(ctx context.Context, p interface{}) {
		e, ok := p.(OrderStatusChangedPayload)
		if !ok {
			return
		}
		metrics.OrderTransitions.WithLabelValues(string(e.To)).Inc()
		logger.WithCtx(ctx).Info("order status changed",
			"order_id", e.OrderID, "actor_id", e.ActorID, "from", e.From, "to", e.To)
	})
}
