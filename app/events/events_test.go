package events

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/pkg/event"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/metrics"
)

func TestListenersCountOrders(t *testing.T) {
	logger.Discard()
	bus := event.New()
	Register(bus)
	ctx := context.Background()

	created := testutil.ToFloat64(metrics.OrdersCreated)
	cooking := testutil.ToFloat64(metrics.OrderTransitions.WithLabelValues(string(models.StatusCooking)))

	bus.Fire(ctx, OrderCreated, OrderCreatedPayload{OrderID: 1, CustomerID: 2, ChefID: 3, Items: 2})
	bus.Fire(ctx, OrderStatusChanged, OrderStatusChangedPayload{
		OrderID: 1, ActorID: 3, From: models.StatusAccepted, To: models.StatusCooking,
	})
	// payloads of the wrong type are ignored
	bus.Fire(ctx, OrderCreated, "not a payload")

	assert.Equal(t, created+1, testutil.ToFloat64(metrics.OrdersCreated))
	assert.Equal(t, cooking+1, testutil.ToFloat64(metrics.OrderTransitions.WithLabelValues(string(models.StatusCooking))))
}
