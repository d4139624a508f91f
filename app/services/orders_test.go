package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflaxess123/obedi/app/events"
	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/app/repositories"
	"github.com/reflaxess123/obedi/pkg/apperror"
)

type orderParties struct {
	chef, customer, outsider *models.User
	lunchA, lunchB           *models.Lunch
}

func seedParties(t *testing.T, f *fixture) orderParties {
	t.Helper()
	p := orderParties{
		chef:     f.user(t, "chef@example.com"),
		customer: f.user(t, "customer@example.com"),
		outsider: f.user(t, "outsider@example.com"),
	}
	p.lunchA = f.lunch(t, p.chef.ID, "Borscht")
	p.lunchB = f.lunch(t, p.chef.ID, "Pelmeni")
	return p
}

func statuses(history []models.OrderHistory) []models.OrderStatus {
	out := make([]models.OrderStatus, 0, len(history))
	for _, h := range history {
		out = append(out, h.Status)
	}
	return out
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	p := seedParties(t, f)

	var mu sync.Mutex
	var fired []string
	record := func(name string) func(context.Context, interface{}) {
		return func(context.Context, interface{}) {
			mu.Lock()
			fired = append(fired, name)
			mu.Unlock()
		}
	}
	f.bus.Listen(events.OrderCreated, record(events.OrderCreated))
	f.bus.Listen(events.OrderStatusChanged, record(events.OrderStatusChanged))

	order, err := f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{
		ChefID:   p.chef.ID,
		LunchIDs: []uint{p.lunchA.ID, p.lunchB.ID},
		Comment:  ptr("no onions"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, []models.OrderStatus{models.StatusPending}, statuses(order.History))
	assert.Equal(t, p.chef.ID, order.Chef.ID)
	assert.Equal(t, p.customer.ID, order.Customer.ID)
	require.NotNil(t, order.Items[0].Lunch)
	assert.Equal(t, "Borscht", order.Items[0].Lunch.Title)

	steps := []models.OrderStatus{models.StatusAccepted, models.StatusCooking, models.StatusReady, models.StatusDelivered}
	for _, s := range steps {
		order, err = f.orders.UpdateStatus(f.ctx, order.ID, p.chef.ID, UpdateStatusInput{Status: s})
		require.NoError(t, err)
		assert.Equal(t, s, order.Status)
	}

	assert.Equal(t, []models.OrderStatus{
		models.StatusDelivered, models.StatusReady, models.StatusCooking, models.StatusAccepted, models.StatusPending,
	}, statuses(order.History))

	hist, err := f.orders.GetHistory(f.ctx, p.customer.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, order.ID, hist[0].ID)

	hist, err = f.orders.GetHistory(f.ctx, p.chef.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, order.ID, hist[0].ID)

	hist, err = f.orders.GetHistory(f.ctx, p.outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, hist)

	assert.Equal(t, []string{
		events.OrderCreated,
		events.OrderStatusChanged, events.OrderStatusChanged, events.OrderStatusChanged, events.OrderStatusChanged,
	}, fired)
}

func TestCancelledOrderIsInBothPartiesHistory(t *testing.T) {
	f := newFixture(t)
	p := seedParties(t, f)

	order, err := f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{ChefID: p.chef.ID, LunchIDs: []uint{p.lunchA.ID}})
	require.NoError(t, err)

	active, err := f.orders.GetHistory(f.ctx, p.chef.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = f.orders.UpdateStatus(f.ctx, order.ID, p.chef.ID, UpdateStatusInput{Status: models.StatusAccepted})
	require.NoError(t, err)
	order, err = f.orders.UpdateStatus(f.ctx, order.ID, p.customer.ID, UpdateStatusInput{Status: models.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, []models.OrderStatus{
		models.StatusCancelled, models.StatusAccepted, models.StatusPending,
	}, statuses(order.History))

	for _, id := range []uint{p.customer.ID, p.chef.ID} {
		hist, err := f.orders.GetHistory(f.ctx, id)
		require.NoError(t, err)
		require.Len(t, hist, 1)
		assert.Equal(t, order.ID, hist[0].ID)
		assert.Len(t, hist[0].History, 3)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	p := seedParties(t, f)
	foreign := f.lunch(t, p.outsider.ID, "Not the chef's")

	_, err := f.orders.Create(f.ctx, p.chef.ID, CreateOrderInput{ChefID: p.chef.ID, LunchIDs: []uint{p.lunchA.ID}})
	assert.ErrorIs(t, err, apperror.BadRequest("Cannot order from yourself"))

	_, err = f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{ChefID: 999, LunchIDs: []uint{p.lunchA.ID}})
	assert.ErrorIs(t, err, apperror.NotFound("Chef not found"))

	_, err = f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{
		ChefID:   p.chef.ID,
		LunchIDs: []uint{p.lunchA.ID, foreign.ID},
	})
	assert.ErrorIs(t, err, apperror.BadRequest("Some lunches do not belong to the specified chef"))

	_, err = f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{ChefID: p.chef.ID, LunchIDs: []uint{4242}})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	assert.EqualValues(t, 0, f.count(t, &models.Order{}))
	assert.EqualValues(t, 0, f.count(t, &models.OrderItem{}))
	assert.EqualValues(t, 0, f.count(t, &models.OrderHistory{}))
}

func TestCreateOrderKeepsDuplicateLunches(t *testing.T) {
	f := newFixture(t)
	p := seedParties(t, f)

	order, err := f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{
		ChefID:   p.chef.ID,
		LunchIDs: []uint{p.lunchA.ID, p.lunchA.ID, p.lunchB.ID},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 3)
	assert.Equal(t, p.lunchA.ID, order.Items[0].LunchID)
	assert.Equal(t, p.lunchA.ID, order.Items[1].LunchID)
	assert.Equal(t, p.lunchB.ID, order.Items[2].LunchID)
}

func TestOrderAccess(t *testing.T) {
	f := newFixture(t)
	p := seedParties(t, f)

	order, err := f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{ChefID: p.chef.ID, LunchIDs: []uint{p.lunchA.ID}})
	require.NoError(t, err)

	_, err = f.orders.FindOne(f.ctx, order.ID, p.outsider.ID)
	assert.ErrorIs(t, err, apperror.Forbidden("Access denied"))

	_, err = f.orders.FindOne(f.ctx, 999, p.customer.ID)
	assert.ErrorIs(t, err, apperror.NotFound("Order not found"))

	got, err := f.orders.FindOne(f.ctx, order.ID, p.chef.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.orders.UpdateStatus(f.ctx, order.ID, p.customer.ID, UpdateStatusInput{Status: models.StatusAccepted})
	assert.ErrorIs(t, err, apperror.Forbidden("Only chef can update order status"))

	_, err = f.orders.UpdateStatus(f.ctx, order.ID, p.outsider.ID, UpdateStatusInput{Status: models.StatusCancelled})
	assert.ErrorIs(t, err, apperror.Forbidden("Access denied"))

	_, err = f.orders.UpdateStatus(f.ctx, 999, p.chef.ID, UpdateStatusInput{Status: models.StatusAccepted})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.orders.UpdateStatus(f.ctx, order.ID, p.chef.ID, UpdateStatusInput{Status: "BURNT"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	cancelled, err := f.orders.UpdateStatus(f.ctx, order.ID, p.customer.ID, UpdateStatusInput{
		Status:  models.StatusCancelled,
		Comment: ptr("changed my mind"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.History[0].Comment)
	assert.Equal(t, "changed my mind", *cancelled.History[0].Comment)

	// denied attempts leave no trace
	assert.EqualValues(t, 2, f.count(t, &models.OrderHistory{}))
}

func TestStatusChangesAreNotSequenced(t *testing.T) {
	f := newFixture(t)
	p := seedParties(t, f)

	order, err := f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{ChefID: p.chef.ID, LunchIDs: []uint{p.lunchA.ID}})
	require.NoError(t, err)

	order, err = f.orders.UpdateStatus(f.ctx, order.ID, p.chef.ID, UpdateStatusInput{Status: models.StatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, order.Status)

	order, err = f.orders.UpdateStatus(f.ctx, order.ID, p.chef.ID, UpdateStatusInput{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Len(t, order.History, 3)
}

func TestTransitionFromStaleStatusWritesNothing(t *testing.T) {
	f := newFixture(t)
	p := seedParties(t, f)

	order, err := f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{ChefID: p.chef.ID, LunchIDs: []uint{p.lunchA.ID}})
	require.NoError(t, err)

	moved, err := f.orderRepo.Transition(f.ctx, order.ID, models.StatusAccepted, models.StatusCooking, nil)
	require.NoError(t, err)
	assert.False(t, moved)

	reloaded, err := f.orderRepo.FindByID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reloaded.Status)
	assert.Len(t, reloaded.History, 1)

	moved, err = f.orderRepo.Transition(f.ctx, order.ID, models.StatusPending, models.StatusAccepted, nil)
	require.NoError(t, err)
	assert.True(t, moved)
}

func TestFindAllFilters(t *testing.T) {
	f := newFixture(t)
	p := seedParties(t, f)
	theirLunch := f.lunch(t, p.customer.ID, "Customer's own")

	placed, err := f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{ChefID: p.chef.ID, LunchIDs: []uint{p.lunchA.ID}})
	require.NoError(t, err)
	received, err := f.orders.Create(f.ctx, p.chef.ID, CreateOrderInput{ChefID: p.customer.ID, LunchIDs: []uint{theirLunch.ID}})
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(f.ctx, received.ID, p.customer.ID, UpdateStatusInput{Status: models.StatusAccepted})
	require.NoError(t, err)

	all, err := f.orders.FindAll(f.ctx, p.customer.ID, OrderQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, received.ID, all[0].ID)

	asCustomer, err := f.orders.FindAll(f.ctx, p.customer.ID, OrderQuery{Role: repositories.RoleCustomer})
	require.NoError(t, err)
	require.Len(t, asCustomer, 1)
	assert.Equal(t, placed.ID, asCustomer[0].ID)

	asChef, err := f.orders.FindAll(f.ctx, p.customer.ID, OrderQuery{Role: repositories.RoleChef})
	require.NoError(t, err)
	require.Len(t, asChef, 1)
	assert.Equal(t, received.ID, asChef[0].ID)

	accepted := models.StatusAccepted
	byStatus, err := f.orders.FindAll(f.ctx, p.customer.ID, OrderQuery{Status: &accepted})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, received.ID, byStatus[0].ID)

	none, err := f.orders.FindAll(f.ctx, p.outsider.ID, OrderQuery{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderItemsSurviveLunchDeletion(t *testing.T) {
	f := newFixture(t)
	p := seedParties(t, f)

	order, err := f.orders.Create(f.ctx, p.customer.ID, CreateOrderInput{ChefID: p.chef.ID, LunchIDs: []uint{p.lunchA.ID}})
	require.NoError(t, err)
	require.NoError(t, f.lunches.Delete(f.ctx, p.lunchA.ID, p.chef.ID))

	got, err := f.orders.FindOne(f.ctx, order.ID, p.customer.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].Lunch)
}
