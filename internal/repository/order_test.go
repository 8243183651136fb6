package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamaccts/internal/model"
)

func testOrder(id, userID string, createdAt time.Time, items ...model.OrderItem) *model.Order {
	total := 0.0
	for _, item := range items {
		total += item.TotalPrice
	}
	return &model.Order{
		ID:            id,
		UserID:        userID,
		UserEmail:     userID + "@example.com",
		Items:         items,
		TotalAmount:   total,
		Status:        model.OrderStatusPaid,
		PaymentMethod: model.PaymentMethodStripe,
		PaymentID:     "pi_" + id,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func line(productID string, qty int) model.OrderItem {
	return model.OrderItem{
		ProductID:   productID,
		ProductName: productID,
		Quantity:    qty,
		UnitPrice:   9.99,
		TotalPrice:  9.99 * float64(qty),
	}
}

func decrementsFor(order *model.Order) []model.StockDecrement {
	var out []model.StockDecrement
	for _, item := range order.Items {
		out = append(out, model.StockDecrement{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

func TestOrderCreateDecrementsStock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	products := NewProductRepository(db)
	orders := NewOrderRepository(db)

	require.NoError(t, products.Create(ctx, testProduct("netflix", 5, time.Now())))
	require.NoError(t, products.Create(ctx, testProduct("spotify", 1, time.Now())))

	order := testOrder("o1", "u1", time.Now(), line("netflix", 2), line("spotify", 3), line("gone", 1))
	require.NoError(t, orders.Create(ctx, order, decrementsFor(order)))

	netflix, err := products.FindByID(ctx, "netflix")
	require.NoError(t, err)
	assert.Equal(t, 3, netflix.StockCount)

	spotify, err := products.FindByID(ctx, "spotify")
	require.NoError(t, err)
	assert.Equal(t, 0, spotify.StockCount, "stock is clamped at zero")

	got, err := orders.FindByID(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "spotify", got.Items[1].ProductID)
	assert.Nil(t, got.Fulfillment)
}

// Stock is not reserved: two buyers of the last unit both get an order.
func TestOrderCreateConcurrentOversell(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	products := NewProductRepository(db)
	orders := NewOrderRepository(db)

	require.NoError(t, products.Create(ctx, testProduct("netflix", 1, time.Now())))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order := testOrder([]string{"a", "b"}[i], "u", time.Now(), line("netflix", 1))
			errs[i] = orders.Create(ctx, order, decrementsFor(order))
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	netflix, err := products.FindByID(ctx, "netflix")
	require.NoError(t, err)
	assert.Equal(t, 0, netflix.StockCount)

	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	sold := 0
	for _, o := range all {
		sold += o.Items[0].Quantity
	}
	assert.Equal(t, 2, sold, "two units sold against a stock of one")
}

func TestOrderListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	orders := NewOrderRepository(newTestDB(t))

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		o := testOrder(id, "u1", base.Add(time.Duration(i)*time.Minute), line("p", 1))
		require.NoError(t, orders.Create(ctx, o, nil))
	}
	require.NoError(t, orders.Create(ctx, testOrder("other", "u2", base, line("p", 1)), nil))

	mine, err := orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{mine[0].ID, mine[1].ID, mine[2].ID})

	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestOrderFieldUpdates(t *testing.T) {
	ctx := context.Background()
	orders := NewOrderRepository(newTestDB(t))
	require.NoError(t, orders.Create(ctx, testOrder("o1", "u1", time.Now(), line("p", 1)), nil))

	require.NoError(t, orders.UpdateStatus(ctx, "o1", model.OrderStatusRefunded))
	require.NoError(t, orders.SetAdminResponse(ctx, "o1", "refund issued"))
	require.NoError(t, orders.SetUserMessage(ctx, "o1", "please refund"))

	got, err := orders.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusRefunded, got.Status)
	assert.Equal(t, "refund issued", got.AdminResponse)
	assert.Equal(t, "please refund", got.UserMessage)

	assert.ErrorIs(t, orders.UpdateStatus(ctx, "missing", model.OrderStatusPaid), ErrNotFound)
	assert.ErrorIs(t, orders.SetAdminResponse(ctx, "missing", "x"), ErrNotFound)
	assert.ErrorIs(t, orders.SetUserMessage(ctx, "missing", "x"), ErrNotFound)
}

func TestOrderSaveFulfillment(t *testing.T) {
	ctx := context.Background()
	orders := NewOrderRepository(newTestDB(t))
	require.NoError(t, orders.Create(ctx, testOrder("o1", "u1", time.Now(), line("netflix", 1)), nil))

	now := time.Now().UTC().Truncate(time.Second)
	creds := model.AccountCredentials{Email: "acct@example.com", Password: "hunter2"}
	fulfillment := &model.OrderFulfillment{
		AccountDetails: creds,
		ScreenshotURL:  "/uploads/screenshots/o1.png",
		AccountTested:  true,
		FulfilledBy:    "admin",
		FulfilledAt:    now,
	}
	delivered := []model.DeliveredAccount{{ProductID: "netflix", Credentials: creds, DeliveredAt: now}}

	require.NoError(t, orders.SaveFulfillment(ctx, "o1", fulfillment, delivered))

	got, err := orders.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFulfilled, got.Status)
	require.NotNil(t, got.Fulfillment)
	assert.Equal(t, "hunter2", got.Fulfillment.AccountDetails.Password)
	assert.True(t, got.Fulfillment.FulfilledAt.Equal(now))
	require.Len(t, got.DeliveredAccounts, 1)
	assert.Equal(t, "netflix", got.DeliveredAccounts[0].ProductID)

	assert.ErrorIs(t, orders.SaveFulfillment(ctx, "missing", fulfillment, delivered), ErrNotFound)

	second := *fulfillment
	second.AccountDetails.Password = "changed"
	assert.ErrorIs(t, orders.SaveFulfillment(ctx, "o1", &second, delivered), ErrAlreadyFulfilled)

	got, err = orders.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.Fulfillment.AccountDetails.Password)
}

func TestOrderStatusCountsAndRevenue(t *testing.T) {
	ctx := context.Background()
	orders := NewOrderRepository(newTestDB(t))

	revenue, err := orders.Revenue(ctx, []model.OrderStatus{model.OrderStatusPaid})
	require.NoError(t, err)
	assert.Zero(t, revenue)

	now := time.Now()
	paid := testOrder("a", "u", now, line("p", 1))
	fulfilled := testOrder("b", "u", now, line("p", 2))
	fulfilled.Status = model.OrderStatusFulfilled
	refunded := testOrder("c", "u", now, line("p", 3))
	refunded.Status = model.OrderStatusRefunded
	for _, o := range []*model.Order{paid, fulfilled, refunded} {
		require.NoError(t, orders.Create(ctx, o, nil))
	}

	counts, err := orders.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.OrderStatus]int64{
		model.OrderStatusPaid:      1,
		model.OrderStatusFulfilled: 1,
		model.OrderStatusRefunded:  1,
	}, counts)

	revenue, err = orders.Revenue(ctx, []model.OrderStatus{model.OrderStatusPaid, model.OrderStatusFulfilled})
	require.NoError(t, err)
	assert.InDelta(t, 9.99*3, revenue, 0.0001)
}
