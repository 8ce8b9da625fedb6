package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go-commerce-core/internal/apperr"
	"go-commerce-core/internal/config"
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderSnapshotsCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	user := env.createUser(t, false)
	product := env.createProduct(t, "Product A", 100, 5)

	_, err := env.cartSvc.AddLine(env.ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	order, err := env.orderSvc.CreateOrder(env.ctx, user.ID, pickup)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(200).Equal(order.Subtotal), "subtotal %s", order.Subtotal)
	assert.True(t, order.TotalAmount.Equal(order.Subtotal))
	assert.Equal(t, model.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, env.status(t, "new").ID, order.StatusID)
	assert.Regexp(t, `^ORD-\d{8}-[A-Z0-9]{6}$`, order.OrderNumber)
	assert.Equal(t, user.FullName, order.CustomerName)
	assert.Equal(t, user.Email, order.CustomerEmail)

	stored, err := env.orderSvc.GetOrder(env.ctx, user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	item := stored.Items[0]
	assert.Equal(t, "Product A", item.ProductName)
	assert.Equal(t, product.Article, item.ProductArticle)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, decimal.NewFromInt(200).Equal(item.TotalPrice))
	assert.True(t, decimal.NewFromInt(100).Equal(item.PricePerItem))

	snapshot, err := env.cartSvc.Snapshot(env.ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Lines, "cart must be cleared")

	assert.Equal(t, 3, env.reloadProduct(t, product.ID).Quantity, "reserve policy decrements stock")
	assert.Contains(t, env.events.names(), EventOrderCreated)
}

func TestOrderTotalsAreFrozen(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	user := env.createUser(t, false)
	product := env.createProduct(t, "Lamp", 100, 10)

	_, err := env.cartSvc.AddLine(env.ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	order, err := env.orderSvc.CreateOrder(env.ctx, user.ID, pickup)
	require.NoError(t, err)

	// A second cart with the same product tracks the live price.
	_, err = env.cartSvc.AddLine(env.ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{"price": decimal.NewFromInt(150), "name": "Renamed lamp"}).Error)

	snapshot, err := env.cartSvc.Snapshot(env.ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(snapshot.Total), "cart total %s", snapshot.Total)

	stored, err := env.orderSvc.GetOrder(env.ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(stored.TotalAmount), "order total %s", stored.TotalAmount)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Lamp", stored.Items[0].ProductName)
	assert.True(t, decimal.NewFromInt(100).Equal(stored.Items[0].PricePerItem))
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	user := env.createUser(t, false)

	_, err := env.orderSvc.CreateOrder(env.ctx, user.ID, pickup)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
	assert.Zero(t, env.count(t, &model.Order{}))
	assert.Zero(t, env.count(t, &model.OrderItem{}))
}

func TestCreateOrderRechecksAtTransitionTime(t *testing.T) {
	tests := []struct {
		name     string
		mutate   map[string]interface{}
		expected error
	}{
		{"stock dropped below cart quantity", map[string]interface{}{"quantity": 1}, apperr.ErrInsufficientStock},
		{"product hidden", map[string]interface{}{"is_visible": false}, apperr.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seedStatuses(t)
			user := env.createUser(t, false)
			cheap := env.createProduct(t, "Cheap", 10, 10)
			product := env.createProduct(t, "Scarce", 100, 5)

			_, err := env.cartSvc.AddLine(env.ctx, user.ID, cheap.ID, 1)
			require.NoError(t, err)
			_, err = env.cartSvc.AddLine(env.ctx, user.ID, product.ID, 3)
			require.NoError(t, err)

			require.NoError(t, env.db.Model(&model.Product{}).Where("id = ?", product.ID).Updates(tt.mutate).Error)

			_, err = env.orderSvc.CreateOrder(env.ctx, user.ID, pickup)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)
			assert.Contains(t, err.Error(), fmt.Sprintf("product %d", product.ID))

			lines, err := env.carts.FindByUser(env.ctx, user.ID)
			require.NoError(t, err)
			assert.Len(t, lines, 2, "cart must be left intact")
			assert.Zero(t, env.count(t, &model.Order{}))
			assert.Equal(t, 10, env.reloadProduct(t, cheap.ID).Quantity, "no partial reservation")
		})
	}
}

func TestCreateOrderWithoutDefaultStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, false)
	product := env.createProduct(t, "Chair", 50, 3)
	_, err := env.cartSvc.AddLine(env.ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = env.orderSvc.CreateOrder(env.ctx, user.ID, pickup)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
	assert.Equal(t, 3, env.reloadProduct(t, product.ID).Quantity)
}

func TestCreateOrderDeliveryValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	user := env.createUser(t, false)

	tests := []struct {
		name    string
		details DeliveryDetails
	}{
		{"missing method", DeliveryDetails{}},
		{"courier without address", DeliveryDetails{DeliveryMethod: "courier"}},
		{"bad email", DeliveryDetails{DeliveryMethod: DeliveryPickup, CustomerEmail: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orderSvc.CreateOrder(env.ctx, user.ID, tt.details)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	product := env.createProduct(t, "Last one", 100, 1)

	buyers := []*model.User{env.createUser(t, false), env.createUser(t, false)}
	for _, b := range buyers {
		_, err := env.cartSvc.AddLine(env.ctx, b.ID, product.ID, 1)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(buyers))
	for i, b := range buyers {
		wg.Add(1)
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = env.orderSvc.CreateOrder(env.ctx, userID, pickup)
		}(i, b.ID)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperr.KindOf(err) == apperr.KindInsufficientStock:
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, env.reloadProduct(t, product.ID).Quantity)
	assert.Equal(t, int64(1), env.count(t, &model.Order{}))
}

func TestCheckPolicyLeavesStockUntouched(t *testing.T) {
	env := newTestEnv(t, func(c *config.OrderConfig) { c.StockPolicy = config.StockCheck })
	env.seedStatuses(t)
	user := env.createUser(t, false)
	product := env.createProduct(t, "Advisory", 100, 2)

	_, err := env.cartSvc.AddLine(env.ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	order, err := env.orderSvc.CreateOrder(env.ctx, user.ID, pickup)
	require.NoError(t, err)

	assert.False(t, order.StockReserved)
	assert.Equal(t, 2, env.reloadProduct(t, product.ID).Quantity)
}

func placeOrder(t *testing.T, env *testEnv, user *model.User, product *model.Product, qty int) *model.Order {
	t.Helper()
	_, err := env.cartSvc.AddLine(env.ctx, user.ID, product.ID, qty)
	require.NoError(t, err)
	order, err := env.orderSvc.CreateOrder(env.ctx, user.ID, pickup)
	require.NoError(t, err)
	return order
}

func TestCancelOrder(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	user := env.createUser(t, false)
	product := env.createProduct(t, "Vase", 40, 4)
	order := placeOrder(t, env, user, product, 3)
	require.Equal(t, 1, env.reloadProduct(t, product.ID).Quantity)

	cancelled, err := env.orderSvc.CancelOrder(env.ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, env.status(t, "cancelled").ID, cancelled.StatusID)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.False(t, cancelled.StockReserved)
	assert.Equal(t, 4, env.reloadProduct(t, product.ID).Quantity, "reserved stock is returned")

	_, err = env.orderSvc.CancelOrder(env.ctx, user.ID, order.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyFinal)
	assert.Equal(t, 4, env.reloadProduct(t, product.ID).Quantity, "stock is returned once")
	assert.Contains(t, env.events.names(), EventOrderCancelled)
}

func TestCancelOrderFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	owner := env.createUser(t, false)
	stranger := env.createUser(t, false)
	product := env.createProduct(t, "Rug", 70, 10)

	t.Run("other user's order", func(t *testing.T) {
		order := placeOrder(t, env, owner, product, 1)
		_, err := env.orderSvc.CancelOrder(env.ctx, stranger.ID, order.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := env.orderSvc.CancelOrder(env.ctx, owner.ID, uuid.New())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("delivered order", func(t *testing.T) {
		order := placeOrder(t, env, owner, product, 1)
		_, err := env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, env.status(t, "delivered").ID, "admin")
		require.NoError(t, err)

		_, err = env.orderSvc.CancelOrder(env.ctx, owner.ID, order.ID)
		assert.ErrorIs(t, err, apperr.ErrAlreadyFinal)
	})
}

func TestCancelWithoutCancelledStatus(t *testing.T) {
	env := newTestEnv(t, func(c *config.OrderConfig) { c.CancelledStatusCode = "voided" })
	env.seedStatuses(t)
	user := env.createUser(t, false)
	order := placeOrder(t, env, user, env.createProduct(t, "Cup", 5, 5), 1)

	_, err := env.orderSvc.CancelOrder(env.ctx, user.ID, order.ID)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}

func TestUpdateOrderStatusMilestones(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	user := env.createUser(t, false)
	order := placeOrder(t, env, user, env.createProduct(t, "Desk", 300, 2), 1)

	confirmed, err := env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, env.status(t, "confirmed").ID, "admin")
	require.NoError(t, err)
	require.NotNil(t, confirmed.ConfirmedAt)
	firstConfirmed := *confirmed.ConfirmedAt

	// Going back and forth between non-final statuses is allowed.
	_, err = env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, env.status(t, "new").ID, "admin")
	require.NoError(t, err)
	again, err := env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, env.status(t, "confirmed").ID, "admin")
	require.NoError(t, err)
	assert.True(t, firstConfirmed.Equal(*again.ConfirmedAt), "milestone is stamped once")

	shipped, err := env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, env.status(t, "shipped").ID, "admin")
	require.NoError(t, err)
	assert.NotNil(t, shipped.ShippedAt)

	delivered, err := env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, env.status(t, "delivered").ID, "admin")
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)

	_, err = env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, env.status(t, "new").ID, "admin")
	assert.ErrorIs(t, err, apperr.ErrAlreadyFinal)

	_, err = env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, 9999, "admin")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFinalityIsIndependentOfOrdering(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	user := env.createUser(t, false)
	order := placeOrder(t, env, user, env.createProduct(t, "Shelf", 80, 2), 1)

	delivered := env.status(t, "delivered")
	_, err := env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, delivered.ID, "admin")
	require.NoError(t, err)

	// Moving the final status to the front changes nothing about finality.
	_, err = env.statusSvc.ReorderStatuses(env.ctx, []uint{delivered.ID})
	require.NoError(t, err)

	_, err = env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, env.status(t, "shipped").ID, "admin")
	assert.ErrorIs(t, err, apperr.ErrAlreadyFinal)
}

func TestUpdatePaymentStatus(t *testing.T) {
	tests := []struct {
		name    string
		policy  config.PaymentPolicy
		steps   []model.PaymentStatus
		wantErr error
	}{
		{"lenient allows any change", config.PaymentLenient, []model.PaymentStatus{model.PaymentRefunded, model.PaymentUnpaid, model.PaymentPaid}, nil},
		{"strict paid then refunded", config.PaymentStrict, []model.PaymentStatus{model.PaymentPaid, model.PaymentRefunded}, nil},
		{"strict unpaid to refunded", config.PaymentStrict, []model.PaymentStatus{model.PaymentRefunded}, nil},
		{"strict rejects refunded to paid", config.PaymentStrict, []model.PaymentStatus{model.PaymentRefunded, model.PaymentPaid}, apperr.ErrInvalidState},
		{"unknown value", config.PaymentLenient, []model.PaymentStatus{"pending"}, apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(c *config.OrderConfig) { c.PaymentPolicy = tt.policy })
			env.seedStatuses(t)
			user := env.createUser(t, false)
			order := placeOrder(t, env, user, env.createProduct(t, "Mat", 20, 2), 1)

			var err error
			var updated *model.Order
			for _, step := range tt.steps {
				updated, err = env.orderSvc.UpdatePaymentStatus(env.ctx, order.ID, step, "admin")
				if err != nil {
					break
				}
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.steps[len(tt.steps)-1], updated.PaymentStatus)
		})
	}
}

func TestPaymentAllowedAfterFinalStatus(t *testing.T) {
	env := newTestEnv(t, func(c *config.OrderConfig) { c.PaymentPolicy = config.PaymentStrict })
	env.seedStatuses(t)
	user := env.createUser(t, false)
	order := placeOrder(t, env, user, env.createProduct(t, "Clock", 60, 2), 1)

	paid, err := env.orderSvc.UpdatePaymentStatus(env.ctx, order.ID, model.PaymentPaid, "admin")
	require.NoError(t, err)
	assert.NotNil(t, paid.PaidAt)

	_, err = env.orderSvc.UpdateOrderStatus(env.ctx, order.ID, env.status(t, "delivered").ID, "admin")
	require.NoError(t, err)

	refunded, err := env.orderSvc.UpdatePaymentStatus(env.ctx, order.ID, model.PaymentRefunded, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, refunded.PaymentStatus)
}

func TestListOrdersFilters(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	user := env.createUser(t, false)
	other := env.createUser(t, false)
	product := env.createProduct(t, "Pen", 3, 20)

	active := placeOrder(t, env, user, product, 1)
	done := placeOrder(t, env, user, product, 1)
	placeOrder(t, env, other, product, 1)
	_, err := env.orderSvc.CancelOrder(env.ctx, user.ID, done.ID)
	require.NoError(t, err)

	tests := []struct {
		filter   repository.OrderFilter
		expected []uuid.UUID
	}{
		{repository.FilterActive, []uuid.UUID{active.ID}},
		{repository.FilterCompleted, []uuid.UUID{done.ID}},
		{repository.FilterAll, []uuid.UUID{active.ID, done.ID}},
		{"", []uuid.UUID{active.ID, done.ID}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			orders, err := env.orderSvc.ListOrders(env.ctx, user.ID, tt.filter)
			require.NoError(t, err)
			ids := make([]uuid.UUID, 0, len(orders))
			for _, o := range orders {
				ids = append(ids, o.ID)
			}
			assert.ElementsMatch(t, tt.expected, ids)
		})
	}

	_, err = env.orderSvc.ListOrders(env.ctx, user.ID, "archived")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	all, err := env.orderSvc.ListAllOrders(env.ctx, repository.FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetOrderOwnership(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	owner := env.createUser(t, false)
	stranger := env.createUser(t, false)
	order := placeOrder(t, env, owner, env.createProduct(t, "Bowl", 15, 3), 1)

	_, err := env.orderSvc.GetOrder(env.ctx, stranger.ID, order.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := env.orderSvc.GetAnyOrder(env.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	require.NotNil(t, got.Status)
	assert.Equal(t, "new", got.Status.Code)
}

// numbersFrom replaces the order number generator with a fixed sequence,
// repeating the last entry once exhausted.
func numbersFrom(env *testEnv, numbers ...string) *int {
	calls := 0
	env.orderSvc.(*orderService).newNumber = func(string, time.Time) string {
		n := numbers[len(numbers)-1]
		if calls < len(numbers) {
			n = numbers[calls]
		}
		calls++
		return n
	}
	return &calls
}

func TestCreateOrderRegeneratesCollidingNumber(t *testing.T) {
	env := newTestEnv(t)
	env.seedStatuses(t)
	user := env.createUser(t, false)
	product := env.createProduct(t, "Kettle", 30, 10)

	numbersFrom(env, "ORD-20260101-TAKEN1")
	placeOrder(t, env, user, product, 1)

	tests := []struct {
		name       string
		numbers    []string
		wantNumber string
		wantCalls  int
		wantErr    error
	}{
		{"second attempt succeeds", []string{"ORD-20260101-TAKEN1", "ORD-20260101-FRESH2"}, "ORD-20260101-FRESH2", 2, nil},
		{"gives up after three collisions", []string{"ORD-20260101-TAKEN1"}, "", 3, apperr.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.cartSvc.AddLine(env.ctx, user.ID, product.ID, 2)
			require.NoError(t, err)
			stockBefore := env.reloadProduct(t, product.ID).Quantity
			calls := numbersFrom(env, tt.numbers...)

			order, err := env.orderSvc.CreateOrder(env.ctx, user.ID, pickup)

			assert.Equal(t, tt.wantCalls, *calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, stockBefore, env.reloadProduct(t, product.ID).Quantity)
				snapshot, err := env.cartSvc.Snapshot(env.ctx, user.ID)
				require.NoError(t, err)
				assert.Len(t, snapshot.Lines, 1)
				require.NoError(t, env.cartSvc.Clear(env.ctx, user.ID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, order.OrderNumber)
			assert.Equal(t, stockBefore-2, env.reloadProduct(t, product.ID).Quantity)
		})
	}
}
