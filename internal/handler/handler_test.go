package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go-commerce-core/internal/apperr"
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/service"

	"github.com/MonkyMars/gecho"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderService struct {
	service.OrderService
	createErr error
	gotUser   uuid.UUID
	gotInput  service.DeliveryDetails
}

func (f *fakeOrderService) CreateOrder(_ context.Context, userID uuid.UUID, details service.DeliveryDetails) (*model.Order, error) {
	f.gotUser = userID
	f.gotInput = details
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.Order{OrderNumber: "ORD-20260101-ABCDEF", UserID: userID}, nil
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", apperr.Validation("order", "delivery_method is required"), 400, "validation", "order: delivery_method is required"},
		{"not found", apperr.NotFound("order 1"), 404, "not_found", "order 1: not found"},
		{"empty cart", apperr.EmptyCart(), 422, "empty_cart", "cart is empty"},
		{"insufficient stock", apperr.InsufficientStock("product 3", 5, 2), 422, "insufficient_stock", "product 3: requested 5, only 2 in stock"},
		{"already final", apperr.AlreadyFinal("order 1", "delivered"), 409, "already_final", `order 1: status "delivered" is final`},
		{"configuration hides detail", apperr.Configuration("no default order status"), 500, "configuration", "Service is misconfigured, please contact support"},
		{"internal hides detail", errors.New("connection reset"), 500, "", "Internal Server Error"},
	}

	logger := gecho.NewDefaultLogger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, logger, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeBody(t, resp.Body)
			assert.Equal(t, tt.wantMsg, body["error"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
			} else {
				assert.NotContains(t, body, "code")
			}
		})
	}
}

func newOrderApp(svc service.OrderService, userID string) *fiber.App {
	app := fiber.New()
	h := NewOrderHandler(svc, gecho.NewDefaultLogger())
	app.Post("/orders", func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	}, h.CreateOrder)
	return app
}

func TestCreateOrderHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := &fakeOrderService{}
		app := newOrderApp(svc, userID.String())

		req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"delivery_method":"pickup","comment":"ring twice"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, userID, svc.gotUser)
		assert.Equal(t, "pickup", svc.gotInput.DeliveryMethod)
		assert.Equal(t, "ring twice", svc.gotInput.Comment)

		body := decodeBody(t, resp.Body)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "ORD-20260101-ABCDEF", data["order_number"])
	})

	t.Run("empty cart", func(t *testing.T) {
		app := newOrderApp(&fakeOrderService{createErr: apperr.EmptyCart()}, userID.String())

		req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"delivery_method":"pickup"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
	})

	t.Run("invalid json", func(t *testing.T) {
		app := newOrderApp(&fakeOrderService{}, userID.String())

		req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("missing user", func(t *testing.T) {
		app := newOrderApp(&fakeOrderService{}, "")

		req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"delivery_method":"pickup"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})
}

type fakeAvailabilityService struct {
	service.AvailabilityService
	rule        *model.AvailabilityRule
	gotQuantity int
	gotSupplier *uint
}

func (f *fakeAvailabilityService) Classify(_ context.Context, quantity int, supplierID *uint) (*model.AvailabilityRule, error) {
	f.gotQuantity = quantity
	f.gotSupplier = supplierID
	return f.rule, nil
}

func TestClassifyHandler(t *testing.T) {
	rule := &model.AvailabilityRule{Label: "Last units", Color: "#ff9900"}
	svc := &fakeAvailabilityService{rule: rule}
	app := fiber.New()
	app.Get("/availability", NewAvailabilityHandler(svc, gecho.NewDefaultLogger()).Classify)

	resp, err := app.Test(httptest.NewRequest("GET", "/availability?quantity=2&supplier_id=7", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 2, svc.gotQuantity)
	require.NotNil(t, svc.gotSupplier)
	assert.Equal(t, uint(7), *svc.gotSupplier)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["matched"])
	assert.Equal(t, "Last units", body["label"])

	resp, err = app.Test(httptest.NewRequest("GET", "/availability?quantity=many", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	svc.rule = nil
	resp, err = app.Test(httptest.NewRequest("GET", "/availability?quantity=0", nil))
	require.NoError(t, err)
	assert.Nil(t, svc.gotSupplier)
	assert.Equal(t, false, decodeBody(t, resp.Body)["matched"])
}
