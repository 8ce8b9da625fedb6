package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-commerce-core/internal/apperr"
	"go-commerce-core/internal/config"
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/repository"
	"go-commerce-core/pkg/database"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Attempts at a fresh order number when the generated one collides.
const orderNumberAttempts = 3

const DeliveryPickup = "pickup"

// DeliveryDetails is the contact and delivery snapshot stored on the order.
// Empty contact fields default to the user's directory record.
type DeliveryDetails struct {
	CustomerName    string `json:"customer_name" validate:"omitempty,max=255"`
	CustomerEmail   string `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string `json:"customer_phone" validate:"omitempty,max=20"`
	DeliveryMethod  string `json:"delivery_method" validate:"required,max=30"`
	DeliveryAddress string `json:"delivery_address" validate:"required_unless=DeliveryMethod pickup"`
	Comment         string `json:"comment" validate:"max=2000"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, details DeliveryDetails) (*model.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, filter repository.OrderFilter) ([]model.Order, error)

	// Administrative operations.
	GetAnyOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	ListAllOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, statusID uint, actorID string) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, payment model.PaymentStatus, actorID string) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	statusRepo  repository.StatusRepository
	userRepo    repository.UserRepository
	db          *gorm.DB
	cfg         config.OrderConfig
	events      EventPublisher
	logger      *gecho.Logger
	now         func() time.Time
	newNumber   func(prefix string, now time.Time) string
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	statusRepo repository.StatusRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
	cfg config.OrderConfig,
	events EventPublisher,
	logger *gecho.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		statusRepo:  statusRepo,
		userRepo:    userRepo,
		db:          db,
		cfg:         cfg,
		events:      publisherOrNoop(events),
		logger:      logger,
		now:         time.Now,
		newNumber:   GenerateOrderNumber,
	}
}

func orderEntity(id uuid.UUID) string {
	return "order " + id.String()
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, details DeliveryDetails) (*model.Order, error) {
	details.DeliveryMethod = strings.TrimSpace(details.DeliveryMethod)
	details.DeliveryAddress = strings.TrimSpace(details.DeliveryAddress)
	if err := validateInput("delivery details", details); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if details.CustomerName == "" {
		details.CustomerName = user.FullName
	}
	if details.CustomerEmail == "" {
		details.CustomerEmail = user.Email
	}
	if details.CustomerPhone == "" {
		details.CustomerPhone = user.PhoneNumber
	}

	var order *model.Order
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		err = database.WithRetry(ctx, func() error {
			var txErr error
			order, txErr = s.createOrderTx(ctx, userID, details)
			return txErr
		})
		if !errors.Is(err, apperr.ErrConflict) {
			break
		}
		s.logger.Warn("Order number collision, regenerating", gecho.Field("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		gecho.Field("order_id", order.ID),
		gecho.Field("order_number", order.OrderNumber),
		gecho.Field("user_id", userID),
		gecho.Field("total", order.TotalAmount.String()),
		gecho.Field("stock_reserved", order.StockReserved),
	)
	s.events.Publish(EventOrderCreated, map[string]interface{}{
		"id":           order.ID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
		"status":       order.Status.Code,
	})
	return order, nil
}

// createOrderTx converts the cart into an order in one transaction. Product
// rows are locked in id order before the stock check so the check and the
// optional decrement see the same quantity.
func (s *orderService) createOrderTx(ctx context.Context, userID uuid.UUID, details DeliveryDetails) (*model.Order, error) {
	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		lines, err := cartRepo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.EmptyCart()
		}

		ids := make([]uint, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ProductID)
		}
		products, err := productRepo.LockByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		subtotal := decimal.Zero
		items := make([]model.OrderItem, 0, len(lines))
		for _, l := range lines {
			entity := fmt.Sprintf("product %d", l.ProductID)
			p, ok := byID[l.ProductID]
			if !ok {
				return apperr.NotFound(entity)
			}
			if !p.IsOrderable() {
				return apperr.Unavailable(entity)
			}
			if p.Quantity < l.Quantity {
				return apperr.InsufficientStock(entity, l.Quantity, p.Quantity)
			}
			item := model.NewOrderItem(p, l.Quantity)
			subtotal = subtotal.Add(item.TotalPrice)
			items = append(items, item)
		}

		status, err := resolveDefaultStatus(ctx, s.statusRepo.WithTx(tx))
		if err != nil {
			return err
		}

		reserve := s.cfg.StockPolicy != config.StockCheck
		if reserve {
			for _, id := range ids {
				p := byID[id]
				qty := quantityFor(lines, id)
				ok, err := productRepo.DecrementStock(ctx, id, qty)
				if err != nil {
					return err
				}
				if !ok {
					return apperr.InsufficientStock(fmt.Sprintf("product %d", id), qty, p.Quantity)
				}
			}
		}

		order = &model.Order{
			OrderNumber:     s.newNumber(s.cfg.NumberPrefix, s.now()),
			UserID:          userID,
			StatusID:        status.ID,
			PaymentStatus:   model.PaymentUnpaid,
			Subtotal:        subtotal,
			TotalAmount:     subtotal,
			StockReserved:   reserve,
			CustomerName:    details.CustomerName,
			CustomerEmail:   details.CustomerEmail,
			CustomerPhone:   details.CustomerPhone,
			DeliveryMethod:  details.DeliveryMethod,
			DeliveryAddress: details.DeliveryAddress,
			Comment:         details.Comment,
			Items:           items,
		}
		order.CreatedBy = userID.String()
		order.UpdatedBy = userID.String()
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		order.Status = status

		return cartRepo.DeleteByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func quantityFor(lines []model.CartLine, productID uint) int {
	for _, l := range lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	var previous string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return apperr.NotFound(orderEntity(orderID))
		}

		cancelled, err := s.cancelledStatus(ctx, s.statusRepo.WithTx(tx))
		if err != nil {
			return err
		}
		previous, err = s.transition(ctx, tx, order, cancelled, userID.String())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled by customer",
		gecho.Field("order_id", orderID),
		gecho.Field("user_id", userID),
		gecho.Field("previous_status", previous),
	)
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(EventOrderCancelled, map[string]interface{}{
		"id":           order.ID,
		"order_number": order.OrderNumber,
	})
	return order, nil
}

// cancelledStatus resolves the distinguished cancellation status, which
// must exist and be final.
func (s *orderService) cancelledStatus(ctx context.Context, repo repository.StatusRepository) (*model.OrderStatus, error) {
	status, err := repo.FindByCode(ctx, s.cfg.CancelledStatusCode)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Configuration("cancelled status %q is not configured", s.cfg.CancelledStatusCode)
	}
	if err != nil {
		return nil, err
	}
	if !status.IsFinal {
		return nil, apperr.Configuration("cancelled status %q must be final", status.Code)
	}
	return status, nil
}

// transition moves a locked order into target after checking the freshly
// read current status. It returns the code of the status left behind.
func (s *orderService) transition(ctx context.Context, tx *gorm.DB, order *model.Order, target *model.OrderStatus, actorID string) (string, error) {
	current, err := s.statusRepo.WithTx(tx).FindByID(ctx, order.StatusID)
	if err != nil {
		return "", err
	}
	if err := ensureTransitionAllowed(orderEntity(order.ID), current); err != nil {
		return "", err
	}
	if current.ID == target.ID {
		return current.Code, nil
	}

	now := s.now()
	fields := map[string]interface{}{
		"status_id":  target.ID,
		"updated_by": actorID,
	}
	switch target.Milestone {
	case model.MilestoneConfirmed:
		if order.ConfirmedAt == nil {
			fields["confirmed_at"] = now
		}
	case model.MilestoneShipped:
		if order.ShippedAt == nil {
			fields["shipped_at"] = now
		}
	case model.MilestoneDelivered:
		if order.DeliveredAt == nil {
			fields["delivered_at"] = now
		}
	}

	if target.Code == s.cfg.CancelledStatusCode {
		fields["cancelled_at"] = now
		if order.StockReserved {
			if err := s.releaseStock(ctx, tx, order.ID); err != nil {
				return "", err
			}
			fields["stock_reserved"] = false
		}
	}

	if err := s.orderRepo.WithTx(tx).UpdateFields(ctx, order.ID, fields); err != nil {
		return "", err
	}
	return current.Code, nil
}

// releaseStock returns reserved quantities to products that still exist.
func (s *orderService) releaseStock(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	items, err := s.orderRepo.WithTx(tx).FindItems(ctx, orderID)
	if err != nil {
		return err
	}
	productRepo := s.productRepo.WithTx(tx)
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		if err := productRepo.IncrementStock(ctx, *item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperr.NotFound(orderEntity(orderID))
	}
	return order, nil
}

func (s *orderService) GetAnyOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

func normalizeFilter(filter repository.OrderFilter) (repository.OrderFilter, error) {
	if filter == "" {
		return repository.FilterAll, nil
	}
	if !filter.IsValid() {
		return "", apperr.Validation("order filter", "unknown filter %q", filter)
	}
	return filter, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, filter repository.OrderFilter) ([]model.Order, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindByUser(ctx, userID, filter)
}

func (s *orderService) ListAllOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindAll(ctx, filter)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, statusID uint, actorID string) (*model.Order, error) {
	var previous string
	var target *model.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		target, err = s.statusRepo.WithTx(tx).FindByID(ctx, statusID)
		if err != nil {
			return err
		}
		if !target.IsActive {
			return apperr.InvalidState(fmt.Sprintf("order status %s", target.Code), "is not active")
		}
		previous, err = s.transition(ctx, tx, order, target, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		gecho.Field("order_id", orderID),
		gecho.Field("from", previous),
		gecho.Field("to", target.Code),
		gecho.Field("actor", actorID),
	)
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(EventOrderStatusChanged, map[string]interface{}{
		"id":           order.ID,
		"order_number": order.OrderNumber,
		"from":         previous,
		"to":           target.Code,
	})
	return order, nil
}

// paymentAllowed applies the configured payment policy. The lenient policy
// is an administrative override and accepts any change.
func (s *orderService) paymentAllowed(from, to model.PaymentStatus) bool {
	if s.cfg.PaymentPolicy != config.PaymentStrict {
		return true
	}
	switch {
	case from == model.PaymentUnpaid && to == model.PaymentPaid,
		from == model.PaymentPaid && to == model.PaymentRefunded,
		from == model.PaymentUnpaid && to == model.PaymentRefunded:
		return true
	default:
		return false
	}
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, payment model.PaymentStatus, actorID string) (*model.Order, error) {
	if !payment.IsValid() {
		return nil, apperr.Validation(orderEntity(orderID), "unknown payment status %q", payment)
	}

	var previous model.PaymentStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		previous = order.PaymentStatus
		if previous == payment {
			return nil
		}
		if !s.paymentAllowed(previous, payment) {
			return apperr.InvalidState(orderEntity(orderID), "payment cannot change from %s to %s", previous, payment)
		}

		fields := map[string]interface{}{
			"payment_status": payment,
			"updated_by":     actorID,
		}
		if payment == model.PaymentPaid && order.PaidAt == nil {
			fields["paid_at"] = s.now()
		}
		return repo.UpdateFields(ctx, orderID, fields)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if previous != payment {
		s.logger.Info("Order payment status changed",
			gecho.Field("order_id", orderID),
			gecho.Field("from", previous),
			gecho.Field("to", payment),
			gecho.Field("actor", actorID),
		)
		s.events.Publish(EventOrderPaymentChanged, map[string]interface{}{
			"id":             order.ID,
			"order_number":   order.OrderNumber,
			"payment_status": order.PaymentStatus,
		})
	}
	return order, nil
}
