package service

import (
	"context"
	"errors"
	"time"

	"go-commerce-core/internal/apperr"
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/repository"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentService manages the single owning manager of an order. The most
// recent assignment always wins; no history is kept.
type AssignmentService interface {
	Assign(ctx context.Context, orderID, managerID, assignedBy uuid.UUID) (*model.OrderManagerAssignment, error)
	// Accept makes the acting manager the owner.
	Accept(ctx context.Context, orderID, managerID uuid.UUID) (*model.OrderManagerAssignment, error)
	// Transfer hands the order to another manager on behalf of actingID.
	Transfer(ctx context.Context, orderID, newManagerID, actingID uuid.UUID) (*model.OrderManagerAssignment, error)
	ListManagers(ctx context.Context) ([]model.User, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	orderRepo      repository.OrderRepository
	statusRepo     repository.StatusRepository
	userRepo       repository.UserRepository
	db             *gorm.DB
	events         EventPublisher
	logger         *gecho.Logger
	now            func() time.Time
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	orderRepo repository.OrderRepository,
	statusRepo repository.StatusRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
	events EventPublisher,
	logger *gecho.Logger,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		orderRepo:      orderRepo,
		statusRepo:     statusRepo,
		userRepo:       userRepo,
		db:             db,
		events:         publisherOrNoop(events),
		logger:         logger,
		now:            time.Now,
	}
}

func (s *assignmentService) Accept(ctx context.Context, orderID, managerID uuid.UUID) (*model.OrderManagerAssignment, error) {
	return s.Assign(ctx, orderID, managerID, managerID)
}

func (s *assignmentService) Transfer(ctx context.Context, orderID, newManagerID, actingID uuid.UUID) (*model.OrderManagerAssignment, error) {
	return s.Assign(ctx, orderID, newManagerID, actingID)
}

func (s *assignmentService) Assign(ctx context.Context, orderID, managerID, assignedBy uuid.UUID) (*model.OrderManagerAssignment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The order row lock serializes concurrent assigns of the same order.
		order, err := s.orderRepo.WithTx(tx).FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		current, err := s.statusRepo.WithTx(tx).FindByID(ctx, order.StatusID)
		if err != nil {
			return err
		}
		if err := ensureTransitionAllowed(orderEntity(orderID), current); err != nil {
			return err
		}

		users := s.userRepo.WithTx(tx)
		if err := requireActiveStaff(ctx, users, managerID); err != nil {
			return err
		}
		if assignedBy != managerID {
			if err := requireActiveStaff(ctx, users, assignedBy); err != nil {
				return err
			}
		}

		return s.assignmentRepo.WithTx(tx).Upsert(ctx, &model.OrderManagerAssignment{
			OrderID:      orderID,
			ManagerID:    managerID,
			AssignedByID: assignedBy,
			AssignedAt:   s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order manager assigned",
		gecho.Field("order_id", orderID),
		gecho.Field("manager_id", managerID),
		gecho.Field("assigned_by", assignedBy),
	)
	s.events.Publish(EventOrderManagerAssigned, map[string]interface{}{
		"order_id":       orderID,
		"manager_id":     managerID,
		"assigned_by_id": assignedBy,
	})
	return assignment, nil
}

func requireActiveStaff(ctx context.Context, users repository.UserRepository, id uuid.UUID) error {
	user, err := users.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("staff member " + id.String())
	}
	if err != nil {
		return err
	}
	if !user.IsActiveStaff() {
		return apperr.Validation("staff member "+id.String(), "is not an active staff member")
	}
	return nil
}

func (s *assignmentService) ListManagers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.FindActiveStaff(ctx)
}
