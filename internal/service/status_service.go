package service

import (
	"context"
	"errors"
	"fmt"

	"go-commerce-core/internal/apperr"
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/repository"

	"github.com/MonkyMars/gecho"
	"gorm.io/gorm"
)

type CreateStatusInput struct {
	Code      string          `json:"code" validate:"required,max=50"`
	Name      string          `json:"name" validate:"required,max=100"`
	BgColor   string          `json:"bg_color" validate:"omitempty,hexcolor"`
	TextColor string          `json:"text_color" validate:"omitempty,hexcolor"`
	SortOrder *int            `json:"sort_order" validate:"omitempty,min=0"`
	IsFinal   bool            `json:"is_final"`
	IsActive  *bool           `json:"is_active"`
	Milestone model.Milestone `json:"milestone" validate:"omitempty,oneof=confirmed shipped delivered"`
}

type StatusService interface {
	ListStatuses(ctx context.Context) ([]model.OrderStatus, error)
	CreateStatus(ctx context.Context, input CreateStatusInput) (*model.OrderStatus, error)
	// ReorderStatuses renumbers the listed statuses 1..n in the given order.
	// Statuses not listed keep their position after the listed ones.
	ReorderStatuses(ctx context.Context, ids []uint) ([]model.OrderStatus, error)
	DefaultStatus(ctx context.Context) (*model.OrderStatus, error)
}

type statusService struct {
	statusRepo repository.StatusRepository
	db         *gorm.DB
	logger     *gecho.Logger
}

func NewStatusService(statusRepo repository.StatusRepository, db *gorm.DB, logger *gecho.Logger) StatusService {
	return &statusService{statusRepo: statusRepo, db: db, logger: logger}
}

// ensureTransitionAllowed is the single guard consulted before any status
// write: final statuses are absorbing.
func ensureTransitionAllowed(entity string, current *model.OrderStatus) error {
	if current.IsFinal {
		return apperr.AlreadyFinal(entity, current.Code)
	}
	return nil
}

// resolveDefaultStatus maps a missing default onto a configuration error.
func resolveDefaultStatus(ctx context.Context, repo repository.StatusRepository) (*model.OrderStatus, error) {
	status, err := repo.FindDefault(ctx)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Configuration("no active order status is configured")
	}
	return status, err
}

func (s *statusService) ListStatuses(ctx context.Context) ([]model.OrderStatus, error) {
	return s.statusRepo.FindAll(ctx)
}

func (s *statusService) DefaultStatus(ctx context.Context) (*model.OrderStatus, error) {
	return resolveDefaultStatus(ctx, s.statusRepo)
}

func (s *statusService) CreateStatus(ctx context.Context, input CreateStatusInput) (*model.OrderStatus, error) {
	if err := validateInput("order status", input); err != nil {
		return nil, err
	}

	status := &model.OrderStatus{
		Code:      input.Code,
		Name:      input.Name,
		BgColor:   input.BgColor,
		TextColor: input.TextColor,
		IsFinal:   input.IsFinal,
		IsActive:  input.IsActive == nil || *input.IsActive,
		Milestone: input.Milestone,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.statusRepo.WithTx(tx)
		if input.SortOrder != nil {
			status.SortOrder = *input.SortOrder
		} else {
			max, err := repo.MaxSortOrder(ctx)
			if err != nil {
				return err
			}
			status.SortOrder = max + 1
		}
		return repo.Create(ctx, status)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status created",
		gecho.Field("code", status.Code),
		gecho.Field("is_final", status.IsFinal),
		gecho.Field("sort_order", status.SortOrder),
	)
	return status, nil
}

func (s *statusService) ReorderStatuses(ctx context.Context, ids []uint) ([]model.OrderStatus, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation("order statuses", "at least one id is required")
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, apperr.Validation("order statuses", "status %d listed twice", id)
		}
		seen[id] = true
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.statusRepo.WithTx(tx)
		all, err := repo.FindAll(ctx)
		if err != nil {
			return err
		}
		known := make(map[uint]bool, len(all))
		for _, st := range all {
			known[st.ID] = true
		}
		for _, id := range ids {
			if !known[id] {
				return apperr.NotFound(fmt.Sprintf("order status %d", id))
			}
		}

		position := 1
		for _, id := range ids {
			if err := repo.UpdateSortOrder(ctx, id, position); err != nil {
				return err
			}
			position++
		}
		for _, st := range all {
			if seen[st.ID] {
				continue
			}
			if err := repo.UpdateSortOrder(ctx, st.ID, position); err != nil {
				return err
			}
			position++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order statuses reordered", gecho.Field("ids", ids))
	return s.statusRepo.FindAll(ctx)
}
