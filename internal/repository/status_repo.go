package repository

import (
	"context"
	"errors"
	"fmt"

	"go-commerce-core/internal/model"

	"gorm.io/gorm"
)

type StatusRepository interface {
	WithTx(tx *gorm.DB) StatusRepository
	FindAll(ctx context.Context) ([]model.OrderStatus, error)
	FindByID(ctx context.Context, id uint) (*model.OrderStatus, error)
	FindByCode(ctx context.Context, code string) (*model.OrderStatus, error)
	// FindDefault returns the active status with the lowest sort order.
	FindDefault(ctx context.Context) (*model.OrderStatus, error)
	Create(ctx context.Context, status *model.OrderStatus) error
	MaxSortOrder(ctx context.Context) (int, error)
	UpdateSortOrder(ctx context.Context, id uint, sortOrder int) error
	SeedDefaults(ctx context.Context) error
}

type statusRepo struct {
	db *gorm.DB
}

func NewStatusRepo(db *gorm.DB) StatusRepository {
	return &statusRepo{db}
}

func (r *statusRepo) WithTx(tx *gorm.DB) StatusRepository {
	return &statusRepo{tx}
}

func (r *statusRepo) FindAll(ctx context.Context) ([]model.OrderStatus, error) {
	var statuses []model.OrderStatus
	err := r.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&statuses).Error
	return statuses, err
}

func (r *statusRepo) FindByID(ctx context.Context, id uint) (*model.OrderStatus, error) {
	var status model.OrderStatus
	if err := r.db.WithContext(ctx).First(&status, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("order status %d", id))
	}
	return &status, nil
}

func (r *statusRepo) FindByCode(ctx context.Context, code string) (*model.OrderStatus, error) {
	var status model.OrderStatus
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&status).Error; err != nil {
		return nil, translate(err, "order status "+code)
	}
	return &status, nil
}

func (r *statusRepo) FindDefault(ctx context.Context) (*model.OrderStatus, error) {
	var status model.OrderStatus
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		First(&status).Error
	if err != nil {
		return nil, translate(err, "default order status")
	}
	return &status, nil
}

func (r *statusRepo) Create(ctx context.Context, status *model.OrderStatus) error {
	return translate(r.db.WithContext(ctx).Create(status).Error, "order status "+status.Code)
}

func (r *statusRepo) MaxSortOrder(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.OrderStatus{}).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

func (r *statusRepo) UpdateSortOrder(ctx context.Context, id uint, sortOrder int) error {
	return r.db.WithContext(ctx).Model(&model.OrderStatus{}).
		Where("id = ?", id).
		Update("sort_order", sortOrder).Error
}

// SeedDefaults creates the default statuses that don't exist yet.
func (r *statusRepo) SeedDefaults(ctx context.Context) error {
	for _, s := range model.DefaultOrderStatuses {
		var existing model.OrderStatus
		err := r.db.WithContext(ctx).Where("code = ?", s.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status := s
			if err := r.db.WithContext(ctx).Create(&status).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
