package repository

import (
	"context"
	"fmt"

	"go-commerce-core/internal/model"

	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	// FindAll returns the rules in evaluation order.
	FindAll(ctx context.Context) ([]model.AvailabilityRule, error)
	Create(ctx context.Context, rule *model.AvailabilityRule) error
	Delete(ctx context.Context, id uint) error
	MaxSortOrder(ctx context.Context) (int, error)
	SeedDefaults(ctx context.Context) error
}

type availabilityRepo struct {
	db *gorm.DB
}

func NewAvailabilityRepo(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepo{db}
}

func (r *availabilityRepo) FindAll(ctx context.Context) ([]model.AvailabilityRule, error) {
	var rules []model.AvailabilityRule
	err := r.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&rules).Error
	return rules, err
}

func (r *availabilityRepo) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *availabilityRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.AvailabilityRule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("availability rule %d", id))
	}
	return nil
}

func (r *availabilityRepo) MaxSortOrder(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.AvailabilityRule{}).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

// SeedDefaults installs the global default rules when no rule exists at all.
func (r *availabilityRepo) SeedDefaults(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.AvailabilityRule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	rules := make([]model.AvailabilityRule, len(model.DefaultAvailabilityRules))
	copy(rules, model.DefaultAvailabilityRules)
	return r.db.WithContext(ctx).Create(&rules).Error
}
