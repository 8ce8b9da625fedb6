package repository

import (
	"context"

	"go-commerce-core/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository interface {
	WithTx(tx *gorm.DB) AssignmentRepository
	// Upsert writes the assignment, replacing any existing row for the same
	// order. The unique index on order_id makes this a single statement.
	Upsert(ctx context.Context, a *model.OrderManagerAssignment) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*model.OrderManagerAssignment, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db}
}

func (r *assignmentRepo) WithTx(tx *gorm.DB) AssignmentRepository {
	return &assignmentRepo{tx}
}

func (r *assignmentRepo) Upsert(ctx context.Context, a *model.OrderManagerAssignment) error {
	return r.db.WithContext(ctx).
		Omit("Manager").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"manager_id", "assigned_by_id", "assigned_at"}),
		}).
		Create(a).Error
}

func (r *assignmentRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*model.OrderManagerAssignment, error) {
	var a model.OrderManagerAssignment
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Where("order_id = ?", orderID).
		First(&a).Error
	if err != nil {
		return nil, translate(err, "assignment for order "+orderID.String())
	}
	return &a, nil
}
