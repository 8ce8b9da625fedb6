package repository

import (
	"context"
	"fmt"

	"go-commerce-core/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	// FindByUser returns the user's lines with their products, oldest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
	FindLine(ctx context.Context, userID uuid.UUID, lineID uint) (*model.CartLine, error)
	FindLineByProduct(ctx context.Context, userID uuid.UUID, productID uint) (*model.CartLine, error)
	Create(ctx context.Context, line *model.CartLine) error
	UpdateQuantity(ctx context.Context, lineID uint, qty int) error
	Delete(ctx context.Context, userID uuid.UUID, lineID uint) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) CartRepository {
	return &cartRepo{db}
}

func (r *cartRepo) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepo{tx}
}

func (r *cartRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

func (r *cartRepo) FindLine(ctx context.Context, userID uuid.UUID, lineID uint) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("cart line %d", lineID))
	}
	return &line, nil
}

func (r *cartRepo) FindLineByProduct(ctx context.Context, userID uuid.UUID, productID uint) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("cart line for product %d", productID))
	}
	return &line, nil
}

func (r *cartRepo) Create(ctx context.Context, line *model.CartLine) error {
	err := r.db.WithContext(ctx).Omit("Product").Create(line).Error
	return translate(err, fmt.Sprintf("cart line for product %d", line.ProductID))
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, lineID uint, qty int) error {
	return r.db.WithContext(ctx).Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty).Error
}

func (r *cartRepo) Delete(ctx context.Context, userID uuid.UUID, lineID uint) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&model.CartLine{}).Error
}

func (r *cartRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{}).Error
}
