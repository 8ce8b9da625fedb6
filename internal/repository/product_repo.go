package repository

import (
	"context"
	"fmt"
	"time"

	"go-commerce-core/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	// FindByIDForUpdate row-locks the product until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error)
	// LockByIDs row-locks the given products in id order so concurrent
	// transactions always acquire locks in the same sequence.
	LockByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) error
	// SlugsLike returns the set of slugs equal to base or starting with "base-".
	SlugsLike(ctx context.Context, base string, excludeID uint) (map[string]bool, error)
	// DecrementStock subtracts qty only when at least qty is on hand and
	// reports whether the row changed.
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uint, qty int) error
	DeleteDraftsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error, "product "+product.Article)
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("product %d", id))
	}
	return &product, nil
}

func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("product %d", id))
	}
	return &product, nil
}

func (r *productRepo) LockByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Save(product).Error, fmt.Sprintf("product %d", product.ID))
}

func (r *productRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("product %d", id))
	}
	return nil
}

func (r *productRepo) SlugsLike(ctx context.Context, base string, excludeID uint) (map[string]bool, error) {
	var slugs []string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("(slug = ? OR slug LIKE ?) AND id <> ?", base, base+"-%", excludeID).
		Pluck("slug", &slugs).Error
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		taken[s] = true
	}
	return taken, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *productRepo) IncrementStock(ctx context.Context, id uint, qty int) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty)).Error
}

func (r *productRepo) DeleteDraftsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_draft = ? AND updated_at < ?", true, cutoff).
		Delete(&model.Product{})
	return result.RowsAffected, result.Error
}
