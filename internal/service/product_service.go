package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-commerce-core/internal/apperr"
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/repository"
	"go-commerce-core/pkg/slugify"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const draftPrefix = "draft-"

type FinalizeInput struct {
	Name           string          `json:"name" validate:"required,max=255"`
	Article        string          `json:"article" validate:"required,max=64"`
	Price          decimal.Decimal `json:"price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	Quantity       int             `json:"quantity" validate:"min=0"`
	Description    string          `json:"description"`
	IsVisible      *bool           `json:"is_visible"`
	BrandID        *uint           `json:"brand_id"`
	CategoryID     *uint           `json:"category_id"`
	SupplierID     *uint           `json:"supplier_id"`
	StatusID       *uint           `json:"status_id"`
}

type ProductService interface {
	CreateDraft(ctx context.Context, userID string) (*model.Product, error)
	Finalize(ctx context.Context, id uint, input FinalizeInput, userID string) (*model.Product, error)
	DeleteDraft(ctx context.Context, id uint) error
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	// PurgeStaleDrafts destroys drafts not touched since now-olderThan.
	PurgeStaleDrafts(ctx context.Context, olderThan time.Duration) (int64, error)
}

type productService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	events      EventPublisher
	logger      *gecho.Logger
}

func NewProductService(productRepo repository.ProductRepository, db *gorm.DB, events EventPublisher, logger *gecho.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		db:          db,
		events:      publisherOrNoop(events),
		logger:      logger,
	}
}

func placeholderIdentity() string {
	return draftPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *productService) CreateDraft(ctx context.Context, userID string) (*model.Product, error) {
	placeholder := placeholderIdentity()
	product := &model.Product{
		Article:   placeholder,
		Slug:      placeholder,
		Price:     decimal.Zero,
		IsVisible: false,
		IsDraft:   true,
		CreatedBy: userID,
		UpdatedBy: userID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Debug("Draft product created", gecho.Field("product_id", product.ID))
	return product, nil
}

func (s *productService) Finalize(ctx context.Context, id uint, input FinalizeInput, userID string) (*model.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Article = strings.TrimSpace(input.Article)
	entity := fmt.Sprintf("product %d", id)
	if err := validateInput(entity, input); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() || input.WholesalePrice.IsNegative() {
		return nil, apperr.Validation(entity, "prices must not be negative")
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)

		p, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !p.IsDraft {
			return apperr.InvalidState(entity, "already finalized")
		}

		base := slugify.Base(input.Name)
		taken, err := repo.SlugsLike(ctx, base, p.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		p.Name = input.Name
		p.Article = input.Article
		p.Slug = slugify.Unique(base, taken)
		p.Price = input.Price
		p.WholesalePrice = input.WholesalePrice
		p.Quantity = input.Quantity
		p.Description = input.Description
		p.IsVisible = input.IsVisible == nil || *input.IsVisible
		p.BrandID = input.BrandID
		p.CategoryID = input.CategoryID
		p.SupplierID = input.SupplierID
		p.StatusID = input.StatusID
		p.IsDraft = false
		p.FinalizedAt = &now
		p.UpdatedBy = userID

		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product finalized",
		gecho.Field("product_id", product.ID),
		gecho.Field("article", product.Article),
		gecho.Field("slug", product.Slug),
	)
	s.events.Publish(EventProductFinalized, map[string]interface{}{
		"id":      product.ID,
		"article": product.Article,
		"slug":    product.Slug,
		"name":    product.Name,
	})
	return product, nil
}

func (s *productService) DeleteDraft(ctx context.Context, id uint) error {
	entity := fmt.Sprintf("product %d", id)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)
		p, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !p.IsDraft {
			return apperr.InvalidState(entity, "only drafts can be deleted here")
		}
		return repo.Delete(ctx, id)
	})
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *productService) PurgeStaleDrafts(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, apperr.Validation("drafts", "age must be positive")
	}
	cutoff := time.Now().Add(-olderThan)
	n, err := s.productRepo.DeleteDraftsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Stale drafts purged", gecho.Field("count", n), gecho.Field("cutoff", cutoff))
	return n, nil
}
