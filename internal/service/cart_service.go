package service

import (
	"context"
	"errors"
	"fmt"

	"go-commerce-core/internal/apperr"
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/repository"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLineView is a cart line priced at read time.
type CartLineView struct {
	ID                uint            `json:"id"`
	ProductID         uint            `json:"product_id"`
	ProductName       string          `json:"product_name"`
	ProductArticle    string          `json:"product_article"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	LineTotal         decimal.Decimal `json:"line_total"`
	Available         bool            `json:"available"`
	AvailabilityLabel string          `json:"availability_label,omitempty"`
}

type CartSnapshot struct {
	Lines []CartLineView  `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type CartService interface {
	AddLine(ctx context.Context, userID uuid.UUID, productID uint, qty int) (*model.CartLine, error)
	SetLineQuantity(ctx context.Context, userID uuid.UUID, lineID uint, qty int) (*model.CartLine, error)
	RemoveLine(ctx context.Context, userID uuid.UUID, lineID uint) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Snapshot(ctx context.Context, userID uuid.UUID) (*CartSnapshot, error)
}

type cartService struct {
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	availability AvailabilityService
	db           *gorm.DB
	logger       *gecho.Logger
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, availability AvailabilityService, db *gorm.DB, logger *gecho.Logger) CartService {
	return &cartService{
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		availability: availability,
		db:           db,
		logger:       logger,
	}
}

func (s *cartService) AddLine(ctx context.Context, userID uuid.UUID, productID uint, qty int) (*model.CartLine, error) {
	if qty < 1 {
		return nil, apperr.Validation("cart line", "quantity must be at least 1")
	}

	var line *model.CartLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)

		// Locking the product serializes adds of the same product, so a
		// concurrent first add sees the other's line and merges into it.
		product, err := s.productRepo.WithTx(tx).FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		entity := fmt.Sprintf("product %d", product.ID)
		if !product.IsOrderable() {
			return apperr.Unavailable(entity)
		}

		existing, err := cartRepo.FindLineByProduct(ctx, userID, productID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		total := qty
		if existing != nil {
			total += existing.Quantity
		}
		if total > product.Quantity {
			return apperr.InsufficientStock(entity, total, product.Quantity)
		}

		if existing != nil {
			if err := cartRepo.UpdateQuantity(ctx, existing.ID, total); err != nil {
				return err
			}
			existing.Quantity = total
			line = existing
			return nil
		}

		line = &model.CartLine{UserID: userID, ProductID: productID, Quantity: qty}
		return cartRepo.Create(ctx, line)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Cart line added",
		gecho.Field("user_id", userID),
		gecho.Field("product_id", productID),
		gecho.Field("quantity", line.Quantity),
	)
	return line, nil
}

func (s *cartService) SetLineQuantity(ctx context.Context, userID uuid.UUID, lineID uint, qty int) (*model.CartLine, error) {
	if qty < 1 {
		return nil, apperr.Validation(fmt.Sprintf("cart line %d", lineID), "quantity must be at least 1")
	}

	line, err := s.cartRepo.FindLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if line.Product == nil {
		return nil, apperr.NotFound(fmt.Sprintf("product %d", line.ProductID))
	}
	if qty > line.Product.Quantity {
		return nil, apperr.InsufficientStock(fmt.Sprintf("product %d", line.ProductID), qty, line.Product.Quantity)
	}

	if err := s.cartRepo.UpdateQuantity(ctx, line.ID, qty); err != nil {
		return nil, err
	}
	line.Quantity = qty
	return line, nil
}

func (s *cartService) RemoveLine(ctx context.Context, userID uuid.UUID, lineID uint) error {
	return s.cartRepo.Delete(ctx, userID, lineID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.DeleteByUser(ctx, userID)
}

func (s *cartService) Snapshot(ctx context.Context, userID uuid.UUID) (*CartSnapshot, error) {
	lines, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	classifier, err := s.availability.Classifier(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &CartSnapshot{Lines: make([]CartLineView, 0, len(lines)), Total: decimal.Zero}
	for _, l := range lines {
		if l.Product == nil {
			continue
		}
		p := l.Product
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		snapshot.Lines = append(snapshot.Lines, CartLineView{
			ID:                l.ID,
			ProductID:         p.ID,
			ProductName:       p.Name,
			ProductArticle:    p.Article,
			Quantity:          l.Quantity,
			Price:             p.Price,
			LineTotal:         lineTotal,
			Available:         p.IsOrderable() && p.Quantity >= l.Quantity,
			AvailabilityLabel: classifier.Label(p.Quantity, p.SupplierID),
		})
		snapshot.Total = snapshot.Total.Add(lineTotal)
	}
	return snapshot, nil
}
