package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Article        string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"article"`
	Slug           string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Name           string          `gorm:"type:varchar(255)" json:"name"`
	Description    string          `gorm:"type:text" json:"description,omitempty"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"wholesale_price"`
	Quantity       int             `gorm:"not null;default:0" json:"quantity"`
	IsVisible      bool            `gorm:"not null;default:false" json:"is_visible"`
	IsDraft        bool            `gorm:"not null;default:false;index" json:"is_draft"`

	BrandID    *uint `gorm:"index" json:"brand_id,omitempty"`
	CategoryID *uint `gorm:"index" json:"category_id,omitempty"`
	SupplierID *uint `gorm:"index" json:"supplier_id,omitempty"`
	StatusID   *uint `gorm:"index" json:"status_id,omitempty"`

	CreatedBy   string     `gorm:"type:varchar(64)" json:"created_by,omitempty"`
	UpdatedBy   string     `gorm:"type:varchar(64)" json:"updated_by,omitempty"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsOrderable reports whether buyers can put the product in a cart.
func (p *Product) IsOrderable() bool {
	return !p.IsDraft && p.IsVisible
}
