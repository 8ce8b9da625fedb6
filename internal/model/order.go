package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	default:
		return false
	}
}

// Order is a frozen record of what was agreed at purchase time. Only the
// status, payment status and milestone timestamps change after creation.
type Order struct {
	BaseModel
	OrderNumber   string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	StatusID      uint            `gorm:"not null;index" json:"status_id"`
	Status        *OrderStatus    `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	StockReserved bool            `gorm:"not null;default:false" json:"-"`

	// Customer contact / delivery snapshot
	CustomerName    string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail   string `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone   string `gorm:"type:varchar(20)" json:"customer_phone"`
	DeliveryMethod  string `gorm:"type:varchar(30)" json:"delivery_method"`
	DeliveryAddress string `gorm:"type:text" json:"delivery_address,omitempty"`
	Comment         string `gorm:"type:text" json:"comment,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`

	Items      []OrderItem             `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Assignment *OrderManagerAssignment `gorm:"foreignKey:OrderID" json:"assignment,omitempty"`
}

// OrderItem snapshots product data at purchase time. ProductID is kept as a
// loose reference: the product may later change or disappear.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID      *uint           `gorm:"index" json:"product_id,omitempty"`
	ProductName    string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductArticle string          `gorm:"type:varchar(64);not null" json:"product_article"`
	PricePerItem   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_per_item"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewOrderItem snapshots p for qty units.
func NewOrderItem(p *Product, qty int) OrderItem {
	id := p.ID
	return OrderItem{
		ID:             uuid.New(),
		ProductID:      &id,
		ProductName:    p.Name,
		ProductArticle: p.Article,
		PricePerItem:   p.Price,
		Quantity:       qty,
		TotalPrice:     p.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// OrderManagerAssignment is the single current owner of an order.
type OrderManagerAssignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	ManagerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"manager_id"`
	Manager      *User     `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	AssignedByID uuid.UUID `gorm:"type:uuid;not null" json:"assigned_by_id"`
	AssignedAt   time.Time `gorm:"not null" json:"assigned_at"`
}
