package model

import "time"

// Milestone tags a status whose entry stamps an order timestamp.
type Milestone string

const (
	MilestoneNone      Milestone = ""
	MilestoneConfirmed Milestone = "confirmed"
	MilestoneShipped   Milestone = "shipped"
	MilestoneDelivered Milestone = "delivered"
)

// OrderStatus is administrator-managed reference data. IsFinal is orthogonal
// to SortOrder: reordering never changes which statuses are absorbing.
type OrderStatus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	BgColor   string    `gorm:"type:varchar(7)" json:"bg_color"`
	TextColor string    `gorm:"type:varchar(7)" json:"text_color"`
	SortOrder int       `gorm:"not null;default:0;index" json:"sort_order"`
	IsFinal   bool      `gorm:"not null;default:false" json:"is_final"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	Milestone Milestone `gorm:"type:varchar(20)" json:"milestone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Default statuses installed by the maintenance seeder.
var DefaultOrderStatuses = []OrderStatus{
	{Code: "new", Name: "New", BgColor: "#E3F2FD", TextColor: "#0D47A1", SortOrder: 1, IsActive: true},
	{Code: "confirmed", Name: "Confirmed", BgColor: "#E8F5E9", TextColor: "#1B5E20", SortOrder: 2, IsActive: true, Milestone: MilestoneConfirmed},
	{Code: "shipped", Name: "Shipped", BgColor: "#FFF8E1", TextColor: "#E65100", SortOrder: 3, IsActive: true, Milestone: MilestoneShipped},
	{Code: "delivered", Name: "Delivered", BgColor: "#ECEFF1", TextColor: "#263238", SortOrder: 4, IsActive: true, IsFinal: true, Milestone: MilestoneDelivered},
	{Code: "cancelled", Name: "Cancelled", BgColor: "#FFEBEE", TextColor: "#B71C1C", SortOrder: 5, IsActive: true, IsFinal: true},
}
