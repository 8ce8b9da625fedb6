package model

import "time"

// AvailabilityRule maps on-hand quantity to a display label. SupplierID nil
// means the rule is global.
type AvailabilityRule struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Operator   string    `gorm:"type:varchar(2);not null" json:"operator"`
	Threshold  int       `gorm:"not null" json:"threshold"`
	Label      string    `gorm:"type:varchar(100);not null" json:"label"`
	Color      string    `gorm:"type:varchar(7)" json:"color,omitempty"`
	SupplierID *uint     `gorm:"index" json:"supplier_id,omitempty"`
	SortOrder  int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

var DefaultAvailabilityRules = []AvailabilityRule{
	{Operator: "<=", Threshold: 0, Label: "Out of stock", Color: "#B71C1C", SortOrder: 1},
	{Operator: "<", Threshold: 5, Label: "Few left", Color: "#E65100", SortOrder: 2},
	{Operator: ">=", Threshold: 5, Label: "In stock", Color: "#1B5E20", SortOrder: 3},
}
