package repository

import (
	"go-commerce-core/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the core owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.CartLine{},
		&model.OrderStatus{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderManagerAssignment{},
		&model.AvailabilityRule{},
	)
}
