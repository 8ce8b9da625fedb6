package repository

import (
	"context"
	"time"

	"go-commerce-core/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter selects orders by the finality of their current status.
type OrderFilter string

const (
	FilterAll       OrderFilter = "all"
	FilterActive    OrderFilter = "active"
	FilterCompleted OrderFilter = "completed"
)

func (f OrderFilter) IsValid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	default:
		return false
	}
}

// StatusCount is one row of the per-status order breakdown.
type StatusCount struct {
	StatusID uint   `json:"status_id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Count    int64  `json:"count"`
}

// OrderVolume is the number and value of orders placed on one day.
type OrderVolume struct {
	Date   string          `json:"date"`
	Orders int64           `json:"orders"`
	Amount decimal.Decimal `json:"amount"`
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	// Create inserts the order and its items.
	Create(ctx context.Context, order *model.Order) error
	// FindByID loads the order with status, items and assignment.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// FindByIDForUpdate row-locks the bare order row.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter OrderFilter) ([]model.Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountUnassignedActive(ctx context.Context) (int64, error)
	GetOrderVolume(ctx context.Context, startDate, endDate time.Time) ([]OrderVolume, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepo{tx}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return translate(err, "order "+order.OrderNumber)
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if len(order.Items) == 0 {
		return nil
	}
	return db.Create(&order.Items).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Status").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, product_name ASC") }).
		Preload("Assignment.Manager").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "order "+id.String())
	}
	return &order, nil
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "order "+id.String())
	}
	return &order, nil
}

func (r *orderRepo) FindItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uuid.UUID, filter OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	err := r.filtered(ctx, filter).
		Where("orders.user_id = ?", userID).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	err := r.filtered(ctx, filter).
		Preload("Assignment.Manager").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) filtered(ctx context.Context, filter OrderFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Preload("Status").Order("orders.created_at DESC")
	switch filter {
	case FilterActive:
		q = q.Joins("JOIN order_statuses ON order_statuses.id = orders.status_id").
			Where("order_statuses.is_final = ?", false)
	case FilterCompleted:
		q = q.Joins("JOIN order_statuses ON order_statuses.id = orders.status_id").
			Where("order_statuses.is_final = ?", true)
	}
	return q
}

func (r *orderRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var results []StatusCount
	err := r.db.WithContext(ctx).Model(&model.OrderStatus{}).
		Select("order_statuses.id AS status_id, order_statuses.code, order_statuses.name, COUNT(orders.id) AS count").
		Joins("LEFT JOIN orders ON orders.status_id = order_statuses.id AND orders.deleted_at IS NULL").
		Group("order_statuses.id, order_statuses.code, order_statuses.name, order_statuses.sort_order").
		Order("order_statuses.sort_order ASC").
		Scan(&results).Error
	return results, err
}

func (r *orderRepo) CountUnassignedActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Joins("JOIN order_statuses ON order_statuses.id = orders.status_id").
		Joins("LEFT JOIN order_manager_assignments ON order_manager_assignments.order_id = orders.id").
		Where("order_statuses.is_final = ? AND order_manager_assignments.id IS NULL", false).
		Count(&count).Error
	return count, err
}

func (r *orderRepo) GetOrderVolume(ctx context.Context, startDate, endDate time.Time) ([]OrderVolume, error) {
	var results []OrderVolume

	rows, err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as orders,
			COALESCE(SUM(total_amount), 0) as amount
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data OrderVolume
		if err := rows.Scan(&data.Date, &data.Orders, &data.Amount); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}
