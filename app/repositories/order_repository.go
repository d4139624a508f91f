package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/reflaxess123/obedi/app/models"
)

// OrderRole narrows FindAll to one side of the order.
type OrderRole string

const (
	RoleAny      OrderRole = ""
	RoleCustomer OrderRole = "customer"
	RoleChef     OrderRole = "chef"
)

// OrderFilter selects the orders visible to UserID.
type OrderFilter struct {
	UserID uint
	Role   OrderRole
	Status *models.OrderStatus
}

// OrderRepository handles database operations for orders, their items and
// their status history.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Transaction runs fn against a repository bound to one transaction.
func (r *OrderRepository) Transaction(ctx context.Context, fn func(tx *OrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderRepository{db: tx})
	})
}

// CountChefLunches counts how many of ids are lunches owned by chefID.
func (r *OrderRepository) CountChefLunches(ctx context.Context, chefID uint, ids []uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Lunch{}).
		Where("user_id = ? AND id IN ?", chefID, ids).
		Count(&n).Error
	return n, err
}

// Create inserts order together with its items and history entries.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Omit("Customer", "Chef").
		Create(order).Error
}

func (r *OrderRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Chef").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Lunch.Images", imagesByPosition).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Order("id desc")
		})
}

// FindByID loads an order with parties, items and history. A missing
// order is (nil, nil).
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.withRelations(r.db.WithContext(ctx)).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindAll returns the orders matching f, newest first.
func (r *OrderRepository) FindAll(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	switch f.Role {
	case RoleCustomer:
		q = q.Where("customer_id = ?", f.UserID)
	case RoleChef:
		q = q.Where("chef_id = ?", f.UserID)
	default:
		q = q.Where("customer_id = ? OR chef_id = ?", f.UserID, f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	orders := []models.Order{}
	err := r.withRelations(q).Order("created_at desc").Order("id desc").Find(&orders).Error
	return orders, err
}

// History returns the caller's finished orders, most recently updated first.
func (r *OrderRepository) History(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.withRelations(r.db.WithContext(ctx).Model(&models.Order{})).
		Where("(customer_id = ? OR chef_id = ?) AND status IN ?", userID, userID,
			[]models.OrderStatus{models.StatusDelivered, models.StatusCancelled}).
		Order("updated_at desc").Order("id desc").
		Find(&orders).Error
	return orders, err
}

// Transition moves the order from one status to another and appends the
// matching history entry in the same transaction. It reports false, and
// writes nothing, when the order is no longer in status from.
func (r *OrderRepository) Transition(ctx context.Context, id uint, from, to models.OrderStatus, comment *string) (bool, error) {
	moved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		moved = true
		return tx.Create(&models.OrderHistory{OrderID: id, Status: to, Comment: comment}).Error
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}
