package models

import "time"

// OrderStatus is a state of the order lifecycle:
// PENDING → ACCEPTED → COOKING → READY → DELIVERED, with CANCELLED
// reachable from any state.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusCooking   OrderStatus = "COOKING"
	StatusReady     OrderStatus = "READY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusAccepted, StatusCooking, StatusReady, StatusDelivered, StatusCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the lifecycle.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Order is placed by a customer with a chef. Status mirrors the newest
// history entry and is rewritten together with every append.
type Order struct {
	ID         uint           `gorm:"primaryKey"`
	CustomerID uint           `gorm:"not null;index"`
	ChefID     uint           `gorm:"not null;index"`
	Comment    *string        `gorm:"type:text"`
	Status     OrderStatus    `gorm:"size:16;not null;default:PENDING;index"`
	Customer   User           `gorm:"foreignKey:CustomerID"`
	Chef       User           `gorm:"foreignKey:ChefID"`
	Items      []OrderItem    `gorm:"foreignKey:OrderID"`
	History    []OrderHistory `gorm:"foreignKey:OrderID"`
	CreatedAt  time.Time      `gorm:"index"`
	UpdatedAt  time.Time      `gorm:"index"`
}

// OrderItem references a lunch as it was at order time. The lunch is not
// re-validated afterwards and may since have been deleted.
type OrderItem struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID uint   `gorm:"not null;index"`
	LunchID uint   `gorm:"not null;index"`
	Lunch   *Lunch `gorm:"foreignKey:LunchID"`
}

// OrderHistory is one immutable entry of an order's status log.
type OrderHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"orderId"`
	Status    OrderStatus `gorm:"size:16;not null" json:"status"`
	Comment   *string     `gorm:"type:text" json:"comment"`
	CreatedAt time.Time   `gorm:"index" json:"createdAt"`
}

func (OrderHistory) TableName() string { return "order_history" }
