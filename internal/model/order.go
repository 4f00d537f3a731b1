package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderShipped: true},
	OrderShipped:   {OrderDelivered: true},
	OrderDelivered: {},
}

// CanTransition reports whether an order may move from one status to another.
// Statuses only move forward.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Order is a committed purchase. ProductName, Price and SellerName are copied
// from the product when the order is placed and never follow later edits.
type Order struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	SellerName  string          `gorm:"type:varchar(50);not null" json:"seller_name"`
	Quantity    int             `gorm:"not null;check:chk_orders_quantity,quantity > 0" json:"quantity"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:pending" json:"status"`

	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
}

// Total is price times quantity
func (o *Order) Total() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
}
