package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

type MovementReason string

const (
	ReasonOrder      MovementReason = "order"
	ReasonCancel     MovementReason = "cancel"
	ReasonAdjustment MovementReason = "adjustment"
)

// StockMovement journals every change of Product.Stock
type StockMovement struct {
	BaseModel
	ProductID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Type       MovementType   `gorm:"type:varchar(10);not null" json:"type"`
	Reason     MovementReason `gorm:"type:varchar(20);not null" json:"reason"`
	Quantity   int            `gorm:"not null" json:"quantity"`
	StockAfter int            `gorm:"not null" json:"stock_after"`
	OrderID    *uuid.UUID     `gorm:"type:uuid;index" json:"order_id,omitempty"`
	ActorID    string         `gorm:"type:varchar(64)" json:"actor_id"`
}
