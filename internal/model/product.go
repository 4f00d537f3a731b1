package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	BaseModel
	Audit
	Name        string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_products_owner_name,where:deleted_at IS NULL" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	ImagePath   string          `gorm:"type:varchar(512)" json:"image_path,omitempty"`

	OwnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_products_owner_name,where:deleted_at IS NULL" json:"owner_id"`
	Owner   *Account  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SellerName is the owner's display name, empty when Owner is not loaded
func (p *Product) SellerName() string {
	if p.Owner == nil {
		return ""
	}
	return p.Owner.Name
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}
