package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one account's pending selection of one product
type CartLine struct {
	BaseModel
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_lines_owner_product" json:"owner_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_lines_owner_product" json:"product_id"`
	Quantity  int       `gorm:"not null;check:chk_cart_lines_quantity,quantity > 0" json:"quantity"`

	Owner   *Account `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// CartLineResponse is a cart row enriched with the product it points at
type CartLineResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Seller      string          `json:"seller"`
	Quantity    int             `json:"quantity"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	ItemTotal   decimal.Decimal `json:"item_total"`
}

// CartResponse is the full cart listing
type CartResponse struct {
	Items      []CartLineResponse `json:"cart_items"`
	TotalPrice decimal.Decimal    `json:"cart_total_price"`
}

// NewCartResponse builds the listing; lines must have Product (and Product.Owner) preloaded
func NewCartResponse(lines []CartLine) CartResponse {
	resp := CartResponse{
		Items:      make([]CartLineResponse, 0, len(lines)),
		TotalPrice: decimal.Zero,
	}
	for _, l := range lines {
		item := CartLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     decimal.Zero,
			ItemTotal: decimal.Zero,
		}
		if l.Product != nil {
			item.ProductName = l.Product.Name
			item.Seller = l.Product.SellerName()
			item.Stock = l.Product.Stock
			item.Price = l.Product.Price
			item.ItemTotal = l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		}
		resp.TotalPrice = resp.TotalPrice.Add(item.ItemTotal)
		resp.Items = append(resp.Items, item)
	}
	return resp
}
