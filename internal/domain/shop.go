package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an item offered for sale.
type Product struct {
	BaseModel
	Name          string          `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null" json:"stock_quantity" binding:"gte=0"`
}

// Validate checks constraints the binding tags cannot express.
func (p *Product) Validate() error {
	return validatePrice(p.Price)
}

// Order is a customer order. Its items outlive it: deleting an order only
// detaches them.
type Order struct {
	BaseModel
	CustomerName string      `gorm:"size:50;not null" json:"customer_name" binding:"required,max=50"`
	OrderDate    time.Time   `gorm:"type:date;not null" json:"order_date" binding:"required"`
	Items        []OrderItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"items,omitempty" binding:"-"`
}

// OrderItem is a line of an order. Product is free text, not a reference.
type OrderItem struct {
	BaseModel
	OrderID  *uint  `gorm:"index" json:"order_id"`
	Order    *Order `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"order,omitempty" binding:"-"`
	Product  string `gorm:"size:50;not null" json:"product" binding:"required,max=50"`
	Quantity int    `gorm:"not null" json:"quantity"`
}
