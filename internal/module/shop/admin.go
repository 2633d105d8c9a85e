// Package shop registers products and orders with the admin site.
package shop

import (
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/admin"
	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/store"
)

// ProductAdmin lists products with price and stock.
var ProductAdmin = admin.Options{
	Name:         "products",
	Verbose:      "Product",
	ListDisplay:  []string{"name", "price", "stock_quantity", "created_at"},
	SearchFields: []string{"name", "description"},
	ListFilter:   []string{"created_at"},
}

// OrderAdmin lists orders by customer and date.
var OrderAdmin = admin.Options{
	Name:         "orders",
	Verbose:      "Order",
	ListDisplay:  []string{"customer_name", "order_date"},
	SearchFields: []string{"customer_name"},
	ListFilter:   []string{"order_date"},
}

// OrderItemAdmin lists order lines, including detached ones.
var OrderItemAdmin = admin.Options{
	Name:         "order_items",
	Verbose:      "Order item",
	ListDisplay:  []string{"product", "quantity", "order_id"},
	SearchFields: []string{"product"},
	ListFilter:   []string{"order_id"},
}

// RegisterAdmin adds products, orders and order items to site.
func RegisterAdmin(site *admin.Site, db *gorm.DB) {
	admin.Register[domain.Product](site, db, store.New[domain.Product](db, ProductAdmin.StoreOptions()), ProductAdmin)
	admin.Register[domain.Order](site, db, store.New[domain.Order](db, OrderAdmin.StoreOptions()), OrderAdmin)
	admin.Register[domain.OrderItem](site, db, store.New[domain.OrderItem](db, OrderItemAdmin.StoreOptions()), OrderItemAdmin)
}
