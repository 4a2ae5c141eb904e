package model

import "time"

// Product represents a row in the `products` table.  SKU is unique across the
// catalog; when the client omits it a fallback value is generated at creation.
type Product struct {
	ID          string    // products.id
	Name        string    // products.name
	Description *string   // products.description (nullable)
	Price       float64   // products.price (DECIMAL(10,2))
	Stock       int       // products.stock
	SKU         string    // products.sku (unique)
	ImageURL    *string   // products.image_url (nullable)
	IsActive    bool      // products.is_active
	CategoryID  string    // products.category_id (FK -> categories.id)
	CreatedAt   time.Time // products.created_at
	UpdatedAt   time.Time // products.updated_at

	// Category is joined in by the repository so responses can embed it.
	Category *Category
}
