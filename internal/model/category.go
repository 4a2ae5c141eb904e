package model

import "time"

// Category represents a row in the `categories` table.  Products reference a
// category through products.category_id.  Slug is the URL-friendly unique key
// used by the public lookup endpoint.
type Category struct {
	ID          string    // categories.id
	Name        string    // categories.name
	Slug        string    // categories.slug (unique)
	Description *string   // categories.description (nullable)
	ImageURL    *string   // categories.image_url (nullable)
	IsActive    bool      // categories.is_active
	CreatedAt   time.Time // categories.created_at
	UpdatedAt   time.Time // categories.updated_at

	// ProductCount is populated by list/get queries via a COUNT subquery; it is
	// not a column of its own.
	ProductCount int
}
