package domain

import "time"

// Product represents a sellable item managed through the admin console. The
// commerce platform owns the record; this is the gateway's view of it.
type Product struct {
	// ID is the platform's product identifier.
	ID string `json:"id"`
	// Name is the display name of the product.
	Name string `json:"name"`
	// SKU is the stock keeping unit code.
	SKU string `json:"sku"`
	// Description is the long-form product description.
	Description string `json:"description"`
	// Price is the list price.
	Price float64 `json:"price"`
	// Stock is the available inventory count.
	Stock int `json:"stock"`
	// Published indicates the product is visible in the storefront.
	Published bool `json:"published"`
	// Category is the category name the product belongs to.
	Category string `json:"category"`
	// Brand is the brand name of the product.
	Brand string `json:"brand"`
	// Images holds the product image URLs.
	Images []string `json:"images"`
	// CreatedAt is when the product was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the product was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	// Products holds the products in this page.
	Products []Product `json:"products"`
	// Total is the total number of products matching the filter.
	Total int `json:"total"`
	// Page is the 1-based page number.
	Page int `json:"page"`
	// PageSize is the number of products per page.
	PageSize int `json:"page_size"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	// Search is a free-text term matched against name and SKU.
	Search string
	// Page is the 1-based page number.
	Page int
	// PageSize is the number of products per page.
	PageSize int
}

// Attribute is a catalog attribute value (a category, brand, color or size).
type Attribute struct {
	// ID is the platform's attribute identifier.
	ID string `json:"id"`
	// Name is the display name of the attribute.
	Name string `json:"name"`
	// Slug is the URL-safe form of the name.
	Slug string `json:"slug"`
}

// Attribute resources the admin console manages.
const (
	ResourceCategories = "categories"
	ResourceBrands     = "brands"
	ResourceColors     = "colors"
	ResourceSizes      = "sizes"
)

// ValidResource reports whether resource names a managed attribute collection.
func ValidResource(resource string) bool {
	switch resource {
	case ResourceCategories, ResourceBrands, ResourceColors, ResourceSizes:
		return true
	}
	return false
}
