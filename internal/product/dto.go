package product

import "github.com/shopspring/decimal"

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: Product not found
	Error string `json:"error"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	CategoryID  string          `json:"category_id"    binding:"required,uuid"`
	Name        string          `json:"name"           binding:"required,max=200" example:"Cedar Sandal"`
	Description string          `json:"description"    example:"Hand-stitched leather"`
	Price       decimal.Decimal `json:"price"          swaggertype:"string" example:"89.00"`
	ImageURL    string          `json:"image_url"`
	IsFeatured  bool            `json:"is_featured"`
	Stock       int             `json:"stock_quantity" binding:"gte=0" example:"10"`
	SKU         string          `json:"sku"`
}

// UpdateProductRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
	Stock       *int             `json:"stock_quantity" binding:"omitempty,gte=0"`
	IsActive    *bool            `json:"is_active"`
	IsFeatured  *bool            `json:"is_featured"`
}
