package platform

import (
	"context"
	"errors"

	"similar-products-service/internal/models"
)

// ErrProductNotFound is returned when the platform has no product for
// the requested ID.
var ErrProductNotFound = errors.New("product not found")

// Catalog is the single capability contract every e-commerce platform
// adapter implements. The ranking core depends only on this interface,
// never on a concrete platform.
type Catalog interface {
	// GetProduct retrieves a single product by its platform ID.
	// Returns ErrProductNotFound when the product does not exist.
	GetProduct(ctx context.Context, productID string) (*models.Product, error)

	// ListProductsByCategory retrieves the products of a category,
	// including stock quantity and price. An unknown or empty
	// category yields an empty slice.
	ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error)
}
