package repo

import (
	"context"

	"github.com/rogerio-castellano/store-dashboard/internal/models"
)

// ProductRepository defines the catalog operations the stock view needs.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, p models.ProductRequest) (models.Product, error)
	Update(ctx context.Context, p models.ProductRequest) (models.Product, error)
	Delete(ctx context.Context, id int) error
}
