package repo

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rogerio-castellano/store-dashboard/internal/models"
)

const productsPath = "/api/produits"

// ErrProductNotFound is returned when a product id is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

// APIProductRepository reads and writes the catalog through the backend.
type APIProductRepository struct {
	api Requester
}

func NewAPIProductRepository(api Requester) *APIProductRepository {
	return &APIProductRepository{api: api}
}

func (r *APIProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.api.DoJSON(ctx, http.MethodGet, productsPath, nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *APIProductRepository) Create(ctx context.Context, p models.ProductRequest) (models.Product, error) {
	p.ID = 0
	var created models.Product
	err := r.api.DoJSON(ctx, http.MethodPost, productsPath, nil, p, &created)
	return created, err
}

func (r *APIProductRepository) Update(ctx context.Context, p models.ProductRequest) (models.Product, error) {
	if p.ID <= 0 {
		return models.Product{}, ErrProductNotFound
	}
	var updated models.Product
	err := r.api.DoJSON(ctx, http.MethodPut, productsPath, nil, p, &updated)
	return updated, err
}

func (r *APIProductRepository) Delete(ctx context.Context, id int) error {
	return r.api.DoJSON(ctx, http.MethodDelete, productsPath+"/"+strconv.Itoa(id), nil, nil, nil)
}

// FindProduct returns the product with the given id from list.
func FindProduct(products []models.Product, id int) (models.Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// InStock keeps only products with a positive quantity, preserving order.
func InStock(products []models.Product) []models.Product {
	available := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.InStock() {
			available = append(available, p)
		}
	}
	return available
}
