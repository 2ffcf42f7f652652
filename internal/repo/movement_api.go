package repo

import (
	"context"
	"net/http"

	"github.com/rogerio-castellano/store-dashboard/internal/models"
)

const (
	salesPath  = "/api/ventes"
	lossesPath = "/api/pertes"
)

type APISaleRepository struct {
	api Requester
}

func NewAPISaleRepository(api Requester) *APISaleRepository {
	return &APISaleRepository{api: api}
}

func (r *APISaleRepository) GetAll(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	if err := r.api.DoJSON(ctx, http.MethodGet, salesPath, nil, nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// Create records a sale. The backend computes price and timestamp and decrements stock.
func (r *APISaleRepository) Create(ctx context.Context, m models.MovementRequest) (models.Sale, error) {
	var created models.Sale
	err := r.api.DoJSON(ctx, http.MethodPost, salesPath, nil, m, &created)
	return created, err
}

type APILossRepository struct {
	api Requester
}

func NewAPILossRepository(api Requester) *APILossRepository {
	return &APILossRepository{api: api}
}

func (r *APILossRepository) GetAll(ctx context.Context) ([]models.Loss, error) {
	var losses []models.Loss
	if err := r.api.DoJSON(ctx, http.MethodGet, lossesPath, nil, nil, &losses); err != nil {
		return nil, err
	}
	return losses, nil
}

func (r *APILossRepository) Create(ctx context.Context, m models.MovementRequest) (models.Loss, error) {
	var created models.Loss
	err := r.api.DoJSON(ctx, http.MethodPost, lossesPath, nil, m, &created)
	return created, err
}
