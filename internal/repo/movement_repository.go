package repo

import (
	"context"

	"github.com/rogerio-castellano/store-dashboard/internal/models"
)

type SaleRepository interface {
	GetAll(ctx context.Context) ([]models.Sale, error)
	Create(ctx context.Context, m models.MovementRequest) (models.Sale, error)
}

type LossRepository interface {
	GetAll(ctx context.Context) ([]models.Loss, error)
	Create(ctx context.Context, m models.MovementRequest) (models.Loss, error)
}
