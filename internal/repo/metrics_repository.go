package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/store-dashboard/internal/models"
)

type MetricsRepository interface {
	Dashboard(ctx context.Context) (models.DashboardSnapshot, error)
	Analysis(ctx context.Context, start, end time.Time) (models.AnalysisReport, error)
}
