package repo

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rogerio-castellano/store-dashboard/internal/models"
)

// DateLayout is the day format of the analysis query parameters.
const DateLayout = "2006-01-02"

type APIMetricsRepository struct {
	api Requester
}

func NewAPIMetricsRepository(api Requester) *APIMetricsRepository {
	return &APIMetricsRepository{api: api}
}

func (r *APIMetricsRepository) Dashboard(ctx context.Context) (models.DashboardSnapshot, error) {
	var snap models.DashboardSnapshot
	err := r.api.DoJSON(ctx, http.MethodGet, "/api/dashboard", nil, nil, &snap)
	return snap, err
}

func (r *APIMetricsRepository) Analysis(ctx context.Context, start, end time.Time) (models.AnalysisReport, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(DateLayout))
	q.Set("end_date", end.Format(DateLayout))

	var report models.AnalysisReport
	err := r.api.DoJSON(ctx, http.MethodGet, "/api/analyse", q, nil, &report)
	return report, err
}
