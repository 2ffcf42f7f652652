package ui

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/chart"
	"github.com/rogerio-castellano/store-dashboard/internal/models"
	"github.com/rogerio-castellano/store-dashboard/internal/repo"
	"github.com/shopspring/decimal"
)

const dateLayout = repo.DateLayout

// ErrNotConfirmed is returned when a delete is attempted without the confirmation step.
var ErrNotConfirmed = errors.New("delete not confirmed")

// Views builds the content of every tab and runs the mutations behind its forms.
type Views struct {
	Products repo.ProductRepository
	Sales    repo.SaleRepository
	Losses   repo.LossRepository
	Metrics  repo.MetricsRepository
	Exports  repo.ExportRepository
	Canvas   *chart.Canvas
	Msg      *Messages
	Now      func() time.Time
}

// NewViews wires every view to the same backend requester.
func NewViews(api repo.Requester, canvas *chart.Canvas, msg *Messages) *Views {
	return &Views{
		Products: repo.NewAPIProductRepository(api),
		Sales:    repo.NewAPISaleRepository(api),
		Losses:   repo.NewAPILossRepository(api),
		Metrics:  repo.NewAPIMetricsRepository(api),
		Exports:  repo.NewAPIExportRepository(api),
		Canvas:   canvas,
		Msg:      msg,
		Now:      time.Now,
	}
}

func (v *Views) Loaders() map[Tab]Loader {
	return map[Tab]Loader{
		TabDashboard: v.Dashboard,
		TabStock:     v.Stock,
		TabSales:     func(ctx context.Context, req Request) (Content, error) { return v.Movements(ctx, TabSales, req) },
		TabLosses:    func(ctx context.Context, req Request) (Content, error) { return v.Movements(ctx, TabLosses, req) },
		TabAnalysis:  v.Analysis,
	}
}

type DashboardView struct {
	Snapshot models.DashboardSnapshot
}

// Dashboard fetches the snapshot once per activation.
func (v *Views) Dashboard(ctx context.Context, _ Request) (Content, error) {
	snap, err := v.Metrics.Dashboard(ctx)
	if err != nil {
		return Content{}, err
	}
	return Content{Template: "dashboard", Data: DashboardView{Snapshot: snap}}, nil
}

// StockView is the product table plus, at most, one open modal.
type StockView struct {
	Products []models.Product
	Form     *ProductForm
	Confirm  *models.Product
	Error    string
}

// Stock lists the catalog. Query "new" opens an empty modal, "edit" a pre-filled one
// and "delete" the confirmation prompt. A ProductForm in req is shown again as submitted.
func (v *Views) Stock(ctx context.Context, req Request) (Content, error) {
	products, err := v.Products.GetAll(ctx)
	if err != nil {
		return Content{}, err
	}
	view := StockView{Products: products, Error: req.Error}

	switch {
	case req.Form != nil:
		if f, ok := req.Form.(*ProductForm); ok {
			view.Form = f
		}
	case req.Query.Get("new") != "":
		view.Form = &ProductForm{}
	case req.Query.Get("edit") != "":
		p, err := lookup(products, req.Query.Get("edit"))
		if err != nil {
			view.Error = v.Msg.T(MsgProductNotFound)
			break
		}
		view.Form = ProductFormFrom(p)
	case req.Query.Get("delete") != "":
		p, err := lookup(products, req.Query.Get("delete"))
		if err != nil {
			view.Error = v.Msg.T(MsgProductNotFound)
			break
		}
		view.Confirm = &p
	}

	return Content{Template: "stock", Data: view}, nil
}

func lookup(products []models.Product, rawID string) (models.Product, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return models.Product{}, repo.ErrProductNotFound
	}
	return repo.FindProduct(products, id)
}

// SaveProduct creates the product, or updates it when the form carries an id.
// On failure the reason is stored on the form so the modal can stay open.
func (v *Views) SaveProduct(ctx context.Context, form *ProductForm) error {
	req, err := form.Validate(v.Msg)
	if err != nil {
		return err
	}

	if form.Editing() {
		_, err = v.Products.Update(ctx, req)
	} else {
		_, err = v.Products.Create(ctx, req)
	}
	if err != nil && !errors.Is(err, backend.ErrSessionExpired) {
		form.ServerError = v.Msg.Error(err)
	}
	return err
}

// DeleteProduct issues the delete only once the user confirmed it.
func (v *Views) DeleteProduct(ctx context.Context, id int, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return v.Products.Delete(ctx, id)
}

type MovementRow struct {
	Product  string
	Quantity int
	Total    decimal.Decimal
	Date     time.Time
}

// MovementView is the sales or losses tab: entry form plus history.
type MovementView struct {
	Kind      Tab
	Options   []models.Product
	Rows      []MovementRow
	ShowTotal bool
	Form      *MovementForm
}

// Movements lists in-stock products for the form and the recorded history.
func (v *Views) Movements(ctx context.Context, kind Tab, req Request) (Content, error) {
	products, err := v.Products.GetAll(ctx)
	if err != nil {
		return Content{}, err
	}
	view := MovementView{Kind: kind, Options: repo.InStock(products), ShowTotal: kind == TabSales}

	if f, ok := req.Form.(*MovementForm); ok {
		view.Form = f
	} else {
		view.Form = &MovementForm{ServerError: req.Error}
	}

	switch kind {
	case TabSales:
		sales, err := v.Sales.GetAll(ctx)
		if err != nil {
			return Content{}, err
		}
		for _, s := range sales {
			view.Rows = append(view.Rows, MovementRow{Product: s.ProductName(), Quantity: s.Quantity, Total: s.TotalPrice, Date: s.Date.Time})
		}
	case TabLosses:
		losses, err := v.Losses.GetAll(ctx)
		if err != nil {
			return Content{}, err
		}
		for _, l := range losses {
			view.Rows = append(view.Rows, MovementRow{Product: l.ProductName(), Quantity: l.Quantity, Date: l.Date.Time})
		}
	default:
		return Content{}, ErrUnknownTab
	}

	return Content{Template: "movements", Data: view}, nil
}

// RecordMovement validates the form and records a sale or a loss.
// Available quantities are never adjusted here; the next load re-fetches them.
func (v *Views) RecordMovement(ctx context.Context, kind Tab, form *MovementForm) error {
	req, err := form.Validate(v.Msg)
	if err != nil {
		return err
	}

	switch kind {
	case TabSales:
		_, err = v.Sales.Create(ctx, req)
	case TabLosses:
		_, err = v.Losses.Create(ctx, req)
	default:
		return ErrUnknownTab
	}
	if err != nil && !errors.Is(err, backend.ErrSessionExpired) {
		form.ServerError = v.Msg.Error(err)
	}
	return err
}

type AnalysisView struct {
	Range  DateRange
	Report *models.AnalysisReport
	Chart  *chart.Chart
	Error  string
}

// Analysis validates the range before asking the backend, then redraws the chart.
func (v *Views) Analysis(ctx context.Context, req Request) (Content, error) {
	rng := DefaultRange(v.Now())
	if s := req.Query.Get("start_date"); s != "" {
		rng.Start = s
	}
	if e := req.Query.Get("end_date"); e != "" {
		rng.End = e
	}

	view := AnalysisView{Range: rng}
	start, end, err := view.Range.Validate(v.Msg)
	if err != nil {
		return Content{Template: "analysis", Data: view}, nil
	}

	report, err := v.Metrics.Analysis(ctx, start, end)
	if errors.Is(err, backend.ErrSessionExpired) {
		return Content{}, err
	}
	if err != nil {
		view.Error = v.Msg.Error(err)
		return Content{Template: "analysis", Data: view}, nil
	}

	points := make([]chart.Point, len(report.Daily))
	for i, d := range report.Daily {
		points[i] = chart.Point{Label: d.Day, Value: d.Revenue.InexactFloat64(), Text: v.Msg.Money(d.Revenue)}
	}
	view.Report = &report
	view.Chart = v.Canvas.Draw(points)

	return Content{Template: "analysis", Data: view}, nil
}
