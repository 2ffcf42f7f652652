package ui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rogerio-castellano/store-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidForm means the form layer rejected the input; nothing was sent to the backend.
var ErrInvalidForm = errors.New("invalid form")

type FieldError struct {
	Field       string
	Description string
}

// FieldErrors is the list of client-side validation failures of one form.
type FieldErrors []FieldError

func (fe FieldErrors) For(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Description
		}
	}
	return ""
}

// ProductForm holds the raw modal inputs so they can be shown again after a failure.
type ProductForm struct {
	ID            int
	Name          string
	PurchasePrice string
	SalePrice     string
	Quantity      string

	Errors      FieldErrors
	ServerError string
}

// Editing reports whether the form updates an existing product.
func (f *ProductForm) Editing() bool {
	return f.ID > 0
}

// ProductFormFrom pre-fills the modal with a product's current values.
func ProductFormFrom(p models.Product) *ProductForm {
	return &ProductForm{
		ID:            p.ID,
		Name:          p.Name,
		PurchasePrice: p.PurchasePrice.StringFixed(2),
		SalePrice:     p.SalePrice.StringFixed(2),
		Quantity:      strconv.Itoa(p.Quantity),
	}
}

// Validate checks the inputs and builds the request. Field errors are stored on the form.
func (f *ProductForm) Validate(msg *Messages) (models.ProductRequest, error) {
	f.Errors = nil
	req := models.ProductRequest{ID: f.ID, Name: strings.TrimSpace(f.Name)}

	if req.Name == "" {
		f.Errors = append(f.Errors, FieldError{Field: "name", Description: msg.T(MsgNameRequired)})
	}

	var problem string
	if req.PurchasePrice, problem = parsePrice(f.PurchasePrice); problem != "" {
		f.Errors = append(f.Errors, FieldError{Field: "purchase_price", Description: msg.T(problem)})
	}
	if req.SalePrice, problem = parsePrice(f.SalePrice); problem != "" {
		f.Errors = append(f.Errors, FieldError{Field: "sale_price", Description: msg.T(problem)})
	}
	if req.Quantity, problem = parseQuantity(f.Quantity, 0); problem != "" {
		f.Errors = append(f.Errors, FieldError{Field: "quantity", Description: msg.T(problem)})
	}

	if len(f.Errors) > 0 {
		return models.ProductRequest{}, ErrInvalidForm
	}
	return req, nil
}

// parsePrice accepts "12", "12.5" or "12,50": non-negative, at most two decimals.
// The result is normalised to two decimal places.
func parsePrice(raw string) (decimal.Decimal, string) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return decimal.Zero, MsgPriceInvalid
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, MsgPriceInvalid
	}
	if d.IsNegative() {
		return decimal.Zero, MsgPriceNegative
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, MsgPriceDecimals
	}
	return d.Round(2), ""
}

func parseQuantity(raw string, least int) (int, string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, MsgQuantityInvalid
	}
	if n < least {
		if least > 0 {
			return 0, MsgQuantityMin
		}
		return 0, MsgQuantityNegative
	}
	return n, ""
}

// MovementForm is the sale or loss entry form.
type MovementForm struct {
	ProductID string
	Quantity  string

	Errors      FieldErrors
	ServerError string
}

// Validate requires a chosen product and a whole quantity of at least one.
func (f *MovementForm) Validate(msg *Messages) (models.MovementRequest, error) {
	f.Errors = nil
	var req models.MovementRequest

	id, err := strconv.Atoi(strings.TrimSpace(f.ProductID))
	if err != nil || id <= 0 {
		f.Errors = append(f.Errors, FieldError{Field: "product", Description: msg.T(MsgProductRequired)})
	}
	req.ProductID = id

	var problem string
	if req.Quantity, problem = parseQuantity(f.Quantity, 1); problem != "" {
		f.Errors = append(f.Errors, FieldError{Field: "quantity", Description: msg.T(problem)})
	}

	if len(f.Errors) > 0 {
		return models.MovementRequest{}, ErrInvalidForm
	}
	return req, nil
}

// DateRange is the analysis period, both ends inclusive.
type DateRange struct {
	Start string
	End   string

	Errors FieldErrors
}

// DefaultRange spans the first day of now's month to now.
func DefaultRange(now time.Time) DateRange {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return DateRange{Start: first.Format(dateLayout), End: now.Format(dateLayout)}
}

// Validate parses both dates and requires start <= end.
func (r *DateRange) Validate(msg *Messages) (time.Time, time.Time, error) {
	r.Errors = nil

	start, err := time.Parse(dateLayout, strings.TrimSpace(r.Start))
	if err != nil {
		r.Errors = append(r.Errors, FieldError{Field: "start_date", Description: msg.T(MsgDateInvalid)})
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(r.End))
	if err != nil {
		r.Errors = append(r.Errors, FieldError{Field: "end_date", Description: msg.T(MsgDateInvalid)})
	}
	if len(r.Errors) == 0 && start.After(end) {
		r.Errors = append(r.Errors, FieldError{Field: "range", Description: msg.T(MsgDateRangeInvalid)})
	}

	if len(r.Errors) > 0 {
		return time.Time{}, time.Time{}, ErrInvalidForm
	}
	return start, end, nil
}
