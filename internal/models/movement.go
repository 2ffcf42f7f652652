package models

import "github.com/shopspring/decimal"

// Sale is a recorded sale. Price and date are set by the backend.
type Sale struct {
	ID         int             `json:"id"`
	ProductID  int             `json:"produit_id"`
	Product    *ProductRef     `json:"produit,omitempty"`
	Quantity   int             `json:"quantite"`
	TotalPrice decimal.Decimal `json:"prix_total"`
	Date       Timestamp       `json:"date"`
}

// Loss is a recorded stock write-off.
type Loss struct {
	ID        int         `json:"id"`
	ProductID int         `json:"produit_id"`
	Product   *ProductRef `json:"produit,omitempty"`
	Quantity  int         `json:"quantite"`
	Date      Timestamp   `json:"date"`
}

// MovementRequest is the body of POST /api/ventes and POST /api/pertes.
type MovementRequest struct {
	ProductID int `json:"produit_id"`
	Quantity  int `json:"quantite"`
}

// ProductName returns the embedded product name, or an empty string if the backend omitted it.
func (s Sale) ProductName() string {
	if s.Product == nil {
		return ""
	}
	return s.Product.Name
}

func (l Loss) ProductName() string {
	if l.Product == nil {
		return ""
	}
	return l.Product.Name
}
