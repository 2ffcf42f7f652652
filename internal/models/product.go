package models

import "github.com/shopspring/decimal"

func init() {
	// The backend models prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product entity as served by the backend catalog.
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"nom"`
	PurchasePrice decimal.Decimal `json:"prix_achat"`
	SalePrice     decimal.Decimal `json:"prix_vente"`
	Quantity      int             `json:"quantite"`
}

// InStock reports whether the backend says there is anything left to sell or write off.
func (p Product) InStock() bool {
	return p.Quantity > 0
}

// ProductRequest is the payload for POST (ID omitted) and PUT (ID set) on /api/produits.
type ProductRequest struct {
	ID            int             `json:"id,omitempty"`
	Name          string          `json:"nom"`
	PurchasePrice decimal.Decimal `json:"prix_achat"`
	SalePrice     decimal.Decimal `json:"prix_vente"`
	Quantity      int             `json:"quantite"`
}

// ProductRef is the embedded product summary carried by sales and losses.
type ProductRef struct {
	ID   int    `json:"id"`
	Name string `json:"nom"`
}
