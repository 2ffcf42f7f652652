package models

import "github.com/shopspring/decimal"

// NamedQuantity is a (product name, quantity) pair as listed by the dashboard.
type NamedQuantity struct {
	Name     string `json:"nom"`
	Quantity int    `json:"quantite"`
}

// TopSale is one entry of today's best sellers.
type TopSale struct {
	Name         string `json:"nom"`
	QuantitySold int    `json:"quantite_vendue"`
}

// DashboardSnapshot is the read-only KPI view returned by GET /api/dashboard.
type DashboardSnapshot struct {
	RevenueToday       decimal.Decimal `json:"revenue_today"`
	SalesCountToday    int             `json:"sales_count_today"`
	TotalStockQuantity int             `json:"total_stock_quantity"`
	TotalStockValue    decimal.Decimal `json:"total_stock_value"`
	TopSalesToday      []TopSale       `json:"top_sales_today"`
	LowStock           []NamedQuantity `json:"low_stock"`
	StockByProduct     []NamedQuantity `json:"stock_by_product"`
}

// DailyRevenue is one point of the analysis series.
type DailyRevenue struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

// AnalysisReport is returned by GET /api/analyse for a date range.
type AnalysisReport struct {
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Daily       []DailyRevenue  `json:"daily"`
}
