package backendtest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/store-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

const dayLayout = "2006-01-02"

// Seed adds a product directly, bypassing the API, and returns it with its id.
func (s *Server) Seed(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextProductID
	s.nextProductID++
	s.products = append(s.products, p)
	return p
}

// Product returns the current state of a product.
func (s *Server) Product(id int) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return models.Product{}, false
	}
	return s.products[i], true
}

func (s *Server) productIndex(id int) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func validateProduct(p models.ProductRequest) []fieldIssue {
	var issues []fieldIssue
	if strings.TrimSpace(p.Name) == "" {
		issues = append(issues, fieldIssue{Loc: []string{"body", "nom"}, Msg: "Le nom est obligatoire", Type: "value_error"})
	}
	if p.PurchasePrice.IsNegative() {
		issues = append(issues, fieldIssue{Loc: []string{"body", "prix_achat"}, Msg: "Le prix d'achat doit être positif", Type: "value_error"})
	}
	if p.SalePrice.IsNegative() {
		issues = append(issues, fieldIssue{Loc: []string{"body", "prix_vente"}, Msg: "Le prix de vente doit être positif", Type: "value_error"})
	}
	if p.Quantity < 0 {
		issues = append(issues, fieldIssue{Loc: []string{"body", "quantite"}, Msg: "La quantité doit être positive", Type: "value_error"})
	}
	return issues
}

func (s *Server) nameTaken(name string, exceptID int) bool {
	for _, p := range s.products {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	products := append([]models.Product{}, s.products...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, products)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if issues := validateProduct(req); len(issues) > 0 {
		writeValidation(w, issues)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(req.Name, 0) {
		writeDetail(w, http.StatusBadRequest, "Un produit avec ce nom existe déjà")
		return
	}
	p := models.Product{
		ID:            s.nextProductID,
		Name:          strings.TrimSpace(req.Name),
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Quantity:      req.Quantity,
	}
	s.nextProductID++
	s.products = append(s.products, p)

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if issues := validateProduct(req); len(issues) > 0 {
		writeValidation(w, issues)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(req.ID)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Produit non trouvé")
		return
	}
	if s.nameTaken(req.Name, req.ID) {
		writeDetail(w, http.StatusBadRequest, "Un produit avec ce nom existe déjà")
		return
	}
	p := &s.products[i]
	p.Name = strings.TrimSpace(req.Name)
	p.PurchasePrice = req.PurchasePrice
	p.SalePrice = req.SalePrice
	p.Quantity = req.Quantity

	writeJSON(w, http.StatusOK, *p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Identifiant invalide")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Produit non trouvé")
		return
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

// takeStock validates a movement and decrements the product. Called with s.mu held.
func (s *Server) takeStock(w http.ResponseWriter, m models.MovementRequest) (*models.Product, bool) {
	if m.Quantity <= 0 {
		writeValidation(w, []fieldIssue{{Loc: []string{"body", "quantite"}, Msg: "La quantité doit être supérieure à 0", Type: "value_error"}})
		return nil, false
	}
	i := s.productIndex(m.ProductID)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Produit non trouvé")
		return nil, false
	}
	p := &s.products[i]
	if p.Quantity < m.Quantity {
		writeDetail(w, http.StatusBadRequest, "Stock insuffisant")
		return nil, false
	}
	p.Quantity -= m.Quantity
	return p, true
}

func (s *Server) listSales(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sales := append([]models.Sale{}, s.sales...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) createSale(w http.ResponseWriter, r *http.Request) {
	var m models.MovementRequest
	if err := readJSON(w, r, &m); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.takeStock(w, m)
	if !ok {
		return
	}
	sale := models.Sale{
		ID:         s.nextSaleID,
		ProductID:  p.ID,
		Product:    &models.ProductRef{ID: p.ID, Name: p.Name},
		Quantity:   m.Quantity,
		TotalPrice: p.SalePrice.Mul(decimal.NewFromInt(int64(m.Quantity))),
		Date:       models.Timestamp{Time: s.now().UTC()},
	}
	s.nextSaleID++
	s.sales = append(s.sales, sale)

	writeJSON(w, http.StatusOK, sale)
}

func (s *Server) listLosses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	losses := append([]models.Loss{}, s.losses...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, losses)
}

func (s *Server) createLoss(w http.ResponseWriter, r *http.Request) {
	var m models.MovementRequest
	if err := readJSON(w, r, &m); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.takeStock(w, m)
	if !ok {
		return
	}
	loss := models.Loss{
		ID:        s.nextLossID,
		ProductID: p.ID,
		Product:   &models.ProductRef{ID: p.ID, Name: p.Name},
		Quantity:  m.Quantity,
		Date:      models.Timestamp{Time: s.now().UTC()},
	}
	s.nextLossID++
	s.losses = append(s.losses, loss)

	writeJSON(w, http.StatusOK, loss)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().UTC().Format(dayLayout)
	snap := models.DashboardSnapshot{
		TopSalesToday:  []models.TopSale{},
		LowStock:       []models.NamedQuantity{},
		StockByProduct: []models.NamedQuantity{},
	}

	sold := map[string]int{}
	for _, sale := range s.sales {
		if sale.Date.UTC().Format(dayLayout) != today {
			continue
		}
		snap.RevenueToday = snap.RevenueToday.Add(sale.TotalPrice)
		snap.SalesCountToday++
		sold[sale.ProductName()] += sale.Quantity
	}
	for name, qty := range sold {
		snap.TopSalesToday = append(snap.TopSalesToday, models.TopSale{Name: name, QuantitySold: qty})
	}
	sort.Slice(snap.TopSalesToday, func(i, j int) bool {
		a, b := snap.TopSalesToday[i], snap.TopSalesToday[j]
		if a.QuantitySold != b.QuantitySold {
			return a.QuantitySold > b.QuantitySold
		}
		return a.Name < b.Name
	})
	if len(snap.TopSalesToday) > topSalesLimit {
		snap.TopSalesToday = snap.TopSalesToday[:topSalesLimit]
	}

	for _, p := range s.products {
		snap.TotalStockQuantity += p.Quantity
		snap.TotalStockValue = snap.TotalStockValue.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
		snap.StockByProduct = append(snap.StockByProduct, models.NamedQuantity{Name: p.Name, Quantity: p.Quantity})
		if p.Quantity < LowStockThreshold {
			snap.LowStock = append(snap.LowStock, models.NamedQuantity{Name: p.Name, Quantity: p.Quantity})
		}
	}

	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) analysis(w http.ResponseWriter, r *http.Request) {
	start, errStart := time.Parse(dayLayout, r.URL.Query().Get("start_date"))
	end, errEnd := time.Parse(dayLayout, r.URL.Query().Get("end_date"))
	if errStart != nil || errEnd != nil {
		writeValidation(w, []fieldIssue{{Loc: []string{"query", "start_date"}, Msg: "Date invalide", Type: "value_error"}})
		return
	}
	if start.After(end) {
		writeDetail(w, http.StatusBadRequest, "La date de début doit précéder la date de fin")
		return
	}
	until := end.AddDate(0, 0, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	report := models.AnalysisReport{Daily: []models.DailyRevenue{}}
	byDay := map[string]decimal.Decimal{}
	for _, sale := range s.sales {
		at := sale.Date.UTC()
		if at.Before(start) || !at.Before(until) {
			continue
		}
		report.Revenue = report.Revenue.Add(sale.TotalPrice)
		if i := s.productIndex(sale.ProductID); i >= 0 {
			cost := s.products[i].PurchasePrice.Mul(decimal.NewFromInt(int64(sale.Quantity)))
			report.COGS = report.COGS.Add(cost)
		}
		day := at.Format(dayLayout)
		byDay[day] = byDay[day].Add(sale.TotalPrice)
	}
	report.GrossProfit = report.Revenue.Sub(report.COGS)

	for day, revenue := range byDay {
		report.Daily = append(report.Daily, models.DailyRevenue{Day: day, Revenue: revenue})
	}
	sort.Slice(report.Daily, func(i, j int) bool { return report.Daily[i].Day < report.Daily[j].Day })

	writeJSON(w, http.StatusOK, report)
}

var exportContentTypes = map[string]string{
	"excel": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pdf":   "application/pdf",
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("data_type")
	format := r.URL.Query().Get("file_format")

	contentType, ok := exportContentTypes[format]
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Format de fichier non supporté")
		return
	}
	switch dataType {
	case "stock", "sales", "losses":
	default:
		writeDetail(w, http.StatusBadRequest, "Type de données non supporté")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ExportPayload(dataType, format))
}

// ExportPayload is the body served for an export, so tests can compare downloads.
func ExportPayload(dataType, format string) []byte {
	if format == "pdf" {
		return []byte("%PDF-1.4\n% " + dataType + "\n%%EOF\n")
	}
	return []byte("PK\x03\x04" + dataType)
}
