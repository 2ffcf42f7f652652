package ui

import (
	"errors"
	"strings"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys double as the English text.
const (
	MsgTitle             = "Store management"
	MsgLogin             = "Log in"
	MsgLogout            = "Log out"
	MsgUsername          = "Username"
	MsgPassword          = "Password"
	MsgBadCredentials    = "Incorrect username or password."
	MsgServerUnreachable = "Could not reach the server."
	MsgSessionExpired    = "Your session has expired. Please log in again."
	MsgLoadFailed        = "Loading failed: %s"
	MsgLoading           = "Loading..."
	MsgTooManyAttempts   = "Too many login attempts. Please wait a moment."

	MsgTabDashboard = "Dashboard"
	MsgTabStock     = "Stock"
	MsgTabSales     = "Sales"
	MsgTabLosses    = "Losses"
	MsgTabAnalysis  = "Analysis"

	MsgRevenueToday     = "Revenue today"
	MsgSalesToday       = "Sales today"
	MsgStockQuantity    = "Items in stock"
	MsgStockValue       = "Stock value"
	MsgTopSales         = "Top sales today"
	MsgLowStock         = "Low stock"
	MsgStockByProduct   = "Stock by product"
	MsgNothingToShow    = "Nothing to show."
	MsgName             = "Name"
	MsgPurchasePrice    = "Purchase price"
	MsgSalePrice        = "Sale price"
	MsgQuantity         = "Quantity"
	MsgQuantitySold     = "Quantity sold"
	MsgProduct          = "Product"
	MsgTotalPrice       = "Total price"
	MsgDate             = "Date"
	MsgActions          = "Actions"
	MsgAddProduct       = "Add product"
	MsgEditProduct      = "Edit product"
	MsgEdit             = "Edit"
	MsgDelete           = "Delete"
	MsgSave             = "Save"
	MsgCancel           = "Cancel"
	MsgConfirmDelete    = "Delete product %s? This cannot be undone."
	MsgProductNotFound  = "Product not found."
	MsgRecordSale       = "Record a sale"
	MsgRecordLoss       = "Record a loss"
	MsgSalesHistory     = "Sales history"
	MsgLossesHistory    = "Losses history"
	MsgSubmit           = "Submit"
	MsgNoProductInStock = "No product in stock."
	MsgChooseProduct    = "Choose a product"
	MsgExportExcel      = "Export Excel"
	MsgExportPDF        = "Export PDF"
	MsgStartDate        = "Start date"
	MsgEndDate          = "End date"
	MsgAnalyze          = "Analyze"
	MsgRevenue          = "Revenue"
	MsgCOGS             = "Cost of goods sold"
	MsgGrossProfit      = "Gross profit"
	MsgDailyRevenue     = "Revenue per day"

	MsgNameRequired     = "Name is required."
	MsgPriceInvalid     = "Enter a valid amount."
	MsgPriceNegative    = "Amount cannot be negative."
	MsgPriceDecimals    = "At most two decimals."
	MsgQuantityInvalid  = "Enter a whole number."
	MsgQuantityNegative = "Quantity cannot be negative."
	MsgQuantityMin      = "Quantity must be at least 1."
	MsgProductRequired  = "Choose a product."
	MsgDateInvalid      = "Enter a valid date (YYYY-MM-DD)."
	MsgDateRangeInvalid = "The start date must not be after the end date."
)

var french = map[string]string{
	MsgTitle:             "Gestion de Magasin",
	MsgLogin:             "Se connecter",
	MsgLogout:            "Déconnexion",
	MsgUsername:          "Nom d'utilisateur",
	MsgPassword:          "Mot de passe",
	MsgBadCredentials:    "Nom d'utilisateur ou mot de passe incorrect.",
	MsgServerUnreachable: "Erreur de connexion au serveur.",
	MsgSessionExpired:    "Votre session a expiré. Veuillez vous reconnecter.",
	MsgLoadFailed:        "Erreur de chargement : %s",
	MsgLoading:           "Chargement...",
	MsgTooManyAttempts:   "Trop de tentatives de connexion. Veuillez patienter.",

	MsgTabDashboard: "Tableau de bord",
	MsgTabStock:     "Stock",
	MsgTabSales:     "Ventes",
	MsgTabLosses:    "Pertes",
	MsgTabAnalysis:  "Analyse",

	MsgRevenueToday:     "Chiffre d'affaires du jour",
	MsgSalesToday:       "Ventes du jour",
	MsgStockQuantity:    "Articles en stock",
	MsgStockValue:       "Valeur du stock",
	MsgTopSales:         "Meilleures ventes du jour",
	MsgLowStock:         "Stock faible",
	MsgStockByProduct:   "Stock par produit",
	MsgNothingToShow:    "Rien à afficher.",
	MsgName:             "Nom",
	MsgPurchasePrice:    "Prix d'achat",
	MsgSalePrice:        "Prix de vente",
	MsgQuantity:         "Quantité",
	MsgQuantitySold:     "Quantité vendue",
	MsgProduct:          "Produit",
	MsgTotalPrice:       "Prix total",
	MsgDate:             "Date",
	MsgActions:          "Actions",
	MsgAddProduct:       "Ajouter un produit",
	MsgEditProduct:      "Modifier le produit",
	MsgEdit:             "Modifier",
	MsgDelete:           "Supprimer",
	MsgSave:             "Enregistrer",
	MsgCancel:           "Annuler",
	MsgConfirmDelete:    "Supprimer le produit %s ? Cette action est irréversible.",
	MsgProductNotFound:  "Produit introuvable.",
	MsgRecordSale:       "Enregistrer une vente",
	MsgRecordLoss:       "Enregistrer une perte",
	MsgSalesHistory:     "Historique des ventes",
	MsgLossesHistory:    "Historique des pertes",
	MsgSubmit:           "Valider",
	MsgNoProductInStock: "Aucun produit en stock.",
	MsgChooseProduct:    "Choisir un produit",
	MsgExportExcel:      "Exporter Excel",
	MsgExportPDF:        "Exporter PDF",
	MsgStartDate:        "Date de début",
	MsgEndDate:          "Date de fin",
	MsgAnalyze:          "Analyser",
	MsgRevenue:          "Chiffre d'affaires",
	MsgCOGS:             "Coût des marchandises vendues",
	MsgGrossProfit:      "Bénéfice brut",
	MsgDailyRevenue:     "Chiffre d'affaires par jour",

	MsgNameRequired:     "Le nom est obligatoire.",
	MsgPriceInvalid:     "Saisissez un montant valide.",
	MsgPriceNegative:    "Le montant ne peut pas être négatif.",
	MsgPriceDecimals:    "Deux décimales au maximum.",
	MsgQuantityInvalid:  "Saisissez un nombre entier.",
	MsgQuantityNegative: "La quantité ne peut pas être négative.",
	MsgQuantityMin:      "La quantité doit être au moins 1.",
	MsgProductRequired:  "Choisissez un produit.",
	MsgDateInvalid:      "Saisissez une date valide (AAAA-MM-JJ).",
	MsgDateRangeInvalid: "La date de début ne doit pas être postérieure à la date de fin.",
}

func init() {
	for key, text := range french {
		if err := message.SetString(language.French, key, text); err != nil {
			panic(err)
		}
	}
}

var supported = language.NewMatcher([]language.Tag{language.French, language.English})

// Messages localizes UI strings and numbers for one language.
type Messages struct {
	tag      language.Tag
	printer  *message.Printer
	currency string

	groupSep   string
	decimalSep string
}

// NewMessages picks the closest supported language to lang (French when unknown).
func NewMessages(lang, currency string) *Messages {
	tag := language.French
	if parsed, err := language.Parse(lang); err == nil {
		matched, _, confidence := supported.Match(parsed)
		if confidence != language.No {
			tag = matched
		}
	}
	base, _ := tag.Base()
	tag = language.Make(base.String())

	p := message.NewPrinter(tag)
	m := &Messages{tag: tag, printer: p, currency: currency, decimalSep: "."}
	// Separators come from the printer so money matches how Number groups digits.
	if g, ok := between(p.Sprintf("%d", 1000), "1", "000"); ok {
		m.groupSep = g
	}
	if d, ok := between(p.Sprintf("%.1f", 1.5), "1", "5"); ok && d != "" {
		m.decimalSep = d
	}
	return m
}

func between(s, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) || len(s) < len(prefix)+len(suffix) {
		return "", false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}

// Lang is the BCP 47 code of the selected language.
func (m *Messages) Lang() string {
	return m.tag.String()
}

func (m *Messages) T(key string, args ...any) string {
	return m.printer.Sprintf(key, args...)
}

// Money formats an amount with two decimals in the user's locale.
func (m *Messages) Money(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	s := sign + groupDigits(whole, m.groupSep) + m.decimalSep + frac
	if m.currency == "" {
		return s
	}
	return s + " " + m.currency
}

func groupDigits(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func (m *Messages) Number(n int) string {
	return m.printer.Sprintf("%d", n)
}

// Error turns an error into the text shown to the user.
// Backend validation messages are returned verbatim.
func (m *Messages) Error(err error) string {
	var ve *backend.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, backend.ErrInvalidCredentials):
		return m.T(MsgBadCredentials)
	case errors.Is(err, backend.ErrSessionExpired):
		return m.T(MsgSessionExpired)
	case backend.IsNetwork(err):
		return m.T(MsgServerUnreachable)
	}
	return m.T(MsgLoadFailed, err.Error())
}
