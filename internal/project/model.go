// Package project defines the aggregate root of the quoting tool: a project
// with its order lines, pricing parameters, payment installments and cash
// movements, plus the persistence shape (a collection of projects and the id
// of the one currently open).
package project

import (
	"time"

	"github.com/scontainr/quotecenter/internal/catalog"
)

// Status tracks a won project through delivery.
type Status string

const (
	StatusSupplierAdvance    Status = "supplier_advance"
	StatusSupplierSettlement Status = "supplier_settlement"
	StatusInTransit          Status = "in_transit"
	StatusImporting          Status = "importing"
	StatusInstalling         Status = "installing"
	StatusDelivered          Status = "delivered"
)

// StatusLabel returns the display label for a project status.
func StatusLabel(s Status) string {
	switch s {
	case StatusSupplierAdvance:
		return "Anticipo proveedor"
	case StatusSupplierSettlement:
		return "Liquidación proveedor"
	case StatusInTransit:
		return "En tránsito"
	case StatusImporting:
		return "En importación"
	case StatusInstalling:
		return "En instalación"
	case StatusDelivered:
		return "Entregado"
	}
	return string(s)
}

// MovementKind distinguishes cash out (charge) from cash in (credit).
type MovementKind string

const (
	MovementCharge MovementKind = "charge"
	MovementCredit MovementKind = "credit"
)

// MovementStatus is the settlement state of a movement.
type MovementStatus string

const (
	MovementPending MovementStatus = "pending"
	MovementPaid    MovementStatus = "paid"
)

// Currency is one of the two tracked currencies.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyMXN Currency = "MXN"
)

// Category classifies a cash movement.
type Category string

const (
	CategoryProducts          Category = "products"
	CategorySeaFreight        Category = "sea_freight"
	CategoryLandFreight       Category = "land_freight"
	CategoryInsurance         Category = "insurance"
	CategoryImportDuty        Category = "import_duty"
	CategoryCustomsProcessing Category = "customs_processing"
	CategoryCustomsBroker     Category = "customs_broker"
	CategoryPortHandling      Category = "port_handling"
	CategoryAdvisory          Category = "advisory"
	CategorySalesCommission   Category = "sales_commission"
	CategoryClientPayment     Category = "client_payment"
	CategoryTax               Category = "tax"
	CategoryImportTax         Category = "import_tax"
	CategoryProfitDraw        Category = "profit_draw"
	CategoryImportation       Category = "importation"
	CategoryInstallation      Category = "installation"
	CategorySupplier          Category = "supplier"
	CategoryLogistics         Category = "logistics"
	CategoryTaxes             Category = "taxes"
	CategoryOther             Category = "other"
)

// IsTaxCategory reports whether the category carries a tax amount directly
// (the movement amount itself is the tax, not a taxed base).
func IsTaxCategory(c Category) bool {
	return c == CategoryTax || c == CategoryImportTax
}

// OrderLine is one group of identical modules in the bill of materials.
type OrderLine struct {
	ID               string         `json:"id"`
	Size             catalog.Size   `json:"size"`
	Model            string         `json:"model"`
	Finish           catalog.Finish `json:"finish"`
	Quantity         int            `json:"quantity"`
	UnitCostOverride *float64       `json:"unit_cost_override,omitempty"`
	CondensationRoof bool           `json:"condensation_roof"`
}

// Key returns the structured line key for override lookups.
func (l OrderLine) Key() LineKey {
	return LineKey{Size: l.Size, Model: l.Model, Finish: l.Finish}
}

// Installment is one scheduled client payment.
type Installment struct {
	Pct     float64 `json:"pct"`
	Date    string  `json:"date"`
	Concept string  `json:"concept"`
}

// Movement is one dated cash movement of a won project.
type Movement struct {
	ID            string         `json:"id"`
	Date          string         `json:"date"` // YYYY-MM-DD, may be empty
	Kind          MovementKind   `json:"kind"`
	Status        MovementStatus `json:"status"`
	IncludesTax   bool           `json:"includes_tax"`
	ManualTax     *float64       `json:"manual_tax,omitempty"`
	Category      Category       `json:"category"`
	Description   string         `json:"description"`
	Amount        float64        `json:"amount"`
	Currency      Currency       `json:"currency"`
	PaymentFXRate float64        `json:"payment_fx_rate"`
	Reference     string         `json:"reference"`
}

// CostControls are the editable per-category cost targets of a won project.
type CostControls struct {
	Products          float64 `json:"products"`
	SeaFreight        float64 `json:"sea_freight"`
	LandFreight       float64 `json:"land_freight"`
	Insurance         float64 `json:"insurance"`
	ImportDuty        float64 `json:"import_duty"`
	CustomsProcessing float64 `json:"customs_processing"`
	CustomsBroker     float64 `json:"customs_broker"`
	PortHandling      float64 `json:"port_handling"`
	Advisory          float64 `json:"advisory"`
	Installation      float64 `json:"installation"`
	SalesCommission   float64 `json:"sales_commission"`
	ImportTax         float64 `json:"import_tax"`
}

// Meta is the descriptive header of a project.
type Meta struct {
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	Location     string `json:"location"`
	LegalName    string `json:"legal_name,omitempty"`
	CreatedAt    string `json:"created_at"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// State is the working state of a project: parameters, lines, installments,
// overrides and movements.
type State struct {
	Won bool `json:"won"`

	ExchangeRate        float64 `json:"exchange_rate"`
	ImportFXRate        float64 `json:"import_fx_rate"`
	CollectFXRate       float64 `json:"collect_fx_rate"`
	ModulesPerContainer int     `json:"modules_per_container"`
	OptimizeMix         bool    `json:"optimize_mix"`

	SeaFreightUSD     float64 `json:"sea_freight_usd"`
	FullTruckMXN      float64 `json:"full_truck_mxn"`
	SingleTruckMXN    float64 `json:"single_truck_mxn"`
	SingleTruckEdited bool    `json:"single_truck_edited"`
	BrokerFeeUSD      float64 `json:"broker_fee_usd"`
	PortHandlingUSD   float64 `json:"port_handling_usd"`

	SupplierSharePct     float64 `json:"supplier_share_pct"`
	CompanySharePct      float64 `json:"company_share_pct"`
	InvoiceValuePct      float64 `json:"invoice_value_pct"`
	InsurancePct         float64 `json:"insurance_pct"`
	ImportDutyPct        float64 `json:"import_duty_pct"`
	CustomsProcessingPct float64 `json:"customs_processing_pct"`
	AdvisorPct           float64 `json:"advisor_pct"`
	SalesCommissionPct   float64 `json:"sales_commission_pct"`

	FreightConfirmed    bool    `json:"freight_confirmed"`
	ConfirmedContainers int     `json:"confirmed_containers"`
	UseContainers20     bool    `json:"use_containers_20"`
	Containers20        int     `json:"containers_20"`
	SeaFreight20USD     float64 `json:"sea_freight_20_usd"`
	LandFreight20MXN    float64 `json:"land_freight_20_mxn"`

	MarginPct   float64 `json:"margin_pct"`
	DiscountPct float64 `json:"discount_pct"`

	// Override maps are keyed by LineKey.String() ("20-S1-Plegable").
	PriceOverrides map[string]float64 `json:"price_overrides"`
	CostOverrides  map[string]float64 `json:"cost_overrides"`

	Lines []OrderLine `json:"lines"`

	InstallmentCount int           `json:"installment_count"`
	Installments     []Installment `json:"installments"`
	InstallmentNotes string        `json:"installment_notes"`

	QuoteTerms       string `json:"quote_terms"`
	TechnicalSpec    string `json:"technical_spec"`
	FeaturesStandard string `json:"features_standard"`
	FeaturesOffice   string `json:"features_office"`

	Status       Status       `json:"status"`
	Movements    []Movement   `json:"movements"`
	CostControls CostControls `json:"cost_controls"`
}

// Project is the aggregate root.
type Project struct {
	ID    string `json:"id"`
	Meta  Meta   `json:"meta"`
	State State  `json:"state"`
}

// Store is the full persisted application state.
type Store struct {
	Projects  []Project `json:"projects"`
	CurrentID string    `json:"current_id,omitempty"`
}

// TotalUnits sums the quantities across order lines.
func (s *State) TotalUnits() int {
	total := 0
	for _, l := range s.Lines {
		if l.Quantity > 0 {
			total += l.Quantity
		}
	}
	return total
}

// DefaultFXRate is the rate used when a movement has none of its own.
func (s *State) DefaultFXRate() float64 {
	if s.CollectFXRate > 0 {
		return s.CollectFXRate
	}
	return s.ExchangeRate
}

// Now is stubbed in tests that need deterministic timestamps.
var Now = time.Now
