// Package logistics computes the shared import costs of an order: ocean and
// land freight, insurance, duties, customs fees and advisory honoraria. The
// output feeds the cost allocation of the quote engine as one USD total.
package logistics

import (
	"math"

	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/money"
	"github.com/scontainr/quotecenter/internal/project"
)

// Breakdown is the itemized shared-cost picture for one project state.
type Breakdown struct {
	ContainersAuto int `json:"containers_auto"`
	Containers40   int `json:"containers_40"`
	Containers20   int `json:"containers_20"`
	Containers     int `json:"containers"`
	FullTrucks     int `json:"full_trucks"`
	SingleTrucks   int `json:"single_trucks"`

	ProductsUSD     float64 `json:"products_usd"`
	InvoiceValueUSD float64 `json:"invoice_value_usd"`

	SeaFreightUSD        float64 `json:"sea_freight_usd"`
	LandFreightUSD       float64 `json:"land_freight_usd"`
	InsuranceUSD         float64 `json:"insurance_usd"`
	ImportDutyUSD        float64 `json:"import_duty_usd"`
	CustomsProcessingUSD float64 `json:"customs_processing_usd"`
	BrokerUSD            float64 `json:"broker_usd"`
	HandlingUSD          float64 `json:"handling_usd"`
	AdvisoryUSD          float64 `json:"advisory_usd"`

	// SharedTotalUSD is the sum of the items above excluding products; it is
	// the scalar the quote engine prorates across lines.
	SharedTotalUSD float64 `json:"shared_total_usd"`
	// LandedBaseUSD is products plus shared costs.
	LandedBaseUSD float64 `json:"landed_base_usd"`

	// Creditable import VAT, tracked in MXN at the import exchange rate.
	ImportTaxBaseUSD float64 `json:"import_tax_base_usd"`
	ImportTaxMXN     float64 `json:"import_tax_mxn"`
	AdvisorTaxMXN    float64 `json:"advisor_tax_mxn"`
	CreditableTaxMXN float64 `json:"creditable_tax_mxn"`
}

// AutoContainers computes the 40ft-equivalent container count from the
// per-model packing capacities, falling back to modulesPerContainer for
// combinations the catalog does not know. With mix optimization off, a flat
// modulesPerContainer capacity is used for everything.
func AutoContainers(lines []project.OrderLine, cat *catalog.Catalog, modulesPerContainer int, optimizeMix bool) int {
	fallback := modulesPerContainer
	if fallback <= 0 {
		fallback = project.DefaultModulesPerContainer
	}

	if !optimizeMix {
		total := 0
		for _, l := range lines {
			if l.Quantity > 0 {
				total += l.Quantity
			}
		}
		if total == 0 {
			return 0
		}
		return int(math.Ceil(float64(total) / float64(fallback)))
	}

	slots := 0.0
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		cap := cat.Capacity(l.Size, l.Finish, l.Model)
		if cap <= 0 {
			cap = fallback
		}
		slots += float64(l.Quantity) / float64(cap)
	}
	if slots <= 0 {
		return 0
	}
	return int(math.Ceil(slots))
}

// Compute derives the full shared-cost breakdown from a project state.
//
// Freight confirmation replaces the automatic container count with the
// user-confirmed one. Two 40ft containers travel per full truck; an odd
// count adds one single truck. Insurance applies to invoice value plus sea
// freight; duty and customs processing to that base plus insurance. The
// advisory fee applies to the supplier share of the product value.
func Compute(s *project.State, cat *catalog.Catalog) Breakdown {
	var b Breakdown

	b.ContainersAuto = AutoContainers(s.Lines, cat, s.ModulesPerContainer, s.OptimizeMix)
	if s.FreightConfirmed {
		b.Containers40 = maxInt(0, s.ConfirmedContainers)
	} else {
		b.Containers40 = b.ContainersAuto
	}
	if s.UseContainers20 {
		b.Containers20 = maxInt(0, s.Containers20)
	}
	b.Containers = b.Containers40 + b.Containers20
	b.FullTrucks = b.Containers40 / 2
	b.SingleTrucks = b.Containers40 % 2

	for _, l := range s.Lines {
		if l.Quantity > 0 {
			b.ProductsUSD += l.BaseUnitCost(cat) * float64(l.Quantity)
		}
	}
	b.InvoiceValueUSD = b.ProductsUSD * money.Pct(s.InvoiceValuePct)

	b.SeaFreightUSD = float64(b.Containers40)*s.SeaFreightUSD + float64(b.Containers20)*s.SeaFreight20USD

	fx := s.ExchangeRate
	if fx <= 0 {
		fx = 1
	}
	b.LandFreightUSD = (float64(b.FullTrucks)*s.FullTruckMXN +
		float64(b.SingleTrucks)*s.SingleTruckMXN +
		float64(b.Containers20)*s.LandFreight20MXN) / fx

	b.InsuranceUSD = money.Round2((b.InvoiceValueUSD + b.SeaFreightUSD) * money.Pct(s.InsurancePct))
	dutyBase := b.InvoiceValueUSD + b.SeaFreightUSD + b.InsuranceUSD
	b.ImportDutyUSD = money.Round2(dutyBase * money.Pct(s.ImportDutyPct))
	b.CustomsProcessingUSD = money.Round2(dutyBase * money.Pct(s.CustomsProcessingPct))
	b.BrokerUSD = s.BrokerFeeUSD
	b.HandlingUSD = s.PortHandlingUSD

	supplierPayUSD := b.ProductsUSD * money.Pct(s.SupplierSharePct)
	b.AdvisoryUSD = money.Round2(supplierPayUSD * money.Pct(s.AdvisorPct))

	b.SharedTotalUSD = b.SeaFreightUSD + b.LandFreightUSD + b.InsuranceUSD +
		b.ImportDutyUSD + b.CustomsProcessingUSD + b.BrokerUSD + b.HandlingUSD + b.AdvisoryUSD
	b.LandedBaseUSD = money.Round2(b.ProductsUSD + b.SharedTotalUSD)

	importFX := s.ImportFXRate
	if importFX <= 0 {
		importFX = s.ExchangeRate
	}
	b.ImportTaxBaseUSD = b.InvoiceValueUSD + b.SeaFreightUSD + b.InsuranceUSD
	b.ImportTaxMXN = money.Round2(b.ImportTaxBaseUSD * importFX * money.IVARate)
	b.AdvisorTaxMXN = money.Round2(b.AdvisoryUSD * importFX * money.IVARate)
	b.CreditableTaxMXN = money.Round2(b.ImportTaxMXN + b.AdvisorTaxMXN)

	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
