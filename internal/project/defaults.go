package project

import (
	"math"

	"github.com/google/uuid"
	"github.com/scontainr/quotecenter/internal/schedule"
)

// Default cost parameters. These seed every new project and backfill fields
// missing from imported data.
const (
	DefaultSeaFreightUSD        = 2500.0
	DefaultFullTruckMXN         = 65000.0
	DefaultBrokerFeeUSD         = 750.0
	DefaultPortHandlingUSD      = 1200.0
	DefaultInsurancePct         = 0.5
	DefaultImportDutyPct        = 15.0
	DefaultCustomsProcessingPct = 0.8
	DefaultAdvisorPct           = 7.0
	DefaultSupplierSharePct     = 40.0
	DefaultCompanySharePct      = 60.0
	DefaultModulesPerContainer  = 14
	DefaultInstallmentCount     = 3
)

// DefaultQuoteTerms is the boilerplate included in exported quotes.
const DefaultQuoteTerms = "Moneda y precios: En USD + IVA, vigencia de 10 días.\n" +
	"Términos de pago: 60 % anticipo | 30 % 1 mes previo a instalación | 10 % inicio instalación.\n" +
	"Entrega: FOB obra. Tiempo estimado de fabricación y colocación 16 a 20 semanas.\n" +
	"Garantía: 12 meses contra defectos de fabricación bajo uso normal.\n" +
	"Propiedad del material: S-Containr mantiene propiedad hasta liquidación total.\n" +
	"Incrementos de costo: Sujeto a variaciones internacionales de materia prima.\n" +
	"Confidencialidad: Toda la información y documentación es propiedad intelectual de S-Containr / Fila Systems SA de CV.\n" +
	"Garantía de instalación: Incluye descarga, ensamble y colocación (en superficie nivelada).\n" +
	"No incluye: Preparación de área, bardeado, instalaciones hidrosanitarias, instalaciones eléctricas, cimentación ni servicios adicionales."

// DefaultTechnicalSpec describes the standard module construction.
const DefaultTechnicalSpec = "Módulos desmontables fabricados con acero SPA-C galvanizado, 100 % impermeables y apilables hasta 3 niveles con previa especificación.\n" +
	"El marco principal de acero galvanizado tiene un grosor no menor a 2.8 mm (Calibre 12).\n" +
	"Los tubos para montacargas no son menores a 3.0 mm (Calibre 11).\n" +
	"Las vigas no son menores a 1.5 mm (Calibre 16). Los marcos de pared no son menores a 1.8 mm (Calibre 14).\n" +
	"Los refuerzos secundarios no son menores a 1.2 mm (Calibre 18).\n" +
	"Las láminas galvanizadas de pared no son menores a 1.0 mm (Calibre 20). El techo es de lámina corrugada estilo ISO con drenaje de agua, grosor de 1.2 mm (Calibre 18).\n" +
	"Vida útil de 20-25 años por especificaciones para uso exterior."

// DefaultFeaturesStandard is the fill-in sheet for storage modules (S1..S8).
const DefaultFeaturesStandard = "Acceso: Puerta __________  Cortina __________\n" +
	"Piso: Madera marina __________  Lámina antiderrapante __________, ventilación integrada y sellado hermético.\n" +
	"Color Módulo __________  Color Puerta ó Cortina __________"

// DefaultFeaturesOffice is the fill-in sheet for office modules (S9+).
const DefaultFeaturesOffice = "Color Módulo __________"

// DefaultSingleTruckMXN derives the single-truck rate from the full-truck
// rate. It applies until the user edits the single rate directly.
func DefaultSingleTruckMXN(fullTruckMXN float64) float64 {
	return math.Round(fullTruckMXN / 2)
}

// BuildInstallments creates the preset plan for n installments with empty
// dates and concepts.
func BuildInstallments(n int) []Installment {
	split := schedule.DefaultSplit(n)
	out := make([]Installment, len(split))
	for i, pct := range split {
		out[i] = Installment{Pct: pct}
	}
	return out
}

// DefaultState returns the state every new project starts from. Exchange
// rates start at 0 and stay user-entered; the engines treat a zero rate as
// "no conversion available".
func DefaultState() State {
	return State{
		ModulesPerContainer:  DefaultModulesPerContainer,
		OptimizeMix:          true,
		SeaFreightUSD:        DefaultSeaFreightUSD,
		FullTruckMXN:         DefaultFullTruckMXN,
		SingleTruckMXN:       DefaultSingleTruckMXN(DefaultFullTruckMXN),
		BrokerFeeUSD:         DefaultBrokerFeeUSD,
		PortHandlingUSD:      DefaultPortHandlingUSD,
		SupplierSharePct:     DefaultSupplierSharePct,
		CompanySharePct:      DefaultCompanySharePct,
		InvoiceValuePct:      DefaultCompanySharePct,
		InsurancePct:         DefaultInsurancePct,
		ImportDutyPct:        DefaultImportDutyPct,
		CustomsProcessingPct: DefaultCustomsProcessingPct,
		AdvisorPct:           DefaultAdvisorPct,
		PriceOverrides:       map[string]float64{},
		CostOverrides:        map[string]float64{},
		Lines:                []OrderLine{},
		InstallmentCount:     DefaultInstallmentCount,
		Installments:         BuildInstallments(DefaultInstallmentCount),
		QuoteTerms:           DefaultQuoteTerms,
		TechnicalSpec:        DefaultTechnicalSpec,
		FeaturesStandard:     DefaultFeaturesStandard,
		FeaturesOffice:       DefaultFeaturesOffice,
		Status:               StatusSupplierAdvance,
		Movements:            []Movement{},
	}
}

// NewProject returns a fresh project with default state.
func NewProject(name string) Project {
	if name == "" {
		name = "Proyecto"
	}
	return Project{
		ID: uuid.NewString(),
		Meta: Meta{
			Name:      name,
			CreatedAt: Now().Format("2006-01-02"),
		},
		State: DefaultState(),
	}
}
