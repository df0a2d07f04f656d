package export

import (
	"github.com/scontainr/quotecenter/internal/money"
	"github.com/scontainr/quotecenter/internal/project"
	"github.com/scontainr/quotecenter/internal/quote"
	"github.com/scontainr/quotecenter/internal/schedule"
)

// QuoteDocument carries everything a renderer needs for the client quote.
type QuoteDocument struct {
	ProjectName string `json:"project_name"`
	Contact     string `json:"contact"`
	Location    string `json:"location"`
	LegalName   string `json:"legal_name,omitempty"`
	CreatedAt   string `json:"created_at"`

	Rows   []quote.Row  `json:"rows"`
	Totals quote.Totals `json:"totals"`

	SubtotalUSD float64 `json:"subtotal_usd"`
	TaxUSD      float64 `json:"tax_usd"`
	TotalUSD    float64 `json:"total_usd"`

	Terms            string `json:"terms"`
	TechnicalSpec    string `json:"technical_spec"`
	FeaturesStandard string `json:"features_standard"`
	FeaturesOffice   string `json:"features_office"`
}

// BuildQuoteDocument assembles the quote document from a priced project.
func BuildQuoteDocument(p project.Project, rows []quote.Row, totals quote.Totals) QuoteDocument {
	subtotal := totals.PriceUSD
	tax := money.Round2(subtotal * money.IVARate)
	return QuoteDocument{
		ProjectName:      p.Meta.Name,
		Contact:          p.Meta.Contact,
		Location:         p.Meta.Location,
		LegalName:        p.Meta.LegalName,
		CreatedAt:        p.Meta.CreatedAt,
		Rows:             rows,
		Totals:           totals,
		SubtotalUSD:      subtotal,
		TaxUSD:           tax,
		TotalUSD:         money.Round2(subtotal + tax),
		Terms:            p.State.QuoteTerms,
		TechnicalSpec:    p.State.TechnicalSpec,
		FeaturesStandard: p.State.FeaturesStandard,
		FeaturesOffice:   p.State.FeaturesOffice,
	}
}

// ScheduleInstallment is one rendered installment of the payment plan.
type ScheduleInstallment struct {
	Index        int     `json:"index"`
	TargetPct    float64 `json:"target_pct"`
	EffectivePct float64 `json:"effective_pct"`
	Date         string  `json:"date,omitempty"`
	Concept      string  `json:"concept,omitempty"`

	UnitsByLine map[string]int `json:"units_by_line"`
	UnitTotal   int            `json:"unit_total"`

	SubtotalUSD float64 `json:"subtotal_usd"`
	TaxUSD      float64 `json:"tax_usd"`
	TotalUSD    float64 `json:"total_usd"`
}

// ScheduleDocument is the payment-schedule export.
type ScheduleDocument struct {
	ProjectName  string                `json:"project_name"`
	Installments []ScheduleInstallment `json:"installments"`
	Notes        string                `json:"notes,omitempty"`

	SubtotalUSD float64 `json:"subtotal_usd"`
	TaxUSD      float64 `json:"tax_usd"`
	TotalUSD    float64 `json:"total_usd"`
}

// BuildScheduleDocument runs the unit allocator over the priced rows and the
// project's installment plan.
func BuildScheduleDocument(p project.Project, rows []quote.Row) ScheduleDocument {
	lines := make([]schedule.Line, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, schedule.Line{
			Key:       r.KeyStr,
			Quantity:  r.Quantity,
			UnitPrice: r.FinalUnitPrice,
		})
	}
	targets := make([]float64, len(p.State.Installments))
	for i, inst := range p.State.Installments {
		targets[i] = inst.Pct
	}

	allocs := schedule.Allocate(lines, targets, schedule.DefaultOptions())

	doc := ScheduleDocument{ProjectName: p.Meta.Name, Notes: p.State.InstallmentNotes}
	for i, a := range allocs {
		sub := money.Round2(a.Amount)
		tax := money.Round2(sub * money.IVARate)
		inst := ScheduleInstallment{
			Index:        i + 1,
			TargetPct:    a.TargetPct,
			EffectivePct: money.Round2(a.EffectivePct),
			UnitsByLine:  a.Units,
			UnitTotal:    a.UnitTotal,
			SubtotalUSD:  sub,
			TaxUSD:       tax,
			TotalUSD:     money.Round2(sub + tax),
		}
		if i < len(p.State.Installments) {
			inst.Date = p.State.Installments[i].Date
			inst.Concept = p.State.Installments[i].Concept
		}
		doc.Installments = append(doc.Installments, inst)
		doc.SubtotalUSD = money.Round2(doc.SubtotalUSD + sub)
		doc.TaxUSD = money.Round2(doc.TaxUSD + tax)
	}
	doc.TotalUSD = money.Round2(doc.SubtotalUSD + doc.TaxUSD)
	return doc
}
