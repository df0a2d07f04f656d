// Package ledger aggregates the cash movements of won projects: balances in
// both currencies, the VAT account, client receivables, per-category spend
// against targets, cash-flow projection and upcoming-payment alerts.
package ledger

import (
	"sort"

	"github.com/scontainr/quotecenter/internal/money"
	"github.com/scontainr/quotecenter/internal/project"
)

// Pair carries the same figure in both currencies.
type Pair struct {
	USD float64 `json:"usd"`
	MXN float64 `json:"mxn"`
}

// TaxOf returns the tax portion of a movement: the manual override when set,
// otherwise the 16% backed out of a tax-inclusive amount, otherwise 0.
func TaxOf(m project.Movement) float64 {
	if m.ManualTax != nil {
		return *m.ManualTax
	}
	if !m.IncludesTax {
		return 0
	}
	return money.Round2(m.Amount * money.IVARate / (1 + money.IVARate))
}

// AmountWithTax returns the movement amount including its tax portion. For
// tax-category movements the amount itself is the tax and passes through
// (manual override first).
func AmountWithTax(m project.Movement) float64 {
	if project.IsTaxCategory(m.Category) {
		if m.ManualTax != nil {
			return *m.ManualTax
		}
		return m.Amount
	}
	return money.Round2(m.Amount + taxIfIncluded(m))
}

func taxIfIncluded(m project.Movement) float64 {
	if !m.IncludesTax {
		return 0
	}
	return TaxOf(m)
}

// baseAmount is the movement amount used by the plain (tax-exclusive)
// aggregates; tax categories still pass their manual value through.
func baseAmount(m project.Movement) float64 {
	if project.IsTaxCategory(m.Category) && m.ManualTax != nil {
		return *m.ManualTax
	}
	return m.Amount
}

func rateOf(m project.Movement, fallback float64) float64 {
	if m.PaymentFXRate > 0 {
		return m.PaymentFXRate
	}
	return fallback
}

// toUSD converts an amount in the movement's currency to USD using the
// movement rate with the project fallback. No usable rate contributes 0.
func toUSD(m project.Movement, amount, fallback float64) float64 {
	if m.Currency == project.CurrencyUSD {
		return amount
	}
	if fx := rateOf(m, fallback); fx > 0 {
		return money.Round2(amount / fx)
	}
	return 0
}

func toMXN(m project.Movement, amount, fallback float64) float64 {
	if m.Currency == project.CurrencyMXN {
		return amount
	}
	if fx := rateOf(m, fallback); fx > 0 {
		return money.Round2(amount * fx)
	}
	return 0
}

// SortMovements orders movements chronologically: date ascending, undated
// last, paid before pending on the same date. The sort is stable so equal
// movements keep their entry order.
func SortMovements(movs []project.Movement) []project.Movement {
	out := make([]project.Movement, len(movs))
	copy(out, movs)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Date, out[j].Date
		if (di == "") != (dj == "") {
			return di != ""
		}
		if di != dj {
			return di < dj
		}
		if out[i].Status != out[j].Status {
			return out[i].Status == project.MovementPaid
		}
		return false
	})
	return out
}

// CategoryTotal compares actual spend in one category with its target.
type CategoryTotal struct {
	Category     project.Category `json:"category"`
	TargetUSD    float64          `json:"target_usd"`
	PaidUSD      float64          `json:"paid_usd"`
	PendingUSD   float64          `json:"pending_usd"`
	RemainingUSD float64          `json:"remaining_usd"`
}

// Summary is the full financial picture of one won project.
type Summary struct {
	// Per-currency sums of raw amounts, no tax, no conversion.
	PendingChargesByCurrency Pair `json:"pending_charges_by_currency"`
	ChargesByCurrency        Pair `json:"charges_by_currency"`
	CreditsByCurrency        Pair `json:"credits_by_currency"`
	FinalProfitByCurrency    Pair `json:"final_profit_by_currency"`

	// Tax-inclusive pending charges, converted with fallback rates.
	PendingCharges Pair `json:"pending_charges"`

	// Credits minus charges, excluding paid cost-of-goods charges.
	BalanceUSD float64 `json:"balance_usd"`

	// VAT embedded in charges vs credits.
	TaxChargesUSD float64 `json:"tax_charges_usd"`
	TaxCreditsUSD float64 `json:"tax_credits_usd"`
	TaxBalanceUSD float64 `json:"tax_balance_usd"`

	// The VAT account: creditable import VAT vs VAT passed on in credits.
	CreditableTax     Pair `json:"creditable_tax"`
	OutputTax         Pair `json:"output_tax"`
	TaxAccountBalance Pair `json:"tax_account_balance"`

	// Client receivable against the quoted total including VAT.
	QuoteTotalWithTaxUSD float64 `json:"quote_total_with_tax_usd"`
	ClientPaidUSD        float64 `json:"client_paid_usd"`
	ClientPendingUSD     float64 `json:"client_pending_usd"`
	ClientReceivable     Pair    `json:"client_receivable"`

	// Realized (paid-only) balance, excluding paid cost-of-goods charges.
	PaidChargesUSD  float64 `json:"paid_charges_usd"`
	PaidCreditsUSD  float64 `json:"paid_credits_usd"`
	RealizedBalance Pair    `json:"realized_balance"`

	// Projected balance over everything except paid cost-of-goods charges.
	PendingBalance Pair `json:"pending_balance"`

	Categories []CategoryTotal `json:"categories"`
}

// controlTargets maps each tracked category to its cost-control target.
func controlTargets(cc project.CostControls) []struct {
	Cat    project.Category
	Target float64
} {
	return []struct {
		Cat    project.Category
		Target float64
	}{
		{project.CategoryProducts, cc.Products},
		{project.CategorySeaFreight, cc.SeaFreight},
		{project.CategoryLandFreight, cc.LandFreight},
		{project.CategoryInsurance, cc.Insurance},
		{project.CategoryImportDuty, cc.ImportDuty},
		{project.CategoryCustomsProcessing, cc.CustomsProcessing},
		{project.CategoryCustomsBroker, cc.CustomsBroker},
		{project.CategoryPortHandling, cc.PortHandling},
		{project.CategoryAdvisory, cc.Advisory},
		{project.CategoryInstallation, cc.Installation},
		{project.CategorySalesCommission, cc.SalesCommission},
		{project.CategoryImportTax, cc.ImportTax},
	}
}

// Summarize aggregates one project's movements. quoteTotalUSD is the current
// quote grand total before tax; fallbackFX converts movements that carry no
// rate of their own.
func Summarize(movs []project.Movement, cc project.CostControls, quoteTotalUSD, fallbackFX float64) Summary {
	var s Summary

	addPair := func(p *Pair, m project.Movement, amount float64) {
		if m.Currency == project.CurrencyUSD {
			p.USD += amount
		} else {
			p.MXN += amount
		}
	}

	catPaid := map[project.Category]float64{}
	catPending := map[project.Category]float64{}

	var creditsBaseUSD, chargesBaseUSD float64
	for _, m := range movs {
		isCharge := m.Kind == project.MovementCharge
		paid := m.Status == project.MovementPaid
		paidGoods := isCharge && m.Category == project.CategoryProducts && paid

		if isCharge {
			addPair(&s.ChargesByCurrency, m, m.Amount)
			if !paid {
				addPair(&s.PendingChargesByCurrency, m, m.Amount)
				s.PendingCharges.USD += toUSD(m, AmountWithTax(m), fallbackFX)
				s.PendingCharges.MXN += toMXN(m, AmountWithTax(m), fallbackFX)
			}
			catUSD := toUSD(m, baseAmount(m), fallbackFX)
			if paid {
				catPaid[m.Category] += catUSD
			} else {
				catPending[m.Category] += catUSD
			}
			if !paidGoods {
				chargesBaseUSD += toUSD(m, baseAmount(m), fallbackFX)
			}
			if m.Category != project.CategoryImportTax {
				s.TaxChargesUSD += toUSD(m, TaxOf(m), fallbackFX)
			}
		} else {
			addPair(&s.CreditsByCurrency, m, m.Amount)
			creditsBaseUSD += toUSD(m, baseAmount(m), fallbackFX)
			s.TaxCreditsUSD += toUSD(m, TaxOf(m), fallbackFX)
			if m.IncludesTax {
				s.OutputTax.USD += toUSD(m, TaxOf(m), fallbackFX)
				s.OutputTax.MXN += toMXN(m, TaxOf(m), fallbackFX)
			}
			if m.Category == project.CategoryClientPayment {
				if paid {
					s.ClientPaidUSD += toUSD(m, AmountWithTax(m), fallbackFX)
				} else {
					s.ClientPendingUSD += toUSD(m, AmountWithTax(m), fallbackFX)
				}
			}
		}

		if m.Category == project.CategoryImportTax {
			base := baseAmount(m)
			s.CreditableTax.USD += toUSD(m, base, fallbackFX)
			s.CreditableTax.MXN += toMXN(m, base, fallbackFX)
		}

		if paid && !paidGoods {
			if isCharge {
				s.PaidChargesUSD += toUSD(m, AmountWithTax(m), fallbackFX)
				s.RealizedBalance.MXN -= toMXN(m, AmountWithTax(m), fallbackFX)
			} else {
				s.PaidCreditsUSD += toUSD(m, AmountWithTax(m), fallbackFX)
				s.RealizedBalance.MXN += toMXN(m, AmountWithTax(m), fallbackFX)
			}
		}

		if !paidGoods {
			if isCharge {
				s.PendingBalance.MXN -= toMXN(m, baseAmount(m), fallbackFX)
			} else {
				s.PendingBalance.MXN += toMXN(m, baseAmount(m), fallbackFX)
			}
		}
	}

	round := func(p *Pair) {
		p.USD = money.Round2(p.USD)
		p.MXN = money.Round2(p.MXN)
	}
	round(&s.PendingChargesByCurrency)
	round(&s.ChargesByCurrency)
	round(&s.CreditsByCurrency)
	round(&s.PendingCharges)
	round(&s.CreditableTax)
	round(&s.OutputTax)

	s.FinalProfitByCurrency = Pair{
		USD: money.Round2(s.CreditsByCurrency.USD - s.ChargesByCurrency.USD),
		MXN: money.Round2(s.CreditsByCurrency.MXN - s.ChargesByCurrency.MXN),
	}
	s.BalanceUSD = money.Round2(creditsBaseUSD - chargesBaseUSD)
	s.TaxChargesUSD = money.Round2(s.TaxChargesUSD)
	s.TaxCreditsUSD = money.Round2(s.TaxCreditsUSD)
	s.TaxBalanceUSD = money.Round2(s.TaxCreditsUSD - s.TaxChargesUSD)
	s.TaxAccountBalance = Pair{
		USD: money.Round2(s.CreditableTax.USD - s.OutputTax.USD),
		MXN: money.Round2(s.CreditableTax.MXN - s.OutputTax.MXN),
	}

	s.QuoteTotalWithTaxUSD = money.Round2(quoteTotalUSD * (1 + money.IVARate))
	s.ClientPaidUSD = money.Round2(s.ClientPaidUSD)
	s.ClientPendingUSD = money.Round2(s.ClientPendingUSD)
	receivable := s.QuoteTotalWithTaxUSD - s.ClientPaidUSD
	if receivable < 0 {
		receivable = 0
	}
	s.ClientReceivable.USD = money.Round2(receivable)
	if fallbackFX > 0 {
		s.ClientReceivable.MXN = money.Round2(s.ClientReceivable.USD * fallbackFX)
	}

	s.PaidChargesUSD = money.Round2(s.PaidChargesUSD)
	s.PaidCreditsUSD = money.Round2(s.PaidCreditsUSD)
	s.RealizedBalance.USD = money.Round2(s.PaidCreditsUSD - s.PaidChargesUSD)
	s.RealizedBalance.MXN = money.Round2(s.RealizedBalance.MXN)
	s.PendingBalance.MXN = money.Round2(s.PendingBalance.MXN)
	if fallbackFX > 0 {
		s.PendingBalance.USD = money.Round2(s.PendingBalance.MXN / fallbackFX)
	}

	for _, ct := range controlTargets(cc) {
		paid := money.Round2(catPaid[ct.Cat])
		pending := money.Round2(catPending[ct.Cat])
		s.Categories = append(s.Categories, CategoryTotal{
			Category:     ct.Cat,
			TargetUSD:    ct.Target,
			PaidUSD:      paid,
			PendingUSD:   pending,
			RemainingUSD: money.Round2(ct.Target - paid),
		})
	}

	return s
}
