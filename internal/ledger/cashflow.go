package ledger

import (
	"math"
	"time"

	"github.com/scontainr/quotecenter/internal/money"
	"github.com/scontainr/quotecenter/internal/project"
)

// FlowRow is one dated step of the cash-flow projection with its running
// balance in MXN.
type FlowRow struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	InflowMXN   float64 `json:"inflow_mxn"`
	OutflowMXN  float64 `json:"outflow_mxn"`
	BalanceMXN  float64 `json:"balance_mxn"`
}

// FlowTotals sums the projection in both currencies.
type FlowTotals struct {
	In      Pair `json:"in"`
	Out     Pair `json:"out"`
	Balance Pair `json:"balance"`
}

// flowSkip drops movements that never hit this cash flow: undated ones and
// cost-of-goods charges already paid to the supplier.
func flowSkip(m project.Movement) bool {
	if m.Date == "" {
		return true
	}
	return m.Kind == project.MovementCharge &&
		m.Category == project.CategoryProducts &&
		m.Status == project.MovementPaid
}

// Flow builds the chronological projection rows. Movements must carry their
// tax, so every amount is tax-inclusive and converted to MXN.
func Flow(movs []project.Movement, fallbackFX float64) []FlowRow {
	var rows []FlowRow
	running := 0.0
	for _, m := range SortMovements(movs) {
		if flowSkip(m) {
			continue
		}
		mxn := toMXN(m, AmountWithTax(m), fallbackFX)
		var in, out float64
		if m.Kind == project.MovementCredit {
			in = mxn
		} else {
			out = mxn
		}
		running = money.Round2(running + in - out)
		rows = append(rows, FlowRow{
			Date:        m.Date,
			Description: m.Description,
			InflowMXN:   in,
			OutflowMXN:  out,
			BalanceMXN:  running,
		})
	}
	return rows
}

// FlowSummary totals the projection in both currencies.
func FlowSummary(movs []project.Movement, fallbackFX float64) FlowTotals {
	var t FlowTotals
	for _, m := range movs {
		if flowSkip(m) {
			continue
		}
		mxn := toMXN(m, AmountWithTax(m), fallbackFX)
		usd := toUSD(m, AmountWithTax(m), fallbackFX)
		if m.Kind == project.MovementCredit {
			t.In.MXN = money.Round2(t.In.MXN + mxn)
			t.In.USD = money.Round2(t.In.USD + usd)
		} else {
			t.Out.MXN = money.Round2(t.Out.MXN + mxn)
			t.Out.USD = money.Round2(t.Out.USD + usd)
		}
	}
	t.Balance.MXN = money.Round2(t.In.MXN - t.Out.MXN)
	t.Balance.USD = money.Round2(t.In.USD - t.Out.USD)
	return t
}

// UpcomingPayment is one pending movement due within the alert horizon.
type UpcomingPayment struct {
	Movement project.Movement `json:"movement"`
	DaysAway int              `json:"days_away"`
	// Project annotations, set by the control-center roll-up.
	ProjectID   string `json:"project_id,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

// Alerts groups the pending payments due within 30 days with the MXN sums
// per alert window.
type Alerts struct {
	Upcoming []UpcomingPayment `json:"upcoming"`
	Sum7MXN  float64           `json:"sum_7_mxn"`
	Sum15MXN float64           `json:"sum_15_mxn"`
	Sum30MXN float64           `json:"sum_30_mxn"`
}

// UpcomingAlerts finds pending dated movements due between now and 30 days
// out, sorted by due date.
func UpcomingAlerts(movs []project.Movement, now time.Time, fallbackFX float64) Alerts {
	var a Alerts
	for _, m := range SortMovements(movs) {
		if m.Status != project.MovementPending || m.Date == "" {
			continue
		}
		due, err := time.Parse("2006-01-02", m.Date)
		if err != nil {
			continue
		}
		days := int(math.Ceil(due.Sub(now).Hours() / 24))
		if days < 0 || days > 30 {
			continue
		}
		a.Upcoming = append(a.Upcoming, UpcomingPayment{Movement: m, DaysAway: days})
		mxn := toMXN(m, AmountWithTax(m), fallbackFX)
		if days <= 7 {
			a.Sum7MXN += mxn
		}
		if days <= 15 {
			a.Sum15MXN += mxn
		}
		a.Sum30MXN += mxn
	}
	a.Sum7MXN = money.Round2(a.Sum7MXN)
	a.Sum15MXN = money.Round2(a.Sum15MXN)
	a.Sum30MXN = money.Round2(a.Sum30MXN)
	return a
}
