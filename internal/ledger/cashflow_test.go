package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scontainr/quotecenter/internal/project"
)

func flowFixture() []project.Movement {
	return []project.Movement{
		{ID: "in", Kind: project.MovementCredit, Status: project.MovementPaid,
			Category: project.CategoryClientPayment, Amount: 1000, Currency: project.CurrencyUSD, Date: "2026-01-01"},
		{ID: "out", Kind: project.MovementCharge, Status: project.MovementPending,
			Category: project.CategorySeaFreight, Amount: 580, Currency: project.CurrencyUSD,
			IncludesTax: true, Date: "2026-01-02"},
		{ID: "goods", Kind: project.MovementCharge, Status: project.MovementPaid,
			Category: project.CategoryProducts, Amount: 5000, Currency: project.CurrencyUSD, Date: "2026-01-01"},
		{ID: "undated", Kind: project.MovementCredit, Status: project.MovementPending,
			Category: project.CategoryClientPayment, Amount: 99, Currency: project.CurrencyUSD},
	}
}

func TestFlow(t *testing.T) {
	rows := Flow(flowFixture(), 10)
	require.Len(t, rows, 2, "undated and paid cost-of-goods movements are skipped")

	assert.Equal(t, "2026-01-01", rows[0].Date)
	assert.Equal(t, 10000.0, rows[0].InflowMXN)
	assert.Equal(t, 10000.0, rows[0].BalanceMXN)

	// 580 tax-inclusive carries 80 of VAT, so 660 with tax.
	assert.Equal(t, "2026-01-02", rows[1].Date)
	assert.Equal(t, 6600.0, rows[1].OutflowMXN)
	assert.Equal(t, 3400.0, rows[1].BalanceMXN)
}

func TestFlowSummary(t *testing.T) {
	totals := FlowSummary(flowFixture(), 10)

	assert.Equal(t, Pair{USD: 1000, MXN: 10000}, totals.In)
	assert.Equal(t, Pair{USD: 660, MXN: 6600}, totals.Out)
	assert.Equal(t, Pair{USD: 340, MXN: 3400}, totals.Balance)
}

func TestUpcomingAlerts(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	pending := func(id, date string) project.Movement {
		return project.Movement{ID: id, Kind: project.MovementCharge, Status: project.MovementPending,
			Category: project.CategorySeaFreight, Amount: 100, Currency: project.CurrencyUSD, Date: date}
	}
	movs := []project.Movement{
		pending("today", "2026-08-28"),
		pending("soon", "2026-09-01"),
		pending("midway", "2026-09-10"),
		pending("late", "2026-09-20"),
		pending("overdue", "2026-08-20"),
		pending("far", "2026-10-15"),
		{ID: "settled", Kind: project.MovementCharge, Status: project.MovementPaid,
			Category: project.CategorySeaFreight, Amount: 100, Currency: project.CurrencyUSD, Date: "2026-09-01"},
	}

	a := UpcomingAlerts(movs, now, 10)

	require.Len(t, a.Upcoming, 4, "only pending movements inside the 30-day window qualify")
	assert.Equal(t, "today", a.Upcoming[0].Movement.ID)
	assert.Equal(t, 0, a.Upcoming[0].DaysAway)
	assert.Equal(t, "soon", a.Upcoming[1].Movement.ID)
	assert.Equal(t, 4, a.Upcoming[1].DaysAway)
	assert.Equal(t, 13, a.Upcoming[2].DaysAway)
	assert.Equal(t, 23, a.Upcoming[3].DaysAway)

	assert.Equal(t, 2000.0, a.Sum7MXN)
	assert.Equal(t, 3000.0, a.Sum15MXN)
	assert.Equal(t, 4000.0, a.Sum30MXN)
}
