package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scontainr/quotecenter/internal/project"
)

func TestBuildControlCenter(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	won := project.Project{ID: "p1", Meta: project.Meta{Name: "Bodega Norte"}}
	won.State.Won = true
	won.State.Status = project.StatusInTransit
	won.State.ExchangeRate = 20
	won.State.Movements = []project.Movement{
		{ID: "freight", Kind: project.MovementCharge, Status: project.MovementPending,
			Category: project.CategorySeaFreight, Amount: 1000, Currency: project.CurrencyMXN, Date: "2026-09-01"},
		{ID: "payment", Kind: project.MovementCredit, Status: project.MovementPaid,
			Category: project.CategoryClientPayment, Amount: 2000, Currency: project.CurrencyUSD, Date: "2026-08-01"},
	}

	lost := project.Project{ID: "p2", Meta: project.Meta{Name: "Descartado"}}
	lost.State.Movements = []project.Movement{
		{ID: "noise", Kind: project.MovementCharge, Status: project.MovementPending,
			Category: project.CategoryProducts, Amount: 99999, Currency: project.CurrencyUSD, Date: "2026-09-01"},
	}

	cc := BuildControlCenter([]project.Project{won, lost}, now)

	assert.Equal(t, 1, cc.WonProjects)
	assert.Equal(t, 1, cc.StatusCounts[project.StatusInTransit])

	// The MXN charge converts through the project rate baked into it.
	assert.Equal(t, Pair{USD: 50, MXN: 1000}, cc.PendingCharges)
	assert.Equal(t, Pair{}, cc.PendingCredits)

	assert.Equal(t, Pair{USD: 2000, MXN: 40000}, cc.Flow.In)
	assert.Equal(t, Pair{USD: 50, MXN: 1000}, cc.Flow.Out)
	assert.Equal(t, Pair{USD: 1950, MXN: 39000}, cc.Flow.Balance)
	assert.Equal(t, Pair{USD: 2000, MXN: 40000}, cc.Realized.In)
	assert.Equal(t, Pair{}, cc.Realized.Out)

	require.Len(t, cc.Alerts.Upcoming, 1, "the lost project's movements never surface")
	alert := cc.Alerts.Upcoming[0]
	assert.Equal(t, "freight", alert.Movement.ID)
	assert.Equal(t, 4, alert.DaysAway)
	assert.Equal(t, "p1", alert.ProjectID)
	assert.Equal(t, "Bodega Norte", alert.ProjectName)
	assert.Equal(t, 1000.0, cc.Alerts.Sum30MXN)
}
