package ledger

import (
	"time"

	"github.com/scontainr/quotecenter/internal/money"
	"github.com/scontainr/quotecenter/internal/project"
)

// ControlCenter is the cross-project roll-up over won projects.
type ControlCenter struct {
	WonProjects int `json:"won_projects"`

	PendingCharges Pair `json:"pending_charges"`
	PendingCredits Pair `json:"pending_credits"`

	Flow     FlowTotals `json:"flow"`
	Realized FlowTotals `json:"realized"`

	Alerts       Alerts                 `json:"alerts"`
	StatusCounts map[project.Status]int `json:"status_counts"`
}

type annotated struct {
	project.Movement
	projectID   string
	projectName string
}

// wonMovements flattens the movements of all won projects, baking each
// project's default rate into movements that have none of their own so the
// aggregates below need no per-movement fallback.
func wonMovements(projects []project.Project) []annotated {
	var out []annotated
	for _, p := range projects {
		if !p.State.Won {
			continue
		}
		fx := p.State.DefaultFXRate()
		for _, m := range p.State.Movements {
			if m.PaymentFXRate <= 0 {
				m.PaymentFXRate = fx
			}
			out = append(out, annotated{Movement: m, projectID: p.ID, projectName: p.Meta.Name})
		}
	}
	return out
}

// BuildControlCenter aggregates every won project's movements.
func BuildControlCenter(projects []project.Project, now time.Time) ControlCenter {
	cc := ControlCenter{StatusCounts: map[project.Status]int{}}

	movs := wonMovements(projects)
	plain := make([]project.Movement, len(movs))
	for i, m := range movs {
		plain[i] = m.Movement
	}

	for _, p := range projects {
		if p.State.Won {
			cc.WonProjects++
			cc.StatusCounts[p.State.Status]++
		}
	}

	for _, m := range plain {
		if m.Status != project.MovementPending {
			continue
		}
		amt := AmountWithTax(m)
		if m.Kind == project.MovementCharge {
			cc.PendingCharges.USD += toUSD(m, amt, 0)
			cc.PendingCharges.MXN += toMXN(m, amt, 0)
		} else {
			cc.PendingCredits.USD += toUSD(m, amt, 0)
			cc.PendingCredits.MXN += toMXN(m, amt, 0)
		}
	}
	cc.PendingCharges.USD = money.Round2(cc.PendingCharges.USD)
	cc.PendingCharges.MXN = money.Round2(cc.PendingCharges.MXN)
	cc.PendingCredits.USD = money.Round2(cc.PendingCredits.USD)
	cc.PendingCredits.MXN = money.Round2(cc.PendingCredits.MXN)

	var dated, paid []project.Movement
	for _, m := range plain {
		if m.Date == "" {
			continue
		}
		dated = append(dated, m)
		if m.Status == project.MovementPaid {
			paid = append(paid, m)
		}
	}
	cc.Flow = FlowSummary(dated, 0)
	cc.Realized = FlowSummary(paid, 0)

	cc.Alerts = UpcomingAlerts(plain, now, 0)
	// Re-annotate the alert entries with their project.
	byID := map[string]annotated{}
	for _, m := range movs {
		byID[m.ID] = m
	}
	for i := range cc.Alerts.Upcoming {
		if a, ok := byID[cc.Alerts.Upcoming[i].Movement.ID]; ok {
			cc.Alerts.Upcoming[i].ProjectID = a.projectID
			cc.Alerts.Upcoming[i].ProjectName = a.projectName
		}
	}

	return cc
}
