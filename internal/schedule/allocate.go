// Package schedule turns a percentage payment plan into whole-unit
// deliveries. Units are indivisible, so the allocator assigns integer unit
// counts per installment and per order line, then nudges units between
// installments until the money split is close to the agreed percentages.
package schedule

import (
	"math"

	"github.com/scontainr/quotecenter/internal/money"
)

// DefaultSplit returns the standard percentage plan for n installments.
// Unknown counts get an even split.
func DefaultSplit(n int) []float64 {
	switch n {
	case 1:
		return []float64{100}
	case 2:
		return []float64{70, 30}
	case 3:
		return []float64{60, 30, 10}
	case 4:
		return []float64{40, 30, 20, 10}
	case 5:
		return []float64{30, 25, 20, 15, 10}
	}
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 / float64(n)
	}
	return out
}

// Line is one order line seen by the allocator: how many units it has and
// what one unit sells for.
type Line struct {
	Key       string
	Quantity  int
	UnitPrice float64
}

// Allocation is the result for one installment.
type Allocation struct {
	TargetPct    float64
	EffectivePct float64
	Units        map[string]int
	UnitTotal    int
	Amount       float64
}

// Options tune the rebalancing pass.
type Options struct {
	// TolerancePct is the acceptable deviation, in percentage points,
	// between an installment's effective and target share.
	TolerancePct float64
	// FirstWeight multiplies the first installment's deviation when scoring
	// a candidate move. The down payment is the anchor of the plan.
	FirstWeight float64
	// MaxIterFactor bounds the rebalancing loop at
	// totalUnits * len(targets) * MaxIterFactor moves.
	MaxIterFactor int
}

// DefaultOptions matches the tuning the business signed off on.
func DefaultOptions() Options {
	return Options{TolerancePct: 2, FirstWeight: 2, MaxIterFactor: 2}
}

// Allocate distributes every line's units across the installments.
//
// Targets are taken as given and never renormalized; if they do not sum to
// 100 the effective percentages will not either. Each line is first split by
// floor(qty*pct/100) with the remainder handed to the earliest installments.
// Then, while one installment sits more than the tolerance over its target
// and another sits more than the tolerance under, one unit is moved between
// that pair, picking the line whose move most reduces the weighted
// sum-of-squared deviations. A zero total sale value disables rebalancing
// since every effective percentage is zero.
func Allocate(lines []Line, targets []float64, opts Options) []Allocation {
	n := len(targets)
	if n == 0 {
		return nil
	}
	if opts.TolerancePct <= 0 {
		opts.TolerancePct = 2
	}
	if opts.FirstWeight <= 0 {
		opts.FirstWeight = 1
	}
	if opts.MaxIterFactor <= 0 {
		opts.MaxIterFactor = 2
	}

	allocs := make([]Allocation, n)
	for i := range allocs {
		allocs[i] = Allocation{TargetPct: targets[i], Units: make(map[string]int)}
	}

	totalUnits := 0
	totalValue := 0.0
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		totalUnits += l.Quantity
		totalValue += float64(l.Quantity) * l.UnitPrice

		assigned := 0
		for i, pct := range targets {
			u := int(math.Floor(float64(l.Quantity) * pct / 100))
			allocs[i].Units[l.Key] += u
			assigned += u
		}
		// Leftover units go to the earliest installments.
		for i := 0; assigned < l.Quantity; i = (i + 1) % n {
			allocs[i].Units[l.Key]++
			assigned++
		}
	}

	priceOf := make(map[string]float64, len(lines))
	for _, l := range lines {
		priceOf[l.Key] = l.UnitPrice
	}

	recompute := func() {
		for i := range allocs {
			amount := 0.0
			units := 0
			for key, u := range allocs[i].Units {
				amount += float64(u) * priceOf[key]
				units += u
			}
			allocs[i].Amount = money.Round2(amount)
			allocs[i].UnitTotal = units
			if totalValue > 0 {
				allocs[i].EffectivePct = money.Round2(allocs[i].Amount / totalValue * 100)
			} else {
				allocs[i].EffectivePct = 0
			}
		}
	}
	recompute()

	if totalValue <= 0 || totalUnits == 0 {
		return allocs
	}

	score := func(eff []float64) float64 {
		s := 0.0
		for i, v := range eff {
			diff := v - allocs[i].TargetPct
			w := 1.0
			if i == 0 {
				w = opts.FirstWeight
			}
			s += w * diff * diff
		}
		return s
	}

	maxMoves := totalUnits * n * opts.MaxIterFactor
	for move := 0; move < maxMoves; move++ {
		over, under := -1, -1
		for i := range allocs {
			if over < 0 && allocs[i].EffectivePct > allocs[i].TargetPct+opts.TolerancePct {
				over = i
			}
			if under < 0 && allocs[i].EffectivePct < allocs[i].TargetPct-opts.TolerancePct {
				under = i
			}
		}
		if over < 0 || under < 0 {
			break
		}

		eff := make([]float64, n)
		for i := range allocs {
			eff[i] = allocs[i].EffectivePct
		}
		base := score(eff)

		bestKey := ""
		bestGain := 0.0
		next := make([]float64, n)
		for _, l := range lines {
			price := priceOf[l.Key]
			if allocs[over].Units[l.Key] <= 0 || price <= 0 {
				continue
			}
			copy(next, eff)
			next[over] = money.Round2((allocs[over].Amount - price) / totalValue * 100)
			next[under] = money.Round2((allocs[under].Amount + price) / totalValue * 100)
			if gain := base - score(next); gain > bestGain {
				bestGain, bestKey = gain, l.Key
			}
		}
		if bestKey == "" {
			break
		}
		allocs[over].Units[bestKey]--
		allocs[under].Units[bestKey]++
		recompute()
	}

	return allocs
}
