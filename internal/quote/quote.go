// Package quote turns order lines plus shared import costs into priced quote
// rows: landed unit cost per line, list price from the target margin and
// discount, manual overrides, and the door/area mix totals the sales
// documents need.
package quote

import (
	"sort"

	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/money"
	"github.com/scontainr/quotecenter/internal/project"
)

// Row is the priced view of one order line.
type Row struct {
	Key    project.LineKey `json:"-"`
	KeyStr string          `json:"key"`

	Size     catalog.Size   `json:"size"`
	Model    string         `json:"model"`
	Finish   catalog.Finish `json:"finish"`
	Quantity int            `json:"quantity"`
	Note     string         `json:"note,omitempty"`

	BaseUnitCost      float64 `json:"base_unit_cost"`
	SharedCostShare   float64 `json:"shared_cost_share"`
	AllocatedUnitCost float64 `json:"allocated_unit_cost"`
	FinalUnitCost     float64 `json:"final_unit_cost"`

	ComputedUnitPrice float64 `json:"computed_unit_price"`
	FinalUnitPrice    float64 `json:"final_unit_price"`

	LineCost   float64 `json:"line_cost"`
	LinePrice  float64 `json:"line_price"`
	LineProfit float64 `json:"line_profit"`
	UnitProfit float64 `json:"unit_profit"`
	MarginPct  float64 `json:"margin_pct"`

	DoorsPerUnit int     `json:"doors_per_unit"`
	LineDoors    float64 `json:"line_doors"`
	UnitAreaM2   float64 `json:"unit_area_m2"`
	RentableM2   float64 `json:"rentable_m2"`
	LineM2       float64 `json:"line_m2"`

	CostOverridden  bool `json:"cost_overridden"`
	PriceOverridden bool `json:"price_overridden"`
}

// DoorMixEntry is the door count for one per-minibodega area bucket.
type DoorMixEntry struct {
	AreaM2 float64 `json:"area_m2"`
	Doors  float64 `json:"doors"`
}

// Totals aggregates the quote.
type Totals struct {
	TotalUnits int `json:"total_units"`

	CostUSD         float64 `json:"cost_usd"`
	PriceUSD        float64 `json:"price_usd"`
	ProfitUSD       float64 `json:"profit_usd"`
	CommissionUSD   float64 `json:"commission_usd"`
	NetProfitUSD    float64 `json:"net_profit_usd"`
	AvgNetMarginPct float64 `json:"avg_net_margin_pct"`

	RentableM2    float64 `json:"rentable_m2"`
	PricePerM2USD float64 `json:"price_per_m2_usd"`
	PricePerM2MXN float64 `json:"price_per_m2_mxn"`

	DoorMix     []DoorMixEntry `json:"door_mix"`
	TotalDoors  float64        `json:"total_doors"`
	LargeDoors  float64        `json:"large_doors"`
	MediumDoors float64        `json:"medium_doors"`
	SmallDoors  float64        `json:"small_doors"`
	LargePct    float64        `json:"large_pct"`
	MediumPct   float64        `json:"medium_pct"`
	SmallPct    float64        `json:"small_pct"`
}

// BuildRows prices every order line of the state against the catalog and the
// shared cost total from logistics.
//
// Allocation weight is rentable area times quantity when the catalog defines
// a rentable area for the line, quantity alone otherwise; a cost override
// never changes the weight. The margin formula price = cost/(1-m) is cut off
// at m >= 95%, where the price falls back to the cost. Every monetary step
// is rounded to cents as it happens so line totals match what is displayed.
func BuildRows(s *project.State, cat *catalog.Catalog, sharedCostUSD float64) ([]Row, Totals) {
	rows := make([]Row, 0, len(s.Lines))

	totalWeight := 0.0
	weights := make([]float64, len(s.Lines))
	for i, l := range s.Lines {
		qty := l.Quantity
		if qty < 0 {
			qty = 0
		}
		w := float64(qty)
		if area := cat.RentableArea(l.Size, l.Finish); area > 0 {
			w = area * float64(qty)
		}
		weights[i] = w
		totalWeight += w
	}

	margin := money.Pct(s.MarginPct)
	discount := money.Pct(s.DiscountPct)

	var t Totals
	for i, l := range s.Lines {
		qty := l.Quantity
		if qty < 0 {
			qty = 0
		}
		key := l.Key()
		keyStr := key.String()

		baseUnit := l.BaseUnitCost(cat)

		share := 0.0
		if totalWeight > 0 {
			share = sharedCostUSD * weights[i] / totalWeight
		}
		extraUnit := 0.0
		if qty > 0 {
			extraUnit = share / float64(qty)
		}
		allocatedUnit := money.Round2(baseUnit + extraUnit)

		basePrice := allocatedUnit
		if margin < 0.95 {
			basePrice = allocatedUnit / (1 - margin)
		}
		basePrice = money.Round2(basePrice)
		computedPrice := money.Round2(basePrice * (1 - discount))

		finalCost := allocatedUnit
		costOverridden := false
		if ov, ok := s.CostOverrides[keyStr]; ok && money.IsValidAmount(ov) {
			finalCost = money.Round2(ov)
			costOverridden = true
		}
		finalPrice := computedPrice
		priceOverridden := false
		if ov, ok := s.PriceOverrides[keyStr]; ok && money.IsValidAmount(ov) {
			finalPrice = money.Round2(ov)
			priceOverridden = true
		}

		lineCost := money.Round2(finalCost * float64(qty))
		linePrice := money.Round2(finalPrice * float64(qty))
		lineProfit := money.Round2(linePrice - lineCost)
		unitProfit := 0.0
		if qty > 0 {
			unitProfit = money.Round2(lineProfit / float64(qty))
		}
		marginPct := 0.0
		if finalPrice > 0 {
			marginPct = money.Round2(unitProfit / finalPrice * 100)
		}

		spec := cat.Spec(l.Size, l.Finish, l.Model)
		unitArea := cat.RentableArea(l.Size, l.Finish)
		rows = append(rows, Row{
			Key:               key,
			KeyStr:            keyStr,
			Size:              l.Size,
			Model:             l.Model,
			Finish:            l.Finish,
			Quantity:          qty,
			Note:              cat.Note(l.Size, l.Model),
			BaseUnitCost:      money.Round2(baseUnit),
			SharedCostShare:   money.Round2(share),
			AllocatedUnitCost: allocatedUnit,
			FinalUnitCost:     finalCost,
			ComputedUnitPrice: computedPrice,
			FinalUnitPrice:    finalPrice,
			LineCost:          lineCost,
			LinePrice:         linePrice,
			LineProfit:        lineProfit,
			UnitProfit:        unitProfit,
			MarginPct:         marginPct,
			DoorsPerUnit:      spec.Doors,
			LineDoors:         money.Round2(float64(spec.Doors) * float64(qty)),
			UnitAreaM2:        spec.AreaPerUnit,
			RentableM2:        unitArea,
			LineM2:            money.Round2(unitArea * float64(qty)),
			CostOverridden:    costOverridden,
			PriceOverridden:   priceOverridden,
		})

		t.TotalUnits += qty
		t.CostUSD += lineCost
		t.PriceUSD += linePrice
		t.RentableM2 += unitArea * float64(qty)
	}

	t.ProfitUSD = money.Round2(t.PriceUSD - t.CostUSD)
	t.CommissionUSD = money.Round2(t.PriceUSD * money.Pct(s.SalesCommissionPct))
	t.NetProfitUSD = money.Round2(t.PriceUSD - t.CostUSD - t.CommissionUSD)
	if t.PriceUSD > 0 {
		t.AvgNetMarginPct = money.Round2(t.NetProfitUSD / t.PriceUSD * 100)
	}

	if t.RentableM2 > 0 {
		rentablePrice := 0.0
		for _, r := range rows {
			if r.LineM2 > 0 {
				rentablePrice += r.LinePrice
			}
		}
		t.PricePerM2USD = money.Round2(rentablePrice / t.RentableM2)
		if fx := s.DefaultFXRate(); fx > 0 {
			t.PricePerM2MXN = money.Round2(t.PricePerM2USD * fx)
		}
	}

	mix := map[float64]float64{}
	for _, r := range rows {
		if r.UnitAreaM2 > 0 && r.LineDoors > 0 {
			mix[r.UnitAreaM2] = money.Round2(mix[r.UnitAreaM2] + r.LineDoors)
		}
	}
	for area, doors := range mix {
		t.DoorMix = append(t.DoorMix, DoorMixEntry{AreaM2: area, Doors: doors})
	}
	sort.Slice(t.DoorMix, func(i, j int) bool { return t.DoorMix[i].AreaM2 > t.DoorMix[j].AreaM2 })
	for _, e := range t.DoorMix {
		t.TotalDoors += e.Doors
		switch {
		case e.AreaM2 >= 9 && e.AreaM2 <= 14:
			t.LargeDoors += e.Doors
		case e.AreaM2 == 7 || e.AreaM2 == 6:
			t.MediumDoors += e.Doors
		case e.AreaM2 <= 5:
			t.SmallDoors += e.Doors
		}
	}
	t.TotalDoors = money.Round2(t.TotalDoors)
	if t.TotalDoors > 0 {
		t.LargePct = money.Round2(t.LargeDoors / t.TotalDoors * 100)
		t.MediumPct = money.Round2(t.MediumDoors / t.TotalDoors * 100)
		t.SmallPct = money.Round2(t.SmallDoors / t.TotalDoors * 100)
	}
	t.RentableM2 = money.Round2(t.RentableM2)
	t.CostUSD = money.Round2(t.CostUSD)
	t.PriceUSD = money.Round2(t.PriceUSD)

	return rows, t
}

// ApplyPricingParamChange updates the margin and discount on the state and
// reconciles the override maps against the rows that were computed before
// the change.
//
// A price override that equals, to the cent, the previously computed price
// is treated as an accidental copy of the old computed value and removed so
// the new parameters take effect. Cost overrides have no computed baseline
// to compare against, so they are only purged of invalid values.
func ApplyPricingParamChange(s *project.State, prevRows []Row, newMarginPct, newDiscountPct float64) {
	prevComputed := make(map[string]float64, len(prevRows))
	for _, r := range prevRows {
		prevComputed[r.KeyStr] = r.ComputedUnitPrice
	}

	for key, ov := range s.PriceOverrides {
		prev, ok := prevComputed[key]
		if ok && money.Round2(ov) == money.Round2(prev) {
			delete(s.PriceOverrides, key)
		}
	}
	for key, ov := range s.CostOverrides {
		if !money.IsValidAmount(ov) {
			delete(s.CostOverrides, key)
		}
	}

	s.MarginPct = newMarginPct
	s.DiscountPct = newDiscountPct
}
