package project

import (
	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/money"
)

// BaseUnitCost is the supplier cost of one unit on this line: the catalog
// list price plus the condensation-roof add-on, or the line's own cost
// override when one is set. Unknown catalog combinations cost 0.
func (l OrderLine) BaseUnitCost(c *catalog.Catalog) float64 {
	if l.UnitCostOverride != nil && money.IsValidAmount(*l.UnitCostOverride) {
		return *l.UnitCostOverride
	}
	price, _ := c.BasePrice(l.Size, l.Model, l.Finish)
	if l.CondensationRoof {
		price += c.RoofAddonUSD()
	}
	return price
}
