// Package catalog provides the immutable price book for container modules.
// The catalog is injected into the engines at construction so alternate price
// books can be loaded in tests; nothing in this package is a mutable global.
package catalog

// Size is a container length in feet.
type Size int

// Supported container sizes, largest first.
const (
	Size20 Size = 20
	Size16 Size = 16
	Size12 Size = 12
	Size10 Size = 10
	Size8  Size = 8
	Size5  Size = 5
)

// Finish is the construction finish of a module.
type Finish string

const (
	FinishFoldable    Finish = "Plegable"
	FinishDemountable Finish = "Desmontable"
	FinishOffice      Finish = "Oficina/Recepcion"
)

// Sizes lists the valid sizes in catalog order.
func Sizes() []Size {
	return []Size{Size20, Size16, Size12, Size10, Size8, Size5}
}

// ValidSize reports whether s is a catalog size.
func ValidSize(s Size) bool {
	switch s {
	case Size20, Size16, Size12, Size10, Size8, Size5:
		return true
	}
	return false
}

// PriceEntry carries the per-finish list price for one (size, model).
type PriceEntry struct {
	ByFinish map[Finish]float64
	Note     string
}

// ModuleSpec describes door count and per-minibodega area for one
// (size, finish, model).
type ModuleSpec struct {
	Doors       int
	AreaPerUnit float64
}

// ModelKey indexes the price table.
type ModelKey struct {
	Size  Size
	Model string
}

// SpecKey indexes module specs and packing capacities.
type SpecKey struct {
	Size   Size
	Finish Finish
	Model  string
}

// Catalog is the full injected price book.
type Catalog struct {
	prices       map[ModelKey]PriceEntry
	specs        map[SpecKey]ModuleSpec
	capacity     map[SpecKey]int
	rentableArea map[Size]float64
	roofAddonUSD float64
}

// New builds a catalog from the supplied tables. The maps are used as given;
// callers must not mutate them afterwards.
func New(prices map[ModelKey]PriceEntry, specs map[SpecKey]ModuleSpec, capacity map[SpecKey]int, rentable map[Size]float64, roofAddonUSD float64) *Catalog {
	return &Catalog{
		prices:       prices,
		specs:        specs,
		capacity:     capacity,
		rentableArea: rentable,
		roofAddonUSD: roofAddonUSD,
	}
}

// BasePrice returns the list price for (size, model, finish). Missing entries
// report ok=false with a zero price; the engines treat that as cost 0 so an
// incomplete price book never aborts a quote.
func (c *Catalog) BasePrice(size Size, model string, finish Finish) (float64, bool) {
	entry, ok := c.prices[ModelKey{Size: size, Model: model}]
	if !ok {
		return 0, false
	}
	price, ok := entry.ByFinish[finish]
	return price, ok
}

// Note returns the catalog note for (size, model), if any.
func (c *Catalog) Note(size Size, model string) string {
	return c.prices[ModelKey{Size: size, Model: model}].Note
}

// Models lists the models available for a size, in S1..Sn order.
func (c *Catalog) Models(size Size) []string {
	var out []string
	for _, m := range modelOrder {
		if _, ok := c.prices[ModelKey{Size: size, Model: m}]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Finishes lists the finishes priced for (size, model).
func (c *Catalog) Finishes(size Size, model string) []Finish {
	entry, ok := c.prices[ModelKey{Size: size, Model: model}]
	if !ok {
		return nil
	}
	var out []Finish
	for _, f := range []Finish{FinishFoldable, FinishDemountable, FinishOffice} {
		if _, ok := entry.ByFinish[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Spec returns door count and area for (size, finish, model); the zero spec
// when the combination is not in the book.
func (c *Catalog) Spec(size Size, finish Finish, model string) ModuleSpec {
	return c.specs[SpecKey{Size: size, Finish: finish, Model: model}]
}

// Capacity returns the packing capacity (units per 40ft-equivalent container)
// for (size, finish, model), 0 when unknown.
func (c *Catalog) Capacity(size Size, finish Finish, model string) int {
	return c.capacity[SpecKey{Size: size, Finish: finish, Model: model}]
}

// RentableArea returns the rentable m² per unit for (size, finish). Office
// modules contribute no rentable area.
func (c *Catalog) RentableArea(size Size, finish Finish) float64 {
	if finish == FinishOffice {
		return 0
	}
	return c.rentableArea[size]
}

// RoofAddonUSD is the per-unit surcharge for the condensation roof add-on.
func (c *Catalog) RoofAddonUSD() float64 {
	return c.roofAddonUSD
}

var modelOrder = []string{"S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8", "S9", "S10", "S11"}
