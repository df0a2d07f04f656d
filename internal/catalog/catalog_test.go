package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPriceBook(t *testing.T) {
	cat := Default()

	price, ok := cat.BasePrice(Size20, "S1", FinishFoldable)
	require.True(t, ok)
	assert.Equal(t, 1849.0, price)

	price, ok = cat.BasePrice(Size20, "S9", FinishOffice)
	require.True(t, ok)
	assert.Equal(t, 3200.0, price)

	_, ok = cat.BasePrice(Size20, "S9", FinishFoldable)
	assert.False(t, ok, "office-only models are not priced as foldable")

	_, ok = cat.BasePrice(Size12, "S5", FinishFoldable)
	assert.False(t, ok)
}

func TestModelsAndFinishes(t *testing.T) {
	cat := Default()

	models := cat.Models(Size20)
	assert.Equal(t, []string{"S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8", "S9", "S10", "S11"}, models)

	assert.Equal(t, []Finish{FinishFoldable, FinishDemountable}, cat.Finishes(Size20, "S1"))
	assert.Equal(t, []Finish{FinishOffice}, cat.Finishes(Size20, "S10"))
	assert.Nil(t, cat.Finishes(Size5, "S9"))
}

func TestSpecAndCapacity(t *testing.T) {
	cat := Default()

	spec := cat.Spec(Size20, FinishFoldable, "S8")
	assert.Equal(t, 8, spec.Doors)
	assert.Equal(t, 1.75, spec.AreaPerUnit)

	assert.Equal(t, 14, cat.Capacity(Size20, FinishFoldable, "S1"))
	assert.Equal(t, 13, cat.Capacity(Size20, FinishDemountable, "S1"))
	assert.Equal(t, 0, cat.Capacity(Size5, FinishOffice, "S1"))
}

func TestRentableArea(t *testing.T) {
	cat := Default()

	assert.Equal(t, 14.0, cat.RentableArea(Size20, FinishFoldable))
	assert.Equal(t, 0.0, cat.RentableArea(Size20, FinishOffice), "office modules rent no storage area")
	assert.Equal(t, 60.0, cat.RoofAddonUSD())
}

func TestValidSize(t *testing.T) {
	for _, s := range Sizes() {
		assert.True(t, ValidSize(s))
	}
	assert.False(t, ValidSize(Size(40)))
	assert.False(t, ValidSize(Size(0)))
}
