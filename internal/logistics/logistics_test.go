package logistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/project"
)

func line(size catalog.Size, model string, finish catalog.Finish, qty int) project.OrderLine {
	return project.OrderLine{ID: "l", Size: size, Model: model, Finish: finish, Quantity: qty}
}

func TestAutoContainersOptimizedMix(t *testing.T) {
	cat := catalog.Default()

	// 14 foldable S1 fit exactly one container.
	n := AutoContainers([]project.OrderLine{
		line(catalog.Size20, "S1", catalog.FinishFoldable, 14),
	}, cat, 14, true)
	assert.Equal(t, 1, n)

	// Fractional slots across models are summed before the ceiling.
	n = AutoContainers([]project.OrderLine{
		line(catalog.Size20, "S1", catalog.FinishFoldable, 7),  // 0.5
		line(catalog.Size20, "S8", catalog.FinishFoldable, 5),  // 0.5
		line(catalog.Size10, "S1", catalog.FinishFoldable, 18), // 1.0
	}, cat, 14, true)
	assert.Equal(t, 2, n)

	// Unknown combinations fall back to modulesPerContainer.
	n = AutoContainers([]project.OrderLine{
		line(catalog.Size5, "S1", catalog.FinishOffice, 10),
	}, cat, 10, true)
	assert.Equal(t, 1, n)
}

func TestAutoContainersFlatCapacity(t *testing.T) {
	cat := catalog.Default()
	lines := []project.OrderLine{
		line(catalog.Size20, "S1", catalog.FinishFoldable, 10),
		line(catalog.Size20, "S8", catalog.FinishFoldable, 5),
	}
	assert.Equal(t, 2, AutoContainers(lines, cat, 14, false))
	assert.Equal(t, 0, AutoContainers(nil, cat, 14, false))
}

func TestComputeBreakdown(t *testing.T) {
	cat := catalog.Default()
	s := project.DefaultState()
	s.ExchangeRate = 17
	s.Lines = []project.OrderLine{line(catalog.Size20, "S1", catalog.FinishFoldable, 14)}

	b := Compute(&s, cat)

	require.Equal(t, 1, b.ContainersAuto)
	assert.Equal(t, 1, b.Containers40)
	assert.Equal(t, 0, b.FullTrucks)
	assert.Equal(t, 1, b.SingleTrucks)

	assert.InDelta(t, 25886, b.ProductsUSD, 1e-9)
	assert.InDelta(t, 15531.6, b.InvoiceValueUSD, 1e-9)
	assert.InDelta(t, 2500, b.SeaFreightUSD, 1e-9)
	assert.InDelta(t, 32500.0/17, b.LandFreightUSD, 1e-9)
	assert.InDelta(t, 90.16, b.InsuranceUSD, 1e-9)
	assert.InDelta(t, 2718.26, b.ImportDutyUSD, 1e-9)
	assert.InDelta(t, 144.97, b.CustomsProcessingUSD, 1e-9)
	assert.InDelta(t, 750, b.BrokerUSD, 1e-9)
	assert.InDelta(t, 1200, b.HandlingUSD, 1e-9)
	assert.InDelta(t, 724.81, b.AdvisoryUSD, 1e-9)

	wantShared := 2500 + 32500.0/17 + 90.16 + 2718.26 + 144.97 + 750 + 1200 + 724.81
	assert.InDelta(t, wantShared, b.SharedTotalUSD, 1e-9)
	assert.InDelta(t, 35925.96, b.LandedBaseUSD, 1e-9)

	// Creditable VAT at the import rate (falls back to the project rate).
	assert.InDelta(t, 49291.19, b.ImportTaxMXN, 1e-9)
	assert.InDelta(t, 1971.48, b.AdvisorTaxMXN, 1e-9)
	assert.InDelta(t, 51262.67, b.CreditableTaxMXN, 1e-9)
}

func TestComputeConfirmedFreight(t *testing.T) {
	cat := catalog.Default()
	s := project.DefaultState()
	s.ExchangeRate = 17
	s.Lines = []project.OrderLine{line(catalog.Size20, "S1", catalog.FinishFoldable, 14)}
	s.FreightConfirmed = true
	s.ConfirmedContainers = 5

	b := Compute(&s, cat)
	assert.Equal(t, 1, b.ContainersAuto)
	assert.Equal(t, 5, b.Containers40)
	assert.Equal(t, 2, b.FullTrucks)
	assert.Equal(t, 1, b.SingleTrucks)

	s.ConfirmedContainers = -3
	b = Compute(&s, cat)
	assert.Equal(t, 0, b.Containers40)
}

func TestComputeContainers20(t *testing.T) {
	cat := catalog.Default()
	s := project.DefaultState()
	s.ExchangeRate = 20
	s.Lines = []project.OrderLine{line(catalog.Size20, "S1", catalog.FinishFoldable, 14)}
	s.Containers20 = 2
	s.SeaFreight20USD = 1500
	s.LandFreight20MXN = 20000

	// Ignored until the flag is set.
	b := Compute(&s, cat)
	assert.Equal(t, 0, b.Containers20)

	s.UseContainers20 = true
	b = Compute(&s, cat)
	assert.Equal(t, 2, b.Containers20)
	assert.Equal(t, 3, b.Containers)
	assert.InDelta(t, 2500+2*1500, b.SeaFreightUSD, 1e-9)
	assert.InDelta(t, (32500+2*20000)/20.0, b.LandFreightUSD, 1e-9)
}

func TestComputeZeroExchangeRate(t *testing.T) {
	cat := catalog.Default()
	s := project.DefaultState()
	s.Lines = []project.OrderLine{line(catalog.Size20, "S1", catalog.FinishFoldable, 1)}

	// With no rate configured, land freight divides by 1 instead of blowing up.
	b := Compute(&s, cat)
	assert.InDelta(t, 32500, b.LandFreightUSD, 1e-9)
}
