package catalog

// Default returns the current S-Containr price book (USD list prices, door
// and m² specs, and packing capacities per 40ft-equivalent container).
func Default() *Catalog {
	prices := map[ModelKey]PriceEntry{
		{Size20, "S1"}:  {ByFinish: map[Finish]float64{FinishFoldable: 1849, FinishDemountable: 1450}, Note: "1 puerta frontal"},
		{Size20, "S2"}:  {ByFinish: map[Finish]float64{FinishFoldable: 2049, FinishDemountable: 1750}, Note: "2 puertas frontales"},
		{Size20, "S3"}:  {ByFinish: map[Finish]float64{FinishFoldable: 1899, FinishDemountable: 1490}, Note: "1 puerta lateral"},
		{Size20, "S4"}:  {ByFinish: map[Finish]float64{FinishFoldable: 2099, FinishDemountable: 1790}, Note: "2 puertas laterales"},
		{Size20, "S5"}:  {ByFinish: map[Finish]float64{FinishFoldable: 2249, FinishDemountable: 1890}, Note: "3 puertas laterales"},
		{Size20, "S6"}:  {ByFinish: map[Finish]float64{FinishFoldable: 2349, FinishDemountable: 2090}, Note: "4 puertas laterales"},
		{Size20, "S7"}:  {ByFinish: map[Finish]float64{FinishFoldable: 2699, FinishDemountable: 2390}, Note: "4 puertas (2 por lateral)"},
		{Size20, "S8"}:  {ByFinish: map[Finish]float64{FinishFoldable: 2899, FinishDemountable: 2590}, Note: "8 puertas (4 por lateral)"},
		{Size20, "S9"}:  {ByFinish: map[Finish]float64{FinishOffice: 3200}, Note: "Oficina/Recepcion con bano"},
		{Size20, "S10"}: {ByFinish: map[Finish]float64{FinishOffice: 3100}, Note: "Oficina/Coworking"},
		{Size20, "S11"}: {ByFinish: map[Finish]float64{FinishOffice: 3150}, Note: "Módulo 4 Baños"},

		{Size16, "S1"}: {ByFinish: map[Finish]float64{FinishFoldable: 1749, FinishDemountable: 1290}, Note: "1 puerta frontal"},
		{Size16, "S2"}: {ByFinish: map[Finish]float64{FinishFoldable: 1899, FinishDemountable: 1600}, Note: "2 puertas frontales"},
		{Size16, "S3"}: {ByFinish: map[Finish]float64{FinishFoldable: 1799, FinishDemountable: 1450}, Note: "1 puerta lateral"},
		{Size16, "S4"}: {ByFinish: map[Finish]float64{FinishFoldable: 1999, FinishDemountable: 1650}, Note: "2 puertas laterales"},
		{Size16, "S5"}: {ByFinish: map[Finish]float64{FinishFoldable: 2149, FinishDemountable: 1750}, Note: "3 puertas laterales"},

		{Size12, "S1"}: {ByFinish: map[Finish]float64{FinishFoldable: 1549, FinishDemountable: 1150}, Note: "1 puerta frontal"},
		{Size12, "S2"}: {ByFinish: map[Finish]float64{FinishFoldable: 1799, FinishDemountable: 1400}, Note: "2 puertas frontales"},

		{Size10, "S1"}: {ByFinish: map[Finish]float64{FinishFoldable: 1349, FinishDemountable: 890}, Note: "1 puerta frontal"},
		{Size10, "S2"}: {ByFinish: map[Finish]float64{FinishFoldable: 1599, FinishDemountable: 1140}, Note: "2 puertas frontales"},

		{Size8, "S1"}: {ByFinish: map[Finish]float64{FinishFoldable: 1299, FinishDemountable: 750}, Note: "1 puerta frontal"},
		{Size5, "S1"}: {ByFinish: map[Finish]float64{FinishFoldable: 1249, FinishDemountable: 690}, Note: "1 puerta frontal"},
	}

	specs := map[SpecKey]ModuleSpec{}
	// Foldable and demountable share the same door/m² layout per size.
	for _, finish := range []Finish{FinishFoldable, FinishDemountable} {
		add := func(size Size, model string, doors int, area float64) {
			specs[SpecKey{size, finish, model}] = ModuleSpec{Doors: doors, AreaPerUnit: area}
		}
		add(Size20, "S1", 1, 14)
		add(Size20, "S2", 2, 7)
		add(Size20, "S3", 1, 14)
		add(Size20, "S4", 2, 7)
		add(Size20, "S5", 3, 4.7)
		add(Size20, "S6", 4, 3.5)
		add(Size20, "S7", 4, 3.5)
		add(Size20, "S8", 8, 1.75)
		add(Size16, "S1", 1, 12)
		add(Size16, "S2", 2, 6)
		add(Size16, "S3", 1, 12)
		add(Size16, "S4", 2, 6)
		add(Size16, "S5", 3, 4)
		add(Size12, "S1", 1, 9)
		add(Size12, "S2", 2, 4.5)
		add(Size10, "S1", 1, 7)
		add(Size10, "S2", 2, 3.5)
		add(Size8, "S1", 1, 5.5)
		add(Size5, "S1", 1, 4)
	}

	capacity := map[SpecKey]int{
		{Size20, FinishFoldable, "S1"}: 14, {Size20, FinishFoldable, "S2"}: 14,
		{Size20, FinishFoldable, "S3"}: 14, {Size20, FinishFoldable, "S4"}: 14,
		{Size20, FinishFoldable, "S5"}: 13, {Size20, FinishFoldable, "S6"}: 13,
		{Size20, FinishFoldable, "S7"}: 12, {Size20, FinishFoldable, "S8"}: 10,
		{Size20, FinishDemountable, "S1"}: 13, {Size20, FinishDemountable, "S2"}: 12,
		{Size20, FinishDemountable, "S3"}: 13, {Size20, FinishDemountable, "S4"}: 12,
		{Size20, FinishDemountable, "S5"}: 11, {Size20, FinishDemountable, "S6"}: 11,
		{Size20, FinishDemountable, "S7"}: 13, {Size20, FinishDemountable, "S8"}: 12,
		{Size20, FinishOffice, "S9"}: 10, {Size20, FinishOffice, "S10"}: 10,
		{Size20, FinishOffice, "S11"}: 8,

		{Size16, FinishFoldable, "S1"}: 14, {Size16, FinishFoldable, "S2"}: 14,
		{Size16, FinishFoldable, "S3"}: 14, {Size16, FinishFoldable, "S4"}: 14,
		{Size16, FinishFoldable, "S5"}: 13,
		{Size16, FinishDemountable, "S1"}: 13, {Size16, FinishDemountable, "S2"}: 12,
		{Size16, FinishDemountable, "S3"}: 13, {Size16, FinishDemountable, "S4"}: 12,
		{Size16, FinishDemountable, "S5"}: 11,

		{Size12, FinishFoldable, "S1"}: 18, {Size12, FinishFoldable, "S2"}: 16,
		{Size12, FinishDemountable, "S1"}: 18, {Size12, FinishDemountable, "S2"}: 16,

		{Size10, FinishFoldable, "S1"}: 18, {Size10, FinishFoldable, "S2"}: 18,
		{Size10, FinishDemountable, "S1"}: 22, {Size10, FinishDemountable, "S2"}: 20,

		{Size8, FinishFoldable, "S1"}: 24, {Size8, FinishDemountable, "S1"}: 30,
		{Size5, FinishFoldable, "S1"}: 22, {Size5, FinishDemountable, "S1"}: 30,
	}

	rentable := map[Size]float64{
		Size20: 14,
		Size16: 12,
		Size12: 9,
		Size10: 7,
		Size8:  5.5,
		Size5:  4,
	}

	return New(prices, specs, capacity, rentable, 60)
}
