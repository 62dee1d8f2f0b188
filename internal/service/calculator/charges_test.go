package calculator

import (
	"math"
	"testing"

	"economat/internal/model"
)

func TestAllocateCharges_GlobalProportionalToRevenue(t *testing.T) {
	t.Parallel()

	sales := []model.SaleLine{
		{ProductCode: "A", Family: "Plats", QuantitySold: 10, MenuPrice: 10},
		{ProductCode: "B", Family: "Plats", QuantitySold: 20, MenuPrice: 15},
	}
	charges := []model.FixedChargeRow{{AllocationType: "global", MonthlyAmount: 40}}

	res := AllocateCharges(charges, sales)
	if res.TotalRevenue != 400 || res.GlobalTotal != 40 {
		t.Fatalf("totals=%v/%v, want 400/40", res.TotalRevenue, res.GlobalTotal)
	}
	if !floatEquals(res.Lines[0].GlobalChargeLine, 10) || !floatEquals(res.Lines[1].GlobalChargeLine, 30) {
		t.Fatalf("global lines=%v/%v, want 10/30", res.Lines[0].GlobalChargeLine, res.Lines[1].GlobalChargeLine)
	}
	if !floatEquals(res.Lines[0].GlobalChargePerUnit, 1) || !floatEquals(res.Lines[1].GlobalChargePerUnit, 1.5) {
		t.Fatalf("global per unit=%v/%v, want 1/1.5", res.Lines[0].GlobalChargePerUnit, res.Lines[1].GlobalChargePerUnit)
	}
}

func TestAllocateCharges_SumsReproduceTotals(t *testing.T) {
	t.Parallel()

	sales := []model.SaleLine{
		{ProductCode: "A", Family: "Plats", QuantitySold: 7, MenuPrice: 13.3},
		{ProductCode: "B", Family: "Plats", QuantitySold: 3, MenuPrice: 21.9},
		{ProductCode: "C", Family: "Boissons", QuantitySold: 41, MenuPrice: 2.2},
		{ProductCode: "D", Family: "Desserts", QuantitySold: 9, MenuPrice: 6.5},
		{ProductCode: "E", Family: "Boissons", QuantitySold: 0, MenuPrice: 3},
	}
	charges := []model.FixedChargeRow{
		{AllocationType: "Global", MonthlyAmount: 1234.56},
		{AllocationType: "GLOBAL (loyer)", MonthlyAmount: 100},
		{AllocationType: "spécifique", Family: "Plats", MonthlyAmount: 300},
		{AllocationType: "specific", Family: "Boissons", MonthlyAmount: 80},
		{AllocationType: "specific", Family: "Boissons", MonthlyAmount: 20},
	}

	res := AllocateCharges(charges, sales)
	if !floatEquals(res.GlobalTotal, 1334.56) {
		t.Fatalf("global total=%v", res.GlobalTotal)
	}

	globalSum := 0.0
	specific := make(map[string]float64)
	for _, l := range res.Lines {
		globalSum += l.GlobalChargeLine
		specific[l.Family] += l.SpecificChargeLine
	}
	if math.Abs(globalSum-res.GlobalTotal) > 1e-6*res.GlobalTotal {
		t.Fatalf("sum of global lines=%v, want %v", globalSum, res.GlobalTotal)
	}
	for family, amount := range res.SpecificByFamily {
		if res.FamilyRevenue[family] <= 0 {
			continue
		}
		if math.Abs(specific[family]-amount) > 1e-6*amount {
			t.Fatalf("family %s allocated=%v, want %v", family, specific[family], amount)
		}
	}
	if res.SpecificByFamily["Boissons"] != 100 {
		t.Fatalf("specific Boissons=%v, want 100", res.SpecificByFamily["Boissons"])
	}
	// 无专项费用的产品族
	if res.Lines[3].SpecificChargeLine != 0 || res.Lines[3].SpecificChargePerUnit != 0 {
		t.Fatalf("Desserts should get no specific charge: %+v", res.Lines[3])
	}
	// 数量为 0 的行
	if res.Lines[4].GlobalChargePerUnit != 0 || res.Lines[4].SpecificChargePerUnit != 0 {
		t.Fatalf("zero quantity line should have 0 per-unit charges: %+v", res.Lines[4])
	}
}

func TestAllocateCharges_ZeroRevenue(t *testing.T) {
	t.Parallel()

	sales := []model.SaleLine{{ProductCode: "A", Family: "Plats", QuantitySold: 5, MenuPrice: 0}}
	charges := []model.FixedChargeRow{
		{AllocationType: "global", MonthlyAmount: 100},
		{AllocationType: "specific", Family: "Plats", MonthlyAmount: 50},
	}

	res := AllocateCharges(charges, sales)
	l := res.Lines[0]
	if l.GlobalChargeLine != 0 || l.GlobalChargePerUnit != 0 || l.SpecificChargeLine != 0 || l.SpecificChargePerUnit != 0 {
		t.Fatalf("zero revenue should allocate nothing: %+v", l)
	}
}

func TestAllocateCharges_SpecificWithoutFamilyIsUnallocated(t *testing.T) {
	t.Parallel()

	sales := []model.SaleLine{{ProductCode: "A", Family: "", QuantitySold: 1, MenuPrice: 10}}
	charges := []model.FixedChargeRow{{AllocationType: "specific", Family: "  ", MonthlyAmount: 30}}

	res := AllocateCharges(charges, sales)
	if res.UnallocatedSpecific != 30 {
		t.Fatalf("unallocated=%v, want 30", res.UnallocatedSpecific)
	}
	if res.Lines[0].SpecificChargeLine != 0 {
		t.Fatalf("line without family got specific charge %v", res.Lines[0].SpecificChargeLine)
	}
}

func TestAllocateChargesWithRevenue_ExternalTotal(t *testing.T) {
	t.Parallel()

	sales := []model.SaleLine{{ProductCode: "A", Family: "Plats", QuantitySold: 4, MenuPrice: 25}}
	charges := []model.FixedChargeRow{{AllocationType: "global", MonthlyAmount: 200}}

	res := AllocateChargesWithRevenue(charges, sales, 1000)
	if !floatEquals(res.Lines[0].GlobalChargeLine, 20) {
		t.Fatalf("global line=%v, want 20", res.Lines[0].GlobalChargeLine)
	}
	if !floatEquals(res.Lines[0].GlobalChargePerUnit, 5) {
		t.Fatalf("global per unit=%v, want 5", res.Lines[0].GlobalChargePerUnit)
	}

	res = AllocateChargesWithRevenue(charges, sales, 0)
	if res.Lines[0].GlobalChargeLine != 0 {
		t.Fatalf("zero external total should allocate nothing, got %v", res.Lines[0].GlobalChargeLine)
	}
}

func TestAllocateCharges_Empty(t *testing.T) {
	t.Parallel()

	res := AllocateCharges(nil, nil)
	if len(res.Lines) != 0 || res.GlobalTotal != 0 || res.SpecificByFamily == nil {
		t.Fatalf("unexpected empty result: %+v", res)
	}
}
