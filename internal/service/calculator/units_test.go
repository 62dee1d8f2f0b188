package calculator

import (
	"math"
	"testing"

	"economat/internal/model"
)

func TestUnitDivisor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  float64
	}{
		{"g", 1000},
		{" G ", 1000},
		{"gramme", 1000},
		{"Grammes", 1000},
		{"grams", 1000},
		{"ml", 1000},
		{"ML", 1000},
		{"mL ", 1000},
		{"kg", 1},
		{"L", 1},
		{"pièce", 1},
		{"gr", 1},
		{"", 1},
	}
	for _, tt := range tests {
		if got := UnitDivisor(tt.label); got != tt.want {
			t.Errorf("UnitDivisor(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestNormalizeRecipeLinesDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []model.RecipeLine{
		{ProductCode: "X", IngredientCode: "P1", Quantity: 200, Unit: " G "},
		{ProductCode: "X", IngredientCode: "P2", Quantity: 2, Unit: "Pièce"},
		{ProductCode: "X", IngredientCode: "P3", Quantity: math.NaN(), Unit: "ml"},
		{ProductCode: "X", IngredientCode: "P4", Quantity: 250, Unit: "Milli  Litre"},
	}
	out := NormalizeRecipeLines(in)

	if in[0].Quantity != 200 || in[0].Unit != " G " {
		t.Fatalf("input mutated: %+v", in[0])
	}
	if !floatEquals(out[0].Quantity, 0.2) || out[0].Unit != "g" {
		t.Fatalf("grams not normalized: %+v", out[0])
	}
	if out[1].Quantity != 2 || out[1].Unit != "pièce" {
		t.Fatalf("count unit changed: %+v", out[1])
	}
	if out[2].Quantity != 0 {
		t.Fatalf("NaN quantity should coerce to 0, got %v", out[2].Quantity)
	}
	if out[3].Quantity != 250 || out[3].Unit != "milli litre" {
		t.Fatalf("unknown unit should pass through: %+v", out[3])
	}
}
