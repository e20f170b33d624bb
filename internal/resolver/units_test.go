package resolver

import (
	"math"
	"testing"
)

func TestConvertToGrams(t *testing.T) {
	tests := []struct {
		quantity float64
		unit     string
		food     string
		want     float64
	}{
		{2, "cups", "rice", 480},
		{100, "g", "chicken", 100},
		{1, "kg", "potatoes", 1000},
		{2, "oz", "cheese", 56.7},
		{1, "lb", "beef", 453.59},
		{3, "tbsp", "olive oil", 45},
		{2, "tsp", "sugar", 10},
		{1, "medium", "apple", 182},
		{1, "medium", "banana", 118},
		{3, "medium", "egg", 180},
		{2, "small", "egg", 100},
		{1, "large", "sweet potato", 200},
		{1, "lg", "apple", 223},
		{2, "pieces", "dumpling", 300},
		{2, "zorb", "mystery", 2}, // unknown unit treated as grams
		{50, "", "", 50},
	}

	for _, tt := range tests {
		got := convertToGrams(tt.quantity, tt.unit, tt.food)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("convertToGrams(%v, %q, %q) = %v, want %v",
				tt.quantity, tt.unit, tt.food, got, tt.want)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		query    string
		quantity float64
		unit     string
		food     string
	}{
		{"2 cups rice", 2, "cups", "rice"},
		{"150g chicken breast", 150, "g", "chicken breast"},
		{"1.5 oz almonds", 1.5, "oz", "almonds"},
		{"1 medium apple", 1, "medium", "apple"},
		{"chicken breast", 100, "g", "chicken breast"},
		// A number followed by a non-unit word is part of the food name.
		{"2 roast chickens", 100, "g", "2 roast chickens"},
	}

	for _, tt := range tests {
		quantity, unit, food := parseQuantity(tt.query)
		if quantity != tt.quantity || unit != tt.unit || food != tt.food {
			t.Errorf("parseQuantity(%q) = (%v, %q, %q), want (%v, %q, %q)",
				tt.query, quantity, unit, food, tt.quantity, tt.unit, tt.food)
		}
	}
}
