// internal/resolver/units.go
package resolver

import (
	"regexp"
	"strconv"
	"strings"
)

// gramsPerUnit covers fixed-factor units. Descriptive sizes (small, medium,
// large) depend on the food and are handled separately.
var gramsPerUnit = map[string]float64{
	"g": 1, "gram": 1, "grams": 1,
	"kg": 1000,
	"oz": 28.35, "ounce": 28.35, "ounces": 28.35,
	"lb": 453.59, "lbs": 453.59, "pound": 453.59, "pounds": 453.59,
	"cup": 240, "cups": 240,
	"ml": 1, "milliliter": 1, "milliliters": 1,
	"tbsp": 15, "tablespoon": 15, "tablespoons": 15,
	"tsp": 5, "teaspoon": 5, "teaspoons": 5,
	"piece": 150, "pieces": 150, "item": 150, "items": 150, "unit": 150, "units": 150,
}

// Typical per-item weights for descriptive sizes, food-aware where USDA
// publishes a standard size.
var descriptiveGrams = map[string]map[string]float64{
	"small":  {"egg": 50, "": 100},
	"medium": {"egg": 60, "apple": 182, "banana": 118, "orange": 131, "": 150},
	"large":  {"egg": 70, "apple": 223, "banana": 136, "": 200},
}

var descriptiveAliases = map[string]string{
	"small": "small", "sm": "small",
	"medium": "medium", "med": "medium", "md": "medium",
	"large": "large", "lg": "large", "big": "large",
}

// convertToGrams converts a quantity in the given unit to grams. Descriptive
// sizes consult the food description; unknown units are treated as grams.
func convertToGrams(quantity float64, unit, foodDesc string) float64 {
	unit = strings.ToLower(unit)
	if unit == "" {
		return quantity
	}

	if size, ok := descriptiveAliases[unit]; ok {
		weights := descriptiveGrams[size]
		desc := strings.ToLower(foodDesc)
		for food, grams := range weights {
			if food != "" && strings.Contains(desc, food) {
				return quantity * grams
			}
		}
		return quantity * weights[""]
	}

	if factor, ok := gramsPerUnit[unit]; ok {
		return quantity * factor
	}
	return quantity
}

// A query may lead with an amount and unit, e.g. "2 cups rice" or
// "150g chicken breast". Anything else is looked up as 100 g.
var quantityRe = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*([a-z]+)?\s+(.+)$`)

const defaultGrams = 100

// parseQuantity splits an optional leading quantity/unit prefix off the
// query, returning the amount, unit, and remaining food text. Without a
// recognized prefix it defaults to 100 g of the whole query.
func parseQuantity(query string) (quantity float64, unit, food string) {
	m := quantityRe.FindStringSubmatch(strings.TrimSpace(query))
	if m == nil {
		return defaultGrams, "g", strings.TrimSpace(query)
	}

	unit = strings.ToLower(m[2])
	_, fixed := gramsPerUnit[unit]
	_, descriptive := descriptiveAliases[unit]
	if unit != "" && !fixed && !descriptive {
		// "2 roast chickens": the second word is part of the food name.
		return defaultGrams, "g", strings.TrimSpace(query)
	}

	quantity, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return defaultGrams, "g", strings.TrimSpace(query)
	}
	if unit == "" {
		unit = "g"
	}
	return quantity, unit, strings.TrimSpace(m[3])
}
