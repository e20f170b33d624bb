// internal/session/parser.go
package session

import (
	"regexp"
	"strconv"
	"strings"

	"nutrition-tracker/internal/models"
)

// Macro identifies one of the three tracked macro-nutrients.
type Macro string

const (
	MacroCarbs   Macro = "carbs"
	MacroProtein Macro = "protein"
	MacroFat     Macro = "fat"
)

// Command is the classification of one line of raw input.
type Command interface {
	isCommand()
}

// DirectMacro is a literal gram adjustment to exactly one macro, bypassing
// food lookup. Amount may be negative for corrective entries.
type DirectMacro struct {
	Macro  Macro
	Amount float64
}

// FreeTextQuery is any input the parser does not recognize; it is delegated
// to the food resolver verbatim.
type FreeTextQuery struct {
	Text string
}

func (DirectMacro) isCommand()   {}
func (FreeTextQuery) isCommand() {}

// A direct macro command is the whole trimmed input: optional sign, integer
// or decimal number, optional "g", one macro-name synonym, optional plural.
var directMacroRe = regexp.MustCompile(`(?i)^([+-]?\d+(?:\.\d+)?)\s*g?\s*(carb|carbon|carbohydrate|protein|fat)s?$`)

// Parse classifies raw input as a direct macro adjustment or a free-text
// food query. It is a pure, total function: anything that does not match the
// direct form is a FreeTextQuery.
func Parse(text string) Command {
	trimmed := strings.TrimSpace(text)

	m := directMacroRe.FindStringSubmatch(trimmed)
	if m == nil {
		return FreeTextQuery{Text: trimmed}
	}

	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return FreeTextQuery{Text: trimmed}
	}

	var macro Macro
	switch strings.ToLower(m[2]) {
	case "carb", "carbon", "carbohydrate":
		macro = MacroCarbs
	case "protein":
		macro = MacroProtein
	default:
		macro = MacroFat
	}

	return DirectMacro{Macro: macro, Amount: amount}
}

// Record builds the single-macro contribution for a direct command. The two
// other macro fields stay zero.
func (d DirectMacro) Record() models.Record {
	r := models.Record{Quantity: d.Amount, Unit: "g"}
	switch d.Macro {
	case MacroCarbs:
		r.FoodName = "Carbohydrates"
		r.Carbs = d.Amount
	case MacroProtein:
		r.FoodName = "Protein"
		r.Protein = d.Amount
	case MacroFat:
		r.FoodName = "Fat"
		r.Fat = d.Amount
	}
	return r
}
