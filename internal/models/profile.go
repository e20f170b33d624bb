// internal/models/profile.go
package models

// Attribute encodings, carried over from the data-collection form.
const (
	GenderMale   = 0
	GenderFemale = 1

	ActivitySedentary = 0
	ActivityLight     = 1
	ActivityModerate  = 2
	ActivityHigh      = 3

	DietBalanced    = 0
	DietLowFat      = 1
	DietLowCarb     = 2
	DietHighProtein = 3

	PreferenceOmnivore   = 0
	PreferenceVegetarian = 1
)

// UserAttributes is a user's personal attribute set. Every field is optional
// until populated; nil means the user has not filled it in yet.
type UserAttributes struct {
	Gender     *int     `json:"gender,omitempty"`
	Age        *int     `json:"age,omitempty"`
	Height     *float64 `json:"height,omitempty"` // cm
	Weight     *float64 `json:"weight,omitempty"` // kg
	Activity   *int     `json:"activity,omitempty"`
	Diet       *int     `json:"diet,omitempty"`
	Preference *int     `json:"preference,omitempty"`
}

// Missing returns the display names of unset attributes, in form order.
func (a UserAttributes) Missing() []string {
	var missing []string
	if a.Gender == nil {
		missing = append(missing, "Gender")
	}
	if a.Age == nil {
		missing = append(missing, "Age")
	}
	if a.Height == nil {
		missing = append(missing, "Height")
	}
	if a.Weight == nil {
		missing = append(missing, "Weight")
	}
	if a.Activity == nil {
		missing = append(missing, "Activity Level")
	}
	if a.Diet == nil {
		missing = append(missing, "Diet Plan")
	}
	if a.Preference == nil {
		missing = append(missing, "Food Preference")
	}
	return missing
}

// Complete reports whether every attribute has been populated.
func (a UserAttributes) Complete() bool {
	return len(a.Missing()) == 0
}

// Profile is a named, persisted snapshot of a user's attributes.
type Profile struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Attributes UserAttributes `json:"data"`
}

// Ptr gives a pointer to v, for populating optional attribute fields.
func Ptr[T any](v T) *T {
	return &v
}
