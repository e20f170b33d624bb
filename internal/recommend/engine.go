// internal/recommend/engine.go
// Package recommend calculates personalized nutrition recommendations:
// calorie and macro targets from user attributes, and supplement food
// combinations that cover whatever the day's intake still lacks.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"nutrition-tracker/internal/models"
)

// Recommender answers a recommendation request from an attribute set and the
// day's running totals.
type Recommender interface {
	Recommend(ctx context.Context, attrs models.UserAttributes, totals models.Totals) (*Recommendation, error)
}

// Recommendation is the full response: daily targets, remaining needs, and
// ranked supplement solutions.
type Recommendation struct {
	Calories           float64    `json:"calories"`
	CarbohydrateIntake float64    `json:"carbohydrate_intake"`
	ProteinIntake      float64    `json:"protein_intake"`
	FatIntake          float64    `json:"fat_intake"`
	CarbohydrateNeeded float64    `json:"carbohydrate_needed"`
	ProteinNeeded      float64    `json:"protein_needed"`
	FatNeeded          float64    `json:"fat_needed"`
	Results            []Solution `json:"results"`
}

// Solution is one food combination covering the remaining need, with its
// supplement totals.
type Solution struct {
	Foods             []FoodPortion `json:"foods"`
	CarbSupplement    float64       `json:"carb_supplement"`
	ProteinSupplement float64       `json:"protein_supplement"`
	FatSupplement     float64       `json:"fat_supplement"`
}

// FoodPortion is a recommended amount of one food. X/Y/Z are printable box
// dimensions in mm when a valid box exists for the portion volume.
type FoodPortion struct {
	Name string  `json:"name"`
	Gram float64 `json:"gram"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	Z    float64 `json:"z,omitempty"`
}

// candidate is a supplement food: macro grams per gram of food, and density
// in g/cm³ for the volume bound.
type candidate struct {
	name    string
	carbs   float64
	protein float64
	fat     float64
	density float64
}

var candidates = []candidate{
	{"Purple Sweet Potato", 0.17, 0.0156, 0.0005, 0.81},
	{"Red Lentils", 0.112, 0.066, 0.0061, 1.182},
	{"Avocado", 0.014, 0.0138, 0.121, 0.63},
	{"Chicken Breast", 0.0006, 0.198, 0.0115, 0.82},
}

// Indices into candidates for the preference block list.
const (
	candidateRedLentils    = 1
	candidateChickenBreast = 3
)

// Energy per gram: 4.1 kcal for carbs and protein, 8.8 for fat. Each diet
// row is the calorie fraction assigned to carbs, protein, fat.
var dietScales = [4][3]float64{
	{0.50 / 4.1, 0.20 / 4.1, 0.30 / 8.8}, // balanced
	{0.60 / 4.1, 0.20 / 4.1, 0.20 / 8.8}, // low fat
	{0.20 / 4.1, 0.30 / 4.1, 0.50 / 8.8}, // low carbs
	{0.28 / 4.1, 0.39 / 4.1, 0.33 / 8.8}, // high protein
}

// Solutions with a combined residual above this are discarded.
const residualTolerance = 100

// Engine is the in-process Recommender.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// rmr is the Mifflin-St Jeor resting metabolic rate.
func rmr(weight, height float64, age, gender int) float64 {
	base := 9.99*weight + 6.25*height - 4.92*float64(age)
	if gender == models.GenderMale {
		return base + 5
	}
	return base - 161
}

var activityMultipliers = [4]float64{1.2, 1.375, 1.55, 1.725}

func dailyCalories(rmr float64, activity int) float64 {
	if activity < 0 || activity >= len(activityMultipliers) {
		activity = len(activityMultipliers) - 1
	}
	return rmr * activityMultipliers[activity]
}

func (e *Engine) Recommend(_ context.Context, attrs models.UserAttributes, totals models.Totals) (*Recommendation, error) {
	if !attrs.Complete() {
		return nil, fmt.Errorf("recommend: incomplete user attributes")
	}

	calories := dailyCalories(rmr(*attrs.Weight, *attrs.Height, *attrs.Age, *attrs.Gender), *attrs.Activity)

	diet := *attrs.Diet
	if diet < 0 || diet >= len(dietScales) {
		diet = models.DietBalanced
	}
	scale := dietScales[diet]
	carbIntake := calories * scale[0]
	proteinIntake := calories * scale[1]
	fatIntake := calories * scale[2]

	needed := [3]float64{
		carbIntake - totals.Carbs,
		proteinIntake - totals.Protein,
		fatIntake - totals.Fat,
	}

	blocked := candidateRedLentils
	if *attrs.Preference == models.PreferenceVegetarian {
		blocked = candidateChickenBreast
	}

	rec := &Recommendation{
		Calories:           models.Round2(calories),
		CarbohydrateIntake: models.Round2(carbIntake),
		ProteinIntake:      models.Round2(proteinIntake),
		FatIntake:          models.Round2(fatIntake),
		CarbohydrateNeeded: models.Round2(needed[0]),
		ProteinNeeded:      models.Round2(needed[1]),
		FatNeeded:          models.Round2(needed[2]),
	}

	rec.Results = solveCombinations(needed, blocked)
	return rec, nil
}

type fit struct {
	foods    [2]int
	amounts  [2]float64
	residual float64
}

// solveCombinations fits every unblocked two-food combination against the
// positive components of the remaining need and ranks the accepted fits by
// residual.
func solveCombinations(needed [3]float64, blocked int) []Solution {
	anyPositive := false
	for _, v := range needed {
		if v > 0 {
			anyPositive = true
			break
		}
	}
	if !anyPositive {
		return nil
	}

	var fits []fit
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if i == blocked || j == blocked {
				continue
			}
			a1, a2, b := maskedColumns(i, j, needed)
			x1, x2, residual := solvePair(a1, a2, b, gramBound(i), gramBound(j))
			if x1 > 0 && x2 > 0 && residual < residualTolerance {
				fits = append(fits, fit{foods: [2]int{i, j}, amounts: [2]float64{x1, x2}, residual: residual})
			}
		}
	}

	sort.Slice(fits, func(a, b int) bool { return fits[a].residual < fits[b].residual })

	solutions := make([]Solution, 0, len(fits))
	for _, f := range fits {
		solutions = append(solutions, buildSolution(f))
	}
	return solutions
}

// gramBound is the largest printable portion of a candidate food.
func gramBound(i int) float64 {
	return printableVolume / candidates[i].density
}

// maskedColumns extracts the per-gram macro columns of two candidates,
// restricted to the macros still needed.
func maskedColumns(i, j int, needed [3]float64) (a1, a2, b []float64) {
	rows := [3][2]float64{
		{candidates[i].carbs, candidates[j].carbs},
		{candidates[i].protein, candidates[j].protein},
		{candidates[i].fat, candidates[j].fat},
	}
	for m := 0; m < 3; m++ {
		if needed[m] > 0 {
			a1 = append(a1, rows[m][0])
			a2 = append(a2, rows[m][1])
			b = append(b, needed[m])
		}
	}
	return a1, a2, b
}

// solvePair minimizes ||x1*a1 + x2*a2 - b|| subject to 0 <= x <= ub. The
// problem is a two-variable convex least squares; the unconstrained normal-
// equation solution is clamped into the box and refined by coordinate
// descent, which converges for this problem.
func solvePair(a1, a2, b []float64, ub1, ub2 float64) (x1, x2, residual float64) {
	dot := func(u, v []float64) float64 {
		var s float64
		for k := range u {
			s += u[k] * v[k]
		}
		return s
	}

	a11 := dot(a1, a1)
	a22 := dot(a2, a2)
	a12 := dot(a1, a2)
	b1 := dot(a1, b)
	b2 := dot(a2, b)

	det := a11*a22 - a12*a12
	if det > 1e-12 {
		x1 = (b1*a22 - b2*a12) / det
		x2 = (b2*a11 - b1*a12) / det
	}

	clamp := func(v, ub float64) float64 {
		return math.Max(0, math.Min(ub, v))
	}
	x1 = clamp(x1, ub1)
	x2 = clamp(x2, ub2)

	for iter := 0; iter < 50; iter++ {
		prev1, prev2 := x1, x2
		if a11 > 0 {
			x1 = clamp((b1-a12*x2)/a11, ub1)
		}
		if a22 > 0 {
			x2 = clamp((b2-a12*x1)/a22, ub2)
		}
		if math.Abs(x1-prev1) < 1e-9 && math.Abs(x2-prev2) < 1e-9 {
			break
		}
	}

	var sum float64
	for k := range b {
		d := x1*a1[k] + x2*a2[k] - b[k]
		sum += d * d
	}
	return x1, x2, math.Sqrt(sum)
}

func buildSolution(f fit) Solution {
	var sol Solution
	for k := 0; k < 2; k++ {
		grams := models.Round2(f.amounts[k])
		if grams == 0 {
			continue
		}
		c := candidates[f.foods[k]]
		sol.CarbSupplement += grams * c.carbs
		sol.ProteinSupplement += grams * c.protein
		sol.FatSupplement += grams * c.fat

		portion := FoodPortion{Name: c.name, Gram: grams}
		x, y, z := boxDimensions(grams / c.density)
		if x > 0 && y > 0 && z > 0 {
			portion.X = models.Round2(x)
			portion.Y = models.Round2(y)
			portion.Z = models.Round2(z)
		}
		sol.Foods = append(sol.Foods, portion)
	}
	sol.CarbSupplement = models.Round2(sol.CarbSupplement)
	sol.ProteinSupplement = models.Round2(sol.ProteinSupplement)
	sol.FatSupplement = models.Round2(sol.FatSupplement)
	return sol
}
