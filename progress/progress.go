// Package progress serves the demo progress dashboard data.
//
// The record is built once at package initialisation and never modified.
// Callers always receive an independent copy.
package progress

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id of the generated JSON Schema.
const SchemaID = "https://fittrack.dev/schemas/progress.schema.json"

// WorkoutCheckin records whether a workout was logged on each weekday.
type WorkoutCheckin struct {
	Mon bool `json:"mon"`
	Tue bool `json:"tue"`
	Wed bool `json:"wed"`
	Thu bool `json:"thu"`
	Fri bool `json:"fri"`
	Sat bool `json:"sat"`
	Sun bool `json:"sun"`
}

// Progress is one user's weekly progress summary. Weekly series hold seven
// entries, oldest first.
type Progress struct {
	Weight         []float64      `json:"weight" jsonschema:"description=Daily body weight in kg,minItems=7,maxItems=7"`
	WeeklySteps    []int          `json:"weekly_steps" jsonschema:"minItems=7,maxItems=7"`
	WorkoutCheckin WorkoutCheckin `json:"workout_checkin"`
	CalorieSurplus []int          `json:"calorie_surplus" jsonschema:"description=Daily calorie surplus in kcal,minItems=7,maxItems=7"`
	ProteinGoal    []bool         `json:"protein_goal" jsonschema:"minItems=7,maxItems=7"`
	BestRunKm      float64        `json:"best_run_km"`
	TotalRuns      int            `json:"total_runs"`
	DailySteps     int            `json:"daily_steps"`
	CurrentWeight  float64        `json:"current_weight"`
	TargetWeight   float64        `json:"target_weight"`
}

var fixture = Progress{
	Weight:      []float64{51.8, 52.0, 52.1, 52.3, 52.4, 52.6, 52.8},
	WeeklySteps: []int{2100, 3500, 2900, 3100, 4500, 1800, 2600},
	WorkoutCheckin: WorkoutCheckin{
		Mon: true, Tue: true, Wed: true, Thu: false,
		Fri: true, Sat: true, Sun: false,
	},
	CalorieSurplus: []int{320, 280, 350, 300, 400, 150, 210},
	ProteinGoal:    []bool{true, true, true, true, true, false, true},
	BestRunKm:      3.2,
	TotalRuns:      12,
	DailySteps:     2180,
	CurrentWeight:  52.4,
	TargetWeight:   55,
}

// Snapshot returns a deep copy of the progress record. Mutating the result
// does not affect later snapshots.
func Snapshot() Progress {
	p := fixture
	p.Weight = slices.Clone(fixture.Weight)
	p.WeeklySteps = slices.Clone(fixture.WeeklySteps)
	p.CalorieSurplus = slices.Clone(fixture.CalorieSurplus)
	p.ProteinGoal = slices.Clone(fixture.ProteinGoal)
	return p
}

// JSONSchema returns the JSON Schema describing a Progress record.
func JSONSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Progress{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Progress"
	schema.Description = "Weekly progress summary served by GET /progress"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
