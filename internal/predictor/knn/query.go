package knn

import (
	"math"
	"strconv"
	"strings"

	"siren/internal/feature"
	"siren/internal/incident/model"
)

// QuerySpec is the limited incident description an incident commander can
// supply up front.
type QuerySpec struct {
	City               string
	BuildingsAffected  float64
	PopulationAffected float64
	Category           string
	Subtype            string
	InferredState      string
}

// MakeQuery synthesizes a full incident record from the partial query.
// Unspecified numeric fields default to zero; both structure fields receive
// the buildings-affected value; severity comes from a supply-pressure score
// over buildings and population.
func MakeQuery(q QuerySpec) model.Record {
	score := math.Min(q.BuildingsAffected/25.0, 2.0)
	score += math.Min(q.PopulationAffected/20000.0, 3.0)
	severity := int(math.RoundToEven(1 + math.Min(math.Max(score, 0.0), 4.0)))
	if severity < 1 {
		severity = 1
	}
	if severity > 5 {
		severity = 5
	}

	buildings := formatFloat(q.BuildingsAffected)
	return model.Record{
		feature.FieldSeverity:             strconv.Itoa(severity),
		feature.FieldDurationHours:        "0",
		feature.FieldPopulationAffected:   formatFloat(q.PopulationAffected),
		feature.FieldInjuries:             "0",
		feature.FieldFatalities:           "0",
		feature.FieldStructuresThreatened: buildings,
		feature.FieldStructuresDamaged:    buildings,
		feature.FieldAcresBurned:          "0",
		feature.FieldWindMph:              "0",
		feature.FieldPrecipInches:         "0",
		feature.FieldTemperatureF:         "0",
		feature.FieldEvacuationOrder:      "0",
		feature.FieldEvacPopulation:       "0",
		feature.FieldHospitalDiversion:    "0",
		feature.FieldCategory:             q.Category,
		feature.FieldSubtype:              q.Subtype,
		feature.FieldCity:                 q.City,
		feature.FieldState:                q.InferredState,
	}
}

// InferStateForCity returns the most frequent state among rows whose trimmed
// city matches exactly, or "" when the city is unseen. Frequency ties keep
// the state observed first.
func InferStateForCity(rows []model.Record, city string) string {
	target := strings.TrimSpace(city)
	counts := map[string]int{}
	var seen []string
	for _, row := range rows {
		if strings.TrimSpace(row[feature.FieldCity]) != target {
			continue
		}
		state := strings.TrimSpace(row[feature.FieldState])
		if state == "" {
			continue
		}
		if _, ok := counts[state]; !ok {
			seen = append(seen, state)
		}
		counts[state]++
	}
	best := ""
	bestCount := 0
	for _, state := range seen {
		if counts[state] > bestCount {
			best = state
			bestCount = counts[state]
		}
	}
	return best
}

// BuildingsAffected resolves the buildings-affected number from the
// threatened/damaged synonym pair, first non-zero wins.
func BuildingsAffected(threatened, damaged float64) float64 {
	if threatened != 0 {
		return threatened
	}
	return damaged
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
