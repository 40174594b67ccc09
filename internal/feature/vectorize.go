package feature

import (
	"sort"
	"strings"

	"siren/internal/geom"
)

// Levels holds the distinct non-empty values observed for each categorical
// feature in a dataset snapshot, sorted ascending. Vectors produced under
// different Levels snapshots are incomparable.
type Levels map[string][]string

// CollectLevels scans every row, trims each categorical field and unions the
// non-empty values per feature. Output order is lexicographic regardless of
// row order so the one-hot encoding is deterministic.
func CollectLevels(rows []map[string]string) Levels {
	seen := make(map[string]map[string]struct{}, len(CategoricalFeatures))
	for _, name := range CategoricalFeatures {
		seen[name] = map[string]struct{}{}
	}
	for _, row := range rows {
		for _, name := range CategoricalFeatures {
			value := strings.TrimSpace(row[name])
			if value != "" {
				seen[name][value] = struct{}{}
			}
		}
	}
	levels := make(Levels, len(seen))
	for name, values := range seen {
		sorted := make([]string, 0, len(values))
		for value := range values {
			sorted = append(sorted, value)
		}
		sort.Strings(sorted)
		levels[name] = sorted
	}
	return levels
}

// Column returns the composite one-hot column name for a categorical level.
func Column(name, level string) string {
	return name + "__" + level
}

// BuildOrder returns the full feature order: the numeric feature list followed
// by one column per categorical level, per feature in declared order.
func BuildOrder(levels Levels) []string {
	order := make([]string, 0, len(NumericFeatures))
	order = append(order, NumericFeatures...)
	for _, name := range CategoricalFeatures {
		for _, level := range levels[name] {
			order = append(order, Column(name, level))
		}
	}
	return order
}

var boolFields = map[string]struct{}{
	FieldEvacuationOrder:   {},
	FieldHospitalDiversion: {},
}

var derivedFields = map[string]struct{}{
	FieldStartHour:  {},
	FieldStartMonth: {},
}

// Vectorize converts an incident record, historical or query, into a numeric
// vector under the given feature order and level vocabulary. A categorical
// value unseen at vocabulary-collection time contributes an all-zero one-hot
// block; any lookup missing from the value map defaults to 0.0.
func Vectorize(fields map[string]string, order []string, levels Levels) geom.Point {
	values := make(map[string]float64, len(order))
	for _, name := range NumericFeatures {
		if _, ok := boolFields[name]; ok {
			values[name] = ParseBool(fields[name])
			continue
		}
		if _, ok := derivedFields[name]; ok {
			hour, month := DeriveTimeFeatures(fields)
			values[FieldStartHour] = hour
			values[FieldStartMonth] = month
			continue
		}
		values[name] = ParseFloat(fields[name])
	}

	for _, name := range CategoricalFeatures {
		level := strings.TrimSpace(fields[name])
		for _, option := range levels[name] {
			if option == level {
				values[Column(name, option)] = 1.0
			} else {
				values[Column(name, option)] = 0.0
			}
		}
	}

	vec := make(geom.Point, len(order))
	for i, name := range order {
		vec[i] = values[name]
	}
	return vec
}

// Targets extracts the (engines, ambulances) outcome pair from a historical
// row with lenient parsing.
func Targets(fields map[string]string) geom.Point {
	vec := make(geom.Point, len(TargetFields))
	for i, name := range TargetFields {
		vec[i] = ParseFloat(fields[name])
	}
	return vec
}
