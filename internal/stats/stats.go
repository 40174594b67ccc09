package stats

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	MPredictions   = stats.Int64("siren/predictions", "Number of resource predictions served", stats.UnitDimensionless)
	MPredictMs     = stats.Float64("siren/predict_latency", "Prediction latency", stats.UnitMilliseconds)
	MCollectedRows = stats.Int64("siren/collected_rows", "Number of historical rows collected", stats.UnitDimensionless)
	MTrainings     = stats.Int64("siren/trainings", "Number of ridge training runs", stats.UnitDimensionless)
)

var Views = []*view.View{
	{
		Name:        "siren/predictions",
		Description: "Number of resource predictions served",
		Measure:     MPredictions,
		Aggregation: view.Count(),
	},
	{
		Name:        "siren/predict_latency",
		Description: "Prediction latency distribution",
		Measure:     MPredictMs,
		Aggregation: view.Distribution(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500),
	},
	{
		Name:        "siren/collected_rows",
		Description: "Number of historical rows collected",
		Measure:     MCollectedRows,
		Aggregation: view.Sum(),
	},
	{
		Name:        "siren/trainings",
		Description: "Number of ridge training runs",
		Measure:     MTrainings,
		Aggregation: view.Count(),
	},
}

func Register() error {
	return view.Register(Views...)
}
