package siren

import (
	"siren/internal/alert"
	"siren/internal/collect"
	"siren/internal/database"
	"siren/internal/dataset"
	"siren/internal/dispatcher"
	"siren/internal/forecast"
	"siren/internal/predict"
	"siren/internal/predictor/knn"
	"siren/internal/predictor/ridge"
	"siren/internal/setup"
	"siren/internal/train"
)

var (
	_ setup.DatabaseConfigProvider  = (*Config)(nil)
	_ setup.DatasetConfigProvider   = (*Config)(nil)
	_ setup.IngestConfigProvider    = (*Config)(nil)
	_ setup.EstimatorConfigProvider = (*Config)(nil)
	_ setup.NotifierConfigProvider  = (*Config)(nil)
	_ setup.ForecastConfigProvider  = (*Config)(nil)
)

type Config struct {
	SrvAddr   string `envconfig:"SIREN_ADDR" default:":8787"`
	Ingest    dispatcher.Config
	Collect   collect.Config
	Predict   predict.Config
	Train     train.Config
	Database  database.Config
	Dataset   dataset.Config
	Estimator knn.Config
	Ridge     ridge.Config
	Alert     alert.Config
	Forecast  forecast.Config
}

func (c Config) IngestConfig() *dispatcher.Config {
	return &c.Ingest
}

func (c Config) NotifyConfig() *alert.Config {
	return &c.Alert
}

func (c Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c Config) DatasetConfig() *dataset.Config {
	return &c.Dataset
}

func (c Config) EstimatorConfig() *knn.Config {
	return &c.Estimator
}

func (c Config) ForecastConfig() *forecast.Config {
	return &c.Forecast
}
