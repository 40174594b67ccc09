package forecast

import "time"

type Config struct {
	Threshold int           `envconfig:"SIREN_FORECAST_THRESHOLD" default:"2"`
	Window    time.Duration `envconfig:"SIREN_FORECAST_WINDOW" default:"120m"`
	Horizon   time.Duration `envconfig:"SIREN_FORECAST_HORIZON" default:"180m"`
}
