package train

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"SIREN_TRAIN_REQUEST_TIMEOUT" default:"120s"`
	TrainRatio     float64       `envconfig:"SIREN_TRAIN_HOLDOUT_RATIO" default:"0.8"`
	HoldoutSeed    int           `envconfig:"SIREN_TRAIN_HOLDOUT_SEED" default:"1"`
}
