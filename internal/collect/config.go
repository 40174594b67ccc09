package collect

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"SIREN_COLLECT_REQUEST_TIMEOUT" default:"60s"`
	MaxDataItems   int           `envconfig:"SIREN_COLLECT_MAX_DATA_ITEMS" default:"1000"`
}
