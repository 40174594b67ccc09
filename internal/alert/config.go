package alert

import (
	"encoding/json"
	"time"

	"siren/internal/httputil"
)

type Config struct {
	AllowAlerts          bool          `envconfig:"SIREN_ALLOW_ALERTS" default:"true"`
	Targets              Targets       `envconfig:"SIREN_ALERT_TARGETS"`
	Interval             time.Duration `envconfig:"SIREN_ALERT_INTERVAL" default:"60s"`
	Cooldown             time.Duration `envconfig:"SIREN_ALERT_COOLDOWN" default:"15m"`
	MaxConcurrentRequest int           `envconfig:"SIREN_ALERT_MAX_CONCURRENT_REQUEST" default:"64"`
}

type Targets []Target

func (ts *Targets) Decode(value string) error {
	targets := []Target{}
	if err := json.Unmarshal([]byte(value), &targets); err != nil {
		return err
	}
	*ts = targets
	return nil
}

type Target struct {
	URL        string                    `json:"url"`
	Name       string                    `json:"name"`
	HTTPConfig httputil.HTTPClientConfig `json:"httpConfig"`
}
