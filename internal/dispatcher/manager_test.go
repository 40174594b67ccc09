package dispatcher

import (
	"testing"
	"time"

	"siren/internal/incident/model"
)

func TestManagerCollect(t *testing.T) {
	tests := []struct {
		name      string
		queueSize int
		items     int
		expectErr bool
	}{
		{name: "positive_collect", queueSize: 4, items: 3, expectErr: false},
		{name: "queue_full", queueSize: 2, items: 3, expectErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := &manager{queue: make(chan model.Incident, test.queueSize)}
			incidents := make([]model.Incident, 0, test.items)
			for i := 0; i < test.items; i++ {
				incidents = append(incidents, model.NewIncident(model.Record{}, time.Now()))
			}
			err := m.Collect(incidents...)
			if test.expectErr && err == nil {
				t.Errorf("collecting into a saturated queue must return an error")
			}
			if !test.expectErr && err != nil {
				t.Errorf("the error should not be returned: %v", err)
			}
		})
	}
}

func TestManagerNewRequiresDB(t *testing.T) {
	if _, err := New(nil, make(chan error, 1)); err == nil {
		t.Errorf("creating a manager without a database must return an error")
	}
}
