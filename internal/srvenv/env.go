package srvenv

import (
	"context"

	"siren/internal/alert"
	"siren/internal/database"
	"siren/internal/dataset"
	"siren/internal/dispatcher"
	"siren/internal/forecast"
	"siren/internal/predictor"
	ridgedb "siren/internal/predictor/ridge/database"
	reqdb "siren/internal/request/database"
	unitdb "siren/internal/unit/database"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	database   *database.DB
	dataset    *dataset.Provider
	estimator  predictor.ProvideFn
	ingest     dispatcher.ProvideFn
	notifier   alert.ProvideFn
	forecaster *forecast.Forecaster
	unitDB     *unitdb.DB
	requestDB  *reqdb.DB
	modelDB    *ridgedb.DB
}

func (s *SrvEnv) ProvideEstimator() predictor.ProvideFn {
	return s.estimator
}

func (s *SrvEnv) ProvideIngest() dispatcher.ProvideFn {
	return s.ingest
}

func (s *SrvEnv) ProvideNotifier() alert.ProvideFn {
	return s.notifier
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func (s *SrvEnv) Dataset() *dataset.Provider {
	return s.dataset
}

func (s *SrvEnv) Forecaster() *forecast.Forecaster {
	return s.forecaster
}

func (s *SrvEnv) UnitDB() *unitdb.DB {
	return s.unitDB
}

func (s *SrvEnv) RequestDB() *reqdb.DB {
	return s.requestDB
}

func (s *SrvEnv) ModelDB() *ridgedb.DB {
	return s.modelDB
}

func WithEstimator(fn predictor.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.estimator = fn
		return s
	}
}

func WithIngest(fn dispatcher.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.ingest = fn
		return s
	}
}

func WithNotifier(fn alert.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.notifier = fn
		return s
	}
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func WithDataset(p *dataset.Provider) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.dataset = p
		return s
	}
}

func WithForecaster(f *forecast.Forecaster) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.forecaster = f
		return s
	}
}

func WithUnitDB(db *unitdb.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.unitDB = db
		return s
	}
}

func WithRequestDB(db *reqdb.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.requestDB = db
		return s
	}
}

func WithModelDB(db *ridgedb.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.modelDB = db
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.database != nil {
		return s.database.Close(ctx)
	}
	return nil
}
