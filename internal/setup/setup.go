package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"siren/internal/alert"
	"siren/internal/database"
	"siren/internal/dataset"
	"siren/internal/dispatcher"
	"siren/internal/forecast"
	incidentDb "siren/internal/incident/database"
	"siren/internal/incident/model"
	"siren/internal/logging"
	"siren/internal/predictor"
	"siren/internal/predictor/knn"
	ridgedb "siren/internal/predictor/ridge/database"
	reqdb "siren/internal/request/database"
	"siren/internal/srvenv"
	unitdb "siren/internal/unit/database"
)

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type DatasetConfigProvider interface {
	DatasetConfig() *dataset.Config
}

type IngestConfigProvider interface {
	IngestConfig() *dispatcher.Config
}

type EstimatorConfigProvider interface {
	EstimatorConfig() *knn.Config
}

type NotifierConfigProvider interface {
	NotifyConfig() *alert.Config
}

type ForecastConfigProvider interface {
	ForecastConfig() *forecast.Config
}

func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var db *database.DB
	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("Configuring db")
		dbFromEnv, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %v", err)
		}
		db = dbFromEnv
		serverEnvOpts = append(serverEnvOpts,
			srvenv.WithDatabase(db),
			srvenv.WithUnitDB(unitdb.New(db)),
			srvenv.WithRequestDB(reqdb.New(db)),
			srvenv.WithModelDB(ridgedb.New(db)),
		)
	}

	if datasetConfigProvider, ok := config.(DatasetConfigProvider); ok {
		logger.Info("Configuring dataset provider")
		provider, err := ProvideDatasetFor(ctx, datasetConfigProvider, db)
		if err != nil {
			return nil, fmt.Errorf("unable create dataset provider: %v", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDataset(provider))
	}

	if estimatorConfigProvider, ok := config.(EstimatorConfigProvider); ok {
		logger.Info("Configuring estimator")
		provideFn, err := ProvideEstimatorFor(estimatorConfigProvider.EstimatorConfig())
		if err != nil {
			return nil, fmt.Errorf("unable create estimator provide function: %v", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithEstimator(provideFn))
	}

	if ingestConfigProvider, ok := config.(IngestConfigProvider); ok {
		logger.Info("Configuring ingest dispatcher")
		provideFn, err := ProvideIngestFor(ingestConfigProvider, db)
		if err != nil {
			return nil, fmt.Errorf("unable create ingest provide function: %v", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithIngest(provideFn))
	}

	var forecaster *forecast.Forecaster
	if forecastConfigProvider, ok := config.(ForecastConfigProvider); ok {
		logger.Info("Configuring supply forecaster")
		cfg := forecastConfigProvider.ForecastConfig()
		forecaster = forecast.New(
			db,
			forecast.WithThreshold(cfg.Threshold),
			forecast.WithWindow(cfg.Window),
			forecast.WithHorizon(cfg.Horizon),
		)
		serverEnvOpts = append(serverEnvOpts, srvenv.WithForecaster(forecaster))
	}

	if notifyConfigProvider, ok := config.(NotifierConfigProvider); ok {
		logger.Info("Configuring notifier")
		provideFn, err := ProvideNotifierFor(notifyConfigProvider, db, forecaster)
		if err != nil {
			return nil, fmt.Errorf("unable create notifier provide function: %v", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithNotifier(provideFn))
	}

	return srvenv.New(serverEnvOpts...), nil
}

// ProvideDatasetFor builds the snapshot provider over the incident store.
// An empty store hydrates once from the configured CSV file, so a fresh
// deployment starts with history instead of refusing every prediction.
func ProvideDatasetFor(ctx context.Context, provider DatasetConfigProvider, db *database.DB) (*dataset.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("database instance is not created")
	}
	cfg := provider.DatasetConfig()
	incDb := incidentDb.New(db)

	if cfg.File != "" {
		count, err := incDb.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to count stored incidents: %v", err)
		}
		if count == 0 {
			rows, err := dataset.ReadCSVFile(cfg.File)
			if err != nil {
				return nil, fmt.Errorf("unable to read dataset file %s: %v", cfg.File, err)
			}
			now := time.Now()
			incidents := make([]model.Incident, 0, len(rows))
			for _, fields := range rows {
				incidents = append(incidents, model.NewIncident(fields, now))
			}
			if err := incDb.AppendMany(ctx, incidents); err != nil {
				return nil, fmt.Errorf("unable to hydrate incident store: %v", err)
			}
			logging.FromContext(ctx).Infof("hydrated incident store with %d rows from %s", len(rows), cfg.File)
		}
	}

	return dataset.NewProvider(func(ctx context.Context) ([]model.Incident, error) {
		return incDb.FindAll(ctx, nil)
	}), nil
}

func ProvideEstimatorFor(cfg *knn.Config) (predictor.ProvideFn, error) {
	distFunc, err := knn.DistanceFuncFor(cfg.MetricFuncType)
	if err != nil {
		return nil, fmt.Errorf("unable provide distance function: %v", err)
	}
	return func() (predictor.Estimator, error) {
		return knn.New(
			knn.WithDistance(distFunc),
			knn.WithMinPool(cfg.MinPool),
		), nil
	}, nil
}

func ProvideIngestFor(provider IngestConfigProvider, db *database.DB) (dispatcher.ProvideFn, error) {
	cfg := provider.IngestConfig()
	return func(shutdownCh chan<- error) (dispatcher.Manager, error) {
		return dispatcher.New(
			db,
			shutdownCh,
			dispatcher.WithQueueSize(cfg.QueueSize),
			dispatcher.WithDBFlushSize(cfg.DbFlushSize),
			dispatcher.WithDBFlushTime(cfg.DbFlushTime),
			dispatcher.WithRebuildDBTime(cfg.RebuildDBTime),
			dispatcher.WithMaxItemsStored(cfg.MaxItemsStored),
			dispatcher.WithMaxStorageTime(cfg.MaxStorageTime),
		)
	}, nil
}

func ProvideNotifierFor(provider NotifierConfigProvider, db *database.DB, supplier alert.Supplier) (alert.ProvideFn, error) {
	cfg := provider.NotifyConfig()
	return func(shutdownCh chan<- error) (alert.Manager, error) {
		return alert.New(
			db,
			supplier,
			shutdownCh,
			alert.WithMaxConcurrentRequest(cfg.MaxConcurrentRequest),
			alert.WithInterval(cfg.Interval),
			alert.WithCooldown(cfg.Cooldown),
			alert.WithTargets(cfg.Targets),
		)
	}, nil
}
