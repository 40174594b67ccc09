package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	ocprom "contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats/view"

	"siren/internal/buildinfo"
	"siren/internal/collect"
	siren "siren/internal/config"
	"siren/internal/forecast"
	"siren/internal/logging"
	"siren/internal/predict"
	"siren/internal/request"
	"siren/internal/server"
	"siren/internal/setup"
	"siren/internal/shutdown"
	sstats "siren/internal/stats"
	"siren/internal/train"
	"siren/internal/unit"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	if err := run(ctx, done); err != nil {
		logger.Fatal(err)
	}

	defer done()
}

func run(ctx context.Context, cancel func()) error {
	config := siren.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(context.Background())

	shutdownCh := make(chan error, 3)

	ingest, err := env.ProvideIngest()(shutdownCh)
	if err != nil {
		return fmt.Errorf("ingest provider function error: %w", err)
	}
	if err := ingest.Run(ctx); err != nil {
		return fmt.Errorf("ingest.Run: %w", err)
	}

	if config.Alert.AllowAlerts {
		notifier, err := env.ProvideNotifier()(shutdownCh)
		if err != nil {
			return fmt.Errorf("notifier provider function error: %w", err)
		}
		if err := notifier.Run(ctx); err != nil {
			return fmt.Errorf("notifier.Run: %w", err)
		}
	}

	estimator, err := env.ProvideEstimator()()
	if err != nil {
		return fmt.Errorf("estimator provider function error: %w", err)
	}

	if err := sstats.Register(); err != nil {
		return fmt.Errorf("stats.Register: %w", err)
	}
	exporter, err := ocprom.NewExporter(ocprom.Options{Namespace: "siren"})
	if err != nil {
		return fmt.Errorf("prometheus.NewExporter: %w", err)
	}
	view.RegisterExporter(exporter)

	srv, err := server.New(config.SrvAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()

	predictHandler, err := predict.NewHandler(&config.Predict, env.Dataset(), estimator, config.Estimator.DefaultK)
	if err != nil {
		return fmt.Errorf("predict.NewHandler: %w", err)
	}
	collectHandler, err := collect.NewHandler(&config.Collect, ingest)
	if err != nil {
		return fmt.Errorf("collect.NewHandler: %w", err)
	}
	trainHandler, err := train.NewHandler(&config.Train, &config.Ridge, env.Dataset(), env.ModelDB())
	if err != nil {
		return fmt.Errorf("train.NewHandler: %w", err)
	}
	modelPredictHandler, err := train.NewPredictHandler(&config.Train, env.Dataset(), env.ModelDB())
	if err != nil {
		return fmt.Errorf("train.NewPredictHandler: %w", err)
	}

	mux.Handle("/predict", predictHandler)
	mux.Handle("/collect", collectHandler)
	mux.Handle("/train", trainHandler)
	mux.Handle("/model/predict", modelPredictHandler)
	mux.Handle("/dataset/refresh", collect.NewRefreshHandler(env.Dataset()))
	mux.Handle("/units", unit.NewHandler(env.UnitDB()))
	mux.Handle("/units/status", unit.NewStatusHandler(env.UnitDB()))
	mux.Handle("/units/logs", unit.NewLogsHandler(env.UnitDB()))
	mux.Handle("/requests", request.NewHandler(env.RequestDB()))
	mux.Handle("/requests/dispatch", request.NewDispatchHandler(env.RequestDB(), env.UnitDB()))
	mux.Handle("/forecast/ambulance", forecast.NewHandler(env.Forecaster()))
	mux.Handle("/health", server.HandleHealth())
	mux.Handle("/metrics", exporter)

	go func() {
		if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
			cancel()
		}
	}()

	go func() {
		if err := http.ListenAndServe("0.0.0.0:8080", nil); err != nil {
			cancel()
		}
	}()

	return <-shutdownCh
}
