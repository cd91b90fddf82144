package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/api/transcribe"
	"transcribe-beautifier/internal/app/metrics"
	"transcribe-beautifier/internal/app/pipeline"
	"transcribe-beautifier/internal/app/repository"
	"transcribe-beautifier/internal/app/storage"
	"transcribe-beautifier/internal/config"
)

// Services is the pipeline assembled from configuration.
type Services struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      *storage.MinioStore
	Jobs       transcribe.JobClient
	Poller     *transcribe.Poller
	Ledger     repository.Ledger
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Settings   pipeline.Settings
	Starter    *pipeline.Starter
	Beautifier *pipeline.Beautifier
	Session    *pipeline.Session
}

func provideStore(cfg *config.Config, logger *zap.Logger) (*storage.MinioStore, error) {
	return storage.NewMinioStore(cfg.Storage, logger)
}

func provideJobClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*transcribe.AWSClient, error) {
	return transcribe.NewAWSClient(ctx, cfg.Storage.Region, logger)
}

func providePoller(client transcribe.JobClient, cfg *config.Config, logger *zap.Logger) *transcribe.Poller {
	return transcribe.NewPoller(client, transcribe.PolicyFromConfig(cfg.Poll), logger)
}

// provideLedger opens the configured ledger; the cleanup closes it.
func provideLedger(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Ledger, func(), error) {
	ledger, err := repository.OpenSQLLedger(ctx, cfg.Ledger.Driver, cfg.Ledger.DSN)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("failed to close ledger", zap.Error(err))
		}
	}
	return ledger, cleanup, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func provideSettings(cfg *config.Config) (pipeline.Settings, error) {
	return pipeline.SettingsFromConfig(cfg)
}

func provideSession(store storage.ObjectStore, jobs transcribe.JobClient, poller *transcribe.Poller,
	m *metrics.Metrics, cfg *config.Config, settings pipeline.Settings, logger *zap.Logger) *pipeline.Session {
	return pipeline.NewSession(store, jobs, poller, m, cfg.Storage.Bucket, settings, logger)
}
