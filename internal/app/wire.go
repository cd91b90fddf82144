//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/api/transcribe"
	"transcribe-beautifier/internal/app/pipeline"
	"transcribe-beautifier/internal/app/storage"
	"transcribe-beautifier/internal/config"
)

var serviceSet = wire.NewSet(
	provideStore,
	wire.Bind(new(storage.ObjectStore), new(*storage.MinioStore)),
	provideJobClient,
	wire.Bind(new(transcribe.JobClient), new(*transcribe.AWSClient)),
	providePoller,
	provideLedger,
	provideRegistry,
	provideMetrics,
	provideSettings,
	pipeline.NewStarter,
	pipeline.NewBeautifier,
	provideSession,
	wire.Struct(new(Services), "*"),
)

// InitializeServices builds the pipeline from configuration. The cleanup
// releases the ledger.
func InitializeServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Services, func(), error) {
	wire.Build(serviceSet)
	return &Services{}, nil, nil
}
