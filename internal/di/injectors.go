//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"tvd/internal"
	"tvd/internal/controllers"
	"tvd/internal/providers"
	"tvd/internal/services"
	"tvd/internal/structures"
	"tvd/internal/upstream"
	"tvd/internal/video"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewMetricsProvider,
		providers.NewAuthProvider,

		video.NewCompressor,
		video.NewFileManager,
		video.NewScheduler,
		services.NewVideoService,
		services.NewLinkService,
		services.NewIngestService,

		upstream.NewClient,
		upstream.NewPhoneCode,
		upstream.NewSubscriber,
		upstream.NewAuthenticator,
		wire.Bind(new(upstream.EventHandler), new(services.IngestServiceInterface)),

		controllers.NewApiController,
		controllers.NewAuthController,
		controllers.NewStreamController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
