package internal

import (
	"net/http"

	"tvd/internal/controllers"
	"tvd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, authController *controllers.AuthController, streamController *controllers.StreamController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/api/login", http.HandlerFunc(authController.Login))
	routers.Get("/api/phonecode/{code}", http.HandlerFunc(authController.PhoneCode))
	routers.Get("/api/stream/{chatId}/{messageId}", http.HandlerFunc(streamController.Stream))
	routers.Get("/api/videos", http.HandlerFunc(apiController.GetVideos))
	routers.Post("/api/videos/{chatId}/{messageId}/nickname", http.HandlerFunc(apiController.RenameVideo))
	routers.Get("/api/links", http.HandlerFunc(apiController.GetLinks))
	return routers
}
