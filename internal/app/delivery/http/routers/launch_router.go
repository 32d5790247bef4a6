package routers

import (
	"koppeltaal-service/internal/app/delivery/http/controllers"
	"koppeltaal-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachLaunchRoutes(router chi.Router, middlewares *middlewares.Middlewares, launchController *controllers.LaunchController) {
	router.Get("/launch", launchController.Launch)
	router.Get("/callback", launchController.Callback)

	router.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(middlewares.RequireSessionAPIKey)
		r.Get("/", launchController.GetSession)
		r.Post("/refresh", launchController.RefreshSession)
		r.Delete("/", launchController.DeleteSession)
	})
}
