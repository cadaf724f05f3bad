package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/tournament-display/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	displayHandler *handlers.DisplayHandler,
	exportHandler *handlers.ExportHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/page", displayHandler.GetPage)
		r.Get("/display", displayHandler.GetDisplay)
		r.Post("/display/tournament", displayHandler.SelectTournament)
		r.Post("/display/refresh", displayHandler.Refresh)
		r.Post("/export", exportHandler.Export)
	})

	router.Get("/ws/{tournamentID}", webSocketHandler.ServeWs)
}
