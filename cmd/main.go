package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-display/config"
	"github.com/Dosada05/tournament-display/export"
	"github.com/Dosada05/tournament-display/handlers"
	"github.com/Dosada05/tournament-display/live"
	api "github.com/Dosada05/tournament-display/routes"
	"github.com/Dosada05/tournament-display/services"
	"github.com/Dosada05/tournament-display/storage"
	"github.com/Dosada05/tournament-display/tracker"
	"github.com/Dosada05/tournament-display/upstream"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("upstream", cfg.UpstreamBaseURL),
		slog.Duration("poll_interval", cfg.PollInterval))

	// Опциональный загрузчик файлов (Cloudflare R2) для экспорта
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewR2Uploader(storage.R2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized")
	} else {
		logger.Info("object storage not configured, exports stay on local disk")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Клиент вышестоящего API
	upstreamClient := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)

	// Инициализация сервисов
	displayService := services.NewDisplayService(
		upstreamClient,
		wsHub,
		logger,
		cfg.PollInterval,
		tracker.DefaultDecay,
	)

	captureRenderer, err := export.NewRenderer()
	if err != nil {
		logger.Error("failed to initialize capture renderer", slog.Any("error", err))
		os.Exit(1)
	}
	exportService := services.NewExportService(
		displayService,
		captureRenderer,
		uploader,
		wsHub,
		logger,
		cfg.ExportDir,
	)
	logger.Info("services initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Список турниров тянем один раз на старте; дальше только через
	// ручной refresh. Неуспех не фатален: poll-цикл всё равно запустится.
	if err := displayService.LoadPage(ctx); err != nil {
		logger.Error("initial page load failed", slog.Any("error", err))
	}

	// Запуск цикла опроса выбранного турнира
	go displayService.Run(ctx)

	// Инициализация обработчиков HTTP
	displayHandler := handlers.NewDisplayHandler(displayService)
	exportHandler := handlers.NewExportHandler(exportService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, displayHandler, exportHandler, webSocketHandler)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
