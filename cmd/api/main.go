package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpapi "ugcstudio/internal/http"
	"ugcstudio/internal/http/handlers"
	"ugcstudio/internal/infra"
	"ugcstudio/internal/providers/kie"
	"ugcstudio/internal/providers/openai"
	"ugcstudio/internal/store"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	accounts, err := store.Open(cfg.UsersFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open users file")
	}

	scripts := openai.NewClient(openai.Options{BaseURL: cfg.OpenAIBaseURL})
	videos := kie.NewClient(kie.Options{BaseURL: cfg.KieBaseURL})

	app := handlers.NewApp(cfg, logger, accounts, scripts, videos)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
