package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/trend-digest-bot/internal/di"
	schedulerService "github.com/reshetovitsme/trend-digest-bot/internal/modules/scheduler/service"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/config"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	httpServer "github.com/reshetovitsme/trend-digest-bot/internal/transport/http"
	"github.com/reshetovitsme/trend-digest-bot/internal/transport/telegram"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

func main() {
	// Text logs on stdout, errors also as JSON on stderr
	level := new(slog.LevelVar)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	logger := slog.New(slogmulti.Fanout(textHandler, jsonHandler))
	slog.SetDefault(logger)

	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		if stderrors.Is(err, errors.ErrMissingCredentials) {
			slog.Error("Messaging platform credentials are missing", "error", err)
		} else {
			slog.Error("Failed to load configuration", "error", err)
		}
		os.Exit(1)
	}
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		slog.Warn("Unknown log level, using info", "log_level", cfg.LogLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	server, err := do.Invoke[*httpServer.Server](injector)
	if err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}
	scheduler := do.MustInvoke[*schedulerService.Scheduler](injector)

	if err := scheduler.Start(ctx); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			cancel()
		}
	}()

	if cfg.Platform == config.PlatformTelegram {
		b := do.MustInvoke[*bot.Bot](injector)
		handler := do.MustInvoke[*telegram.Handler](injector)
		go handler.Run(ctx, b, cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret)
	}

	slog.Info("Application started", "platform", cfg.Platform, "port", cfg.HTTPPort)
	slog.Info("Press Ctrl+C to stop")

	<-ctx.Done()
	slog.Info("Shutting down...")
}
