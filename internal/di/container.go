package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	analyzerService "github.com/reshetovitsme/trend-digest-bot/internal/modules/analyzer/service"
	commandService "github.com/reshetovitsme/trend-digest-bot/internal/modules/command/service"
	conversationRepo "github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/repository"
	conversationService "github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/service"
	feedService "github.com/reshetovitsme/trend-digest-bot/internal/modules/feed/service"
	pushService "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/service"
	schedulerService "github.com/reshetovitsme/trend-digest-bot/internal/modules/scheduler/service"
	subscriberRepo "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/repository"
	subscriberService "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/service"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/config"
	"github.com/reshetovitsme/trend-digest-bot/internal/transport"
	"github.com/reshetovitsme/trend-digest-bot/internal/transport/feishu"
	httpServer "github.com/reshetovitsme/trend-digest-bot/internal/transport/http"
	"github.com/reshetovitsme/trend-digest-bot/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	feedFetchTimeout = 30 * time.Second
	shutdownTimeout  = 30 * time.Second
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Subscriber Repository
	do.Provide(injector, func(i do.Injector) (subscriberRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)

		switch cfg.StorageDriver {
		case config.StorageDriverSqlite, config.StorageDriverPostgres:
			driver := lo.Ternary(cfg.StorageDriver == config.StorageDriverSqlite, subscriberRepo.DriverSQLite, subscriberRepo.DriverPostgres)
			repo, err := subscriberRepo.NewSQLStorage(driver, cfg.DatabaseDSN())
			if err != nil {
				return nil, oops.With("storage_driver", cfg.StorageDriver, "context", "failed to initialize subscriber repository").Wrap(err)
			}
			return repo, nil
		default:
			repo, err := subscriberRepo.NewFileStorage(cfg.StoragePath)
			if err != nil {
				return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize subscriber repository").Wrap(err)
			}
			return repo, nil
		}
	})

	// Register Subscriber Service
	do.Provide(injector, func(i do.Injector) (*subscriberService.Service, error) {
		return subscriberService.New(do.MustInvoke[subscriberRepo.Repository](i)), nil
	})

	// Register Conversation State Store
	do.Provide(injector, func(i do.Injector) (conversationRepo.Repository, error) {
		return conversationRepo.NewMemoryStorage(), nil
	})

	// Register Analyzer
	do.Provide(injector, func(i do.Injector) (pushService.Analyzer, error) {
		cfg := do.MustInvoke[*config.Config](i)

		if cfg.Analyzer == config.AnalyzerKindCommand {
			analyzer, err := analyzerService.NewCommandAnalyzer(cfg.AnalyzerCommand)
			if err != nil {
				return nil, oops.With("analyzer_command", cfg.AnalyzerCommand, "context", "failed to initialize analyzer").Wrap(err)
			}
			return analyzer, nil
		}

		analyzer := analyzerService.NewFeedAnalyzer(feedFetchTimeout)
		analyzer.SetLogger(slog.Default())
		return analyzer, nil
	})

	// Register Telegram Bot. Updates reach the handler lazily because the
	// handler depends on the bot through the transport.
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return telegram.NewBot(cfg.TelegramBotToken, cfg.TelegramAPIURL, cfg.TelegramWebhookSecret,
			func(ctx context.Context, b *bot.Bot, update *models.Update) {
				do.MustInvoke[*telegram.Handler](i).HandleUpdate(ctx, b, update)
			})
	})

	// Register Feishu Client
	do.Provide(injector, func(i do.Injector) (*feishu.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return feishu.NewClient(cfg.FeishuAppID, cfg.FeishuAppSecret, cfg.FeishuAPIURL, cfg.SendTimeout), nil
	})

	// Register Transport
	do.Provide(injector, func(i do.Injector) (transport.Transport, error) {
		cfg := do.MustInvoke[*config.Config](i)

		if cfg.Platform == config.PlatformFeishu {
			return do.MustInvoke[*feishu.Client](i), nil
		}

		b, err := do.Invoke[*bot.Bot](i)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}
		return telegram.NewClient(b), nil
	})

	// Register Push Orchestrator
	do.Provide(injector, func(i do.Injector) (*pushService.Orchestrator, error) {
		cfg := do.MustInvoke[*config.Config](i)

		resolver, err := pushService.NewResolver(cfg.BaseTemplate, cfg.ScratchDir())
		if err != nil {
			return nil, oops.With("base_template", cfg.BaseTemplate, "context", "failed to initialize resolver").Wrap(err)
		}

		orchestrator := pushService.New(
			do.MustInvoke[subscriberRepo.Repository](i),
			do.MustInvoke[pushService.Analyzer](i),
			do.MustInvoke[transport.Transport](i),
			resolver,
			cfg.AnalyzeTimeout,
			cfg.SendTimeout,
		)
		orchestrator.SetLogger(slog.Default())
		return orchestrator, nil
	})

	// Register Scheduler
	do.Provide(injector, func(i do.Injector) (*schedulerService.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return schedulerService.New(
			do.MustInvoke[*subscriberService.Service](i),
			do.MustInvoke[*pushService.Orchestrator](i),
			schedulerService.WithLogger(slog.Default()),
			schedulerService.WithFireTimeout(cfg.AnalyzeTimeout+cfg.SendTimeout),
			schedulerService.WithRefresh(cfg.SchedulerRefresh),
		), nil
	})

	// Register Command Router
	do.Provide(injector, func(i do.Injector) (*commandService.Router, error) {
		cfg := do.MustInvoke[*config.Config](i)
		router := commandService.New(
			do.MustInvoke[*subscriberService.Service](i),
			do.MustInvoke[*schedulerService.Scheduler](i),
			do.MustInvoke[*pushService.Orchestrator](i),
			do.MustInvoke[transport.Transport](i),
			cfg.DefaultTimezone,
			cfg.PublicURL,
		)
		router.SetLogger(slog.Default())
		return router, nil
	})

	// Register Conversation Service
	do.Provide(injector, func(i do.Injector) (*conversationService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conversation := conversationService.New(
			do.MustInvoke[conversationRepo.Repository](i),
			do.MustInvoke[*subscriberService.Service](i),
			do.MustInvoke[*commandService.Router](i),
			do.MustInvoke[*schedulerService.Scheduler](i),
			cfg.InputTTL,
		)
		conversation.SetLogger(slog.Default())
		return conversation, nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegram.Handler, error) {
		handler := telegram.New(do.MustInvoke[*conversationService.Service](i))
		handler.SetLogger(slog.Default())
		return handler, nil
	})

	// Register Feishu Handler
	do.Provide(injector, func(i do.Injector) (*feishu.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := feishu.NewHandler(
			do.MustInvoke[*conversationService.Service](i),
			do.MustInvoke[*feishu.Client](i),
			cfg.FeishuVerifyToken,
		)
		handler.SetLogger(slog.Default())
		return handler, nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return feedService.New(do.MustInvoke[subscriberRepo.Repository](i), cfg.FeedLimit), nil
	})

	// Register HTTP Server with the webhook endpoints of the configured platform
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		server := httpServer.New(cfg.HTTPPort, do.MustInvoke[*feedService.Service](i))
		server.SetLogger(slog.Default())

		switch cfg.Platform {
		case config.PlatformFeishu:
			handler := do.MustInvoke[*feishu.Handler](i)
			server.Mount("POST "+feishu.EventPath, http.HandlerFunc(handler.HandleEvent))
			server.Mount("POST "+feishu.CardPath, http.HandlerFunc(handler.HandleCard))
		case config.PlatformTelegram:
			if cfg.TelegramWebhookURL != "" {
				server.Mount("POST "+telegram.WebhookPath, do.MustInvoke[*bot.Bot](i).WebhookHandler())
			}
		}

		return server, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("HTTP server shutdown", "error", err)
		}
	}

	// Let fired pushes finish before the store goes away
	if scheduler, err := do.Invoke[*schedulerService.Scheduler](injector); err == nil && scheduler != nil {
		if err := scheduler.Stop(ctx); err != nil {
			slog.Warn("Scheduler shutdown", "error", err)
		}
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err == nil && cfg.Platform == config.PlatformFeishu {
		if handler, err := do.Invoke[*feishu.Handler](injector); err == nil && handler != nil {
			if err := handler.Wait(ctx); err != nil {
				slog.Warn("Pending Feishu replies abandoned", "error", err)
			}
		}
	}

	if repo, err := do.Invoke[subscriberRepo.Repository](injector); err == nil && repo != nil {
		if err := repo.Close(); err != nil {
			return oops.With("context", "failed to close subscriber repository").Wrap(err)
		}
	}

	return nil
}
