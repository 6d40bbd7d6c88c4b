package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/julienschmidt/httprouter"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/germain250/quizly/internal/app"
	"github.com/germain250/quizly/internal/config"
	"github.com/germain250/quizly/internal/domain"
	"github.com/germain250/quizly/internal/infra/memory"
	pgloader "github.com/germain250/quizly/internal/infra/postgres"
	redisbank "github.com/germain250/quizly/internal/infra/redis"
	transport "github.com/germain250/quizly/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(sampleBank())
	if pool != nil {
		loader = pgloader.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var bank app.BankRepository
	if redisClient != nil {
		bank = redisbank.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		bank = memory.NewBankRepository(loader, bankTTL)
	}

	settings := settingsFromConfig(cfg)
	registry := app.NewRegistry()
	hub := transport.NewHub(logger)
	service := app.NewRoomService(registry, bank, hub, settings, logger)
	wsHandler := transport.NewWSHandler(service, hub, logger)

	publicURL := cfg.Server.PublicURL
	if publicURL == "" {
		publicURL = "http://localhost:" + finalPort
	}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.HandlerFunc(http.MethodGet, "/ws", wsHandler.ServeWS)
	router.GET("/rooms/:code/qr", transport.NewQRHandler(service, publicURL))

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quizly", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server...")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func settingsFromConfig(cfg config.Config) app.Settings {
	settings := app.DefaultSettings()
	if cfg.Game.QuestionSeconds > 0 {
		settings.QuestionSeconds = cfg.Game.QuestionSeconds
	}
	if cfg.Game.IntermissionSeconds > 0 {
		settings.Intermission = time.Duration(cfg.Game.IntermissionSeconds) * time.Second
	}
	if cfg.Game.DefaultCategory != "" {
		settings.DefaultCategory = cfg.Game.DefaultCategory
	}
	if cfg.Game.DefaultQuestionCount > 0 {
		settings.DefaultQuestionCount = cfg.Game.DefaultQuestionCount
	}
	return settings
}

// sampleBank provides a minimal question bank for running without
// Postgres; swap in the JSONB-backed loader in production.
func sampleBank() map[string]domain.Category {
	return map[string]domain.Category{
		"general-knowledge": {
			ID: "general-knowledge",
			Questions: []domain.Question{
				{
					ID:      "gk-1",
					Prompt:  "What is the capital of France?",
					Options: []string{"Paris", "Lyon", "Marseille", "Nice"},
					Answer:  "Paris",
				},
				{
					ID:      "gk-2",
					Prompt:  "Which planet is known as the Red Planet?",
					Options: []string{"Venus", "Mars", "Jupiter", "Saturn"},
					Answer:  "Mars",
				},
				{
					ID:      "gk-3",
					Prompt:  "What is 2 + 2?",
					Options: []string{"3", "4", "5", "22"},
					Answer:  "4",
				},
			},
		},
	}
}
