package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/infra/memory"
	pgloader "trivia-quiz/internal/infra/postgres"
	infraredis "trivia-quiz/internal/infra/redis"
	transport "trivia-quiz/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand that runs the quiz server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
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
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.CategoryLoader = memory.NewStaticCategoryLoader(sampleCategories())
	if pool != nil {
		loader = pgloader.NewCategoryLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	jokerTTL := config.TTLDuration(cfg.Jokers.TTL, 24*time.Hour)

	var (
		categories app.CategoryRepository
		boards     app.BoardRepository
		jokers     app.JokerLedger
	)
	if redisClient != nil {
		categories = infraredis.NewCategoryRepository(redisClient, loader, quizTTL)
		boards = infraredis.NewBoardStore(redisClient, redisTTL)
		jokers = infraredis.NewJokerLedger(redisClient, jokerTTL)
	} else {
		categories = memory.NewCategoryRepository(loader, quizTTL)
		boards = memory.NewBoardStore()
		jokers = memory.NewJokerLedger(jokerTTL)
	}

	service := app.NewQuizService(boards, categories, memory.NewAttemptStore(), jokers, app.Options{
		QuestionsPerAttempt: cfg.Quiz.QuestionsPerAttempt,
		Shuffle:             cfg.Quiz.Shuffle,
	})
	auth := transport.NewAuthenticator(jwtSecret(cfg), config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, auth),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func jwtSecret(cfg config.Config) string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret
	}
	log.Println("auth.jwtSecret not set, using the development secret")
	return "dev-secret-change-me"
}
