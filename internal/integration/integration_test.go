package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"
	pgloader "trivia-quiz/internal/infra/postgres"
	pgmigrations "trivia-quiz/internal/infra/postgres/migrations"
	infraredis "trivia-quiz/internal/infra/redis"
	"trivia-quiz/internal/infra/restclient"
	transport "trivia-quiz/internal/transport/http"
)

func TestQuizAgainstPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCategory(t, ctx, pgURL, sampleCategory())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewCategoryLoader(pool)
	if _, err := loader.LoadCategory(ctx, "missing"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	service := app.NewQuizService(
		infraredis.NewBoardStore(redisClient, 5*time.Minute),
		infraredis.NewCategoryRepository(redisClient, loader, 5*time.Minute),
		memory.NewAttemptStore(),
		infraredis.NewJokerLedger(redisClient, time.Hour),
		app.Options{},
	)
	auth := transport.NewAuthenticator("integration-secret", time.Hour)
	server := httptest.NewServer(transport.NewRouter(service, auth))
	defer server.Close()

	alice := clientFor(t, auth, server.URL, "u1", "Alice")
	bob := clientFor(t, auth, server.URL, "u2", "Bob")

	for _, c := range []*restclient.Client{alice, bob} {
		attempt, err := c.StartQuiz(ctx, "general")
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if len(attempt.Questions) != 2 {
			t.Fatalf("unexpected attempt %+v", attempt)
		}
	}

	res, err := bob.SubmitAnswer(ctx, domain.AnswerSubmission{QuestionID: "q1", AnswerID: "o2"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.IsCorrect || res.PointsAwarded != 5 {
		t.Fatalf("expected 5 points, got %+v", res)
	}

	if _, err := alice.UseElimination(ctx, "general", "q2"); err != nil {
		t.Fatalf("eliminate: %v", err)
	}
	_, err = alice.UseElimination(ctx, "general", "q1")
	var apiErr *restclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 409 {
		t.Fatalf("expected joker conflict, got %v", err)
	}

	lb, err := alice.Leaderboard(ctx, "general")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 2 || lb.Entries[0].UserID != "u2" {
		t.Fatalf("expected bob leading, got %+v", lb.Entries)
	}

	for _, key := range []string{"category:general", "board:live:general", "joker:u1:general:elimination"} {
		if n, err := redisClient.Exists(ctx, key).Result(); err != nil || n != 1 {
			t.Fatalf("expected redis key %s, got n=%d err=%v", key, n, err)
		}
	}
}

func clientFor(t *testing.T, auth *transport.Authenticator, baseURL, userID, name string) *restclient.Client {
	t.Helper()
	token, err := auth.Issue(userID, name)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return restclient.New(baseURL, token)
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "trivia", "POSTGRES_DB": "trivia"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:trivia@%s:%s/trivia?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedCategory(t *testing.T, ctx context.Context, dsn string, bank domain.CategoryBank) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(bank)
	if err != nil {
		t.Fatalf("marshal category: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO categories (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, bank.ID, string(data)); err != nil {
		t.Fatalf("insert category: %v", err)
	}
}

func sampleCategory() domain.CategoryBank {
	return domain.CategoryBank{
		Category: domain.Category{ID: "general", Name: "General knowledge"},
		Questions: []domain.BankQuestion{
			{
				ID:         "q1",
				Text:       "What is 2 + 2?",
				Difficulty: domain.DifficultyEasy,
				Options: []domain.Option{
					{ID: "o1", Text: "3"},
					{ID: "o2", Text: "4", Correct: true},
					{ID: "o3", Text: "5"},
				},
			},
			{
				ID:         "q2",
				Text:       "Largest ocean?",
				Difficulty: domain.DifficultyMedium,
				Options: []domain.Option{
					{ID: "o1", Text: "Atlantic"},
					{ID: "o2", Text: "Indian"},
					{ID: "o3", Text: "Pacific", Correct: true},
					{ID: "o4", Text: "Arctic"},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
