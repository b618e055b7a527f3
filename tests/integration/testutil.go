//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/virgil-assistant/virgil/internal/api"
	"github.com/virgil-assistant/virgil/internal/auth"
	"github.com/virgil-assistant/virgil/internal/calc"
	"github.com/virgil-assistant/virgil/internal/chat"
	"github.com/virgil-assistant/virgil/internal/database"
	"github.com/virgil-assistant/virgil/internal/llm"
	"github.com/virgil-assistant/virgil/internal/middleware"
	"github.com/virgil-assistant/virgil/internal/notify"
	"github.com/virgil-assistant/virgil/internal/reminders"
	"github.com/virgil-assistant/virgil/internal/translate"
	"github.com/virgil-assistant/virgil/migrations"
)

type TestEnv struct {
	Pool     *pgxpool.Pool
	Server   *httptest.Server
	Issuer   *auth.TokenIssuer
	Registry *notify.Registry
}

var testEnv *TestEnv

// SetupTestEnv starts Postgres and Redis containers and a full API server
// against them, with fake LLM and translation upstreams. The environment
// is shared by every test in the package.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "virgil_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting redis container: %v", err)
	}
	t.Cleanup(func() { redisContainer.Terminate(ctx) })

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/virgil_test?sslmode=disable", pgHost, pgPort.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.RunMigrations(dsn, migrations.FS); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	t.Cleanup(func() { redisClient.Close() })

	// Fake LLM upstream in the Hugging Face response shape.
	llmUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{{"generated_text": "canned model reply"}})
	}))
	t.Cleanup(llmUpstream.Close)

	translateUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "hola"})
	}))
	t.Cleanup(translateUpstream.Close)

	issuer := auth.NewTokenIssuer("integration-test-secret", "virgil", time.Hour)
	authHandler := auth.NewHandler(issuer, auth.DemoVerifier{})

	provider := llm.NewHuggingFace(llmUpstream.URL, "", 5*time.Second)
	chatRepo := chat.NewRepository(pool)
	chatSvc := chat.NewService(provider, chat.NewHistory(10), chatRepo, 10, 500)

	reminderRepo := reminders.NewRepository(pool)
	reminderHandler := reminders.NewHandler(reminderRepo)
	registry := notify.NewRegistry()
	notifyHandler := notify.NewHandler(registry, issuer, true)
	chatHandler := chat.NewHandler(chatSvc, reminderRepo)

	translateHandler := translate.NewHandler(
		translate.NewClient(translateUpstream.URL, "", 5*time.Second))

	limiter := middleware.NewRateLimiter(redisClient, 1000, 60)

	poller := reminders.NewPoller(reminderRepo, registry, 50*time.Millisecond)
	pollerCtx, stopPoller := context.WithCancel(ctx)
	go poller.Run(pollerCtx)
	t.Cleanup(stopPoller)
	t.Cleanup(registry.CloseAll)

	router := api.NewRouter(pool, api.RouterConfig{
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		AuthRateLimiter:    limiter.Middleware,
	}, api.HandlerSet{
		IssueToken: authHandler.IssueToken,

		Guide:      chatHandler.Guide,
		QuickGuide: chatHandler.QuickGuide,
		Tones:      chatHandler.Tones,
		History:    chatHandler.History,
		DeleteUser: chatHandler.DeleteUser,

		ScheduleReminder: reminderHandler.Schedule,
		PullReminders:    reminderHandler.Pull,

		Calculate: calc.Handler,
		Translate: translateHandler.Translate,

		NotifyWS: notifyHandler.Serve,

		IdentityMiddleware: auth.IdentityMiddleware(issuer, true),
		RequireAuth:        auth.RequireAuth,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	testEnv = &TestEnv{
		Pool:     pool,
		Server:   server,
		Issuer:   issuer,
		Registry: registry,
	}
	return testEnv
}

// Helper functions

func IssueToken(t *testing.T, env *TestEnv, username string) string {
	t.Helper()
	body := map[string]string{"username": username, "password": "pw"}
	resp := DoRequest(t, env, "POST", "/auth/token", body, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token issuance failed: status %d", resp.StatusCode)
	}
	result := ParseResponse(t, resp)
	return result["access_token"].(string)
}

func DoRequest(t *testing.T, env *TestEnv, method, path string, body any, token string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	return resp
}

func ParseResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	return result
}
