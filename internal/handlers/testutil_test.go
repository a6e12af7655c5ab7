package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/agentarium/agentarium/internal/config"
	"github.com/agentarium/agentarium/internal/database"
	"github.com/agentarium/agentarium/internal/handlers"
	"github.com/agentarium/agentarium/internal/routes"
	"github.com/agentarium/agentarium/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// stubGenerator stands in for the LLM provider chain.
type stubGenerator struct {
	script string
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.script, nil
}

// stubTranscriber stands in for the speech provider.
type stubTranscriber struct {
	result *services.Transcription
	err    error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, filename string, audio []byte) (*services.Transcription, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type testEnv struct {
	app         *fiber.App
	db          *gorm.DB
	generator   *stubGenerator
	transcriber *stubTranscriber
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Named in-memory database: every pooled connection must see the same
	// data, but each test gets its own database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// One connection keeps concurrent writers (the reset fan-out) serialized
	// at the pool instead of tripping sqlite table locks.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.MigrateOn(db))

	cfg := &config.Config{JWTSecret: testSecret, GenerateTimeoutSeconds: 45}

	generator := &stubGenerator{}
	transcriber := &stubTranscriber{
		result: &services.Transcription{Text: "a quiet morning at the station", Language: "en", DurationSeconds: 2.4},
	}

	app := fiber.New()
	routes.Setup(app, cfg,
		handlers.NewAuthHandler(cfg, db),
		handlers.NewAgentHandler(db),
		handlers.NewSavedAgentHandler(db),
		handlers.NewSimulationHandler(db),
		handlers.NewConversationHandler(db, generator, 45*time.Second),
		handlers.NewObserverHandler(db),
		handlers.NewSpeechHandler(db, transcriber),
	)

	return &testEnv{app: app, db: db, generator: generator, transcriber: transcriber}
}

// request performs a JSON request against the test app and decodes the body.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	status, raw := e.rawRequest(t, method, path, token, body)
	if len(raw) == 0 {
		return status, nil
	}
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return status, decoded
}

// requestList is request for endpoints returning a bare JSON array.
func (e *testEnv) requestList(t *testing.T, method, path, token string, body interface{}) (int, []map[string]interface{}) {
	t.Helper()
	status, raw := e.rawRequest(t, method, path, token, body)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return status, decoded
}

func (e *testEnv) rawRequest(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// storm fires n requests concurrently, released together, and returns the
// status codes in completion order.
func (e *testEnv) storm(t *testing.T, n int, build func(i int) *http.Request) []int {
	t.Helper()

	start := make(chan struct{})
	statuses := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		req := build(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			resp, err := e.app.Test(req, -1)
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	close(start)
	wg.Wait()
	close(statuses)

	codes := make([]int, 0, n)
	for s := range statuses {
		codes = append(codes, s)
	}
	return codes
}

// guestToken provisions a fresh guest user and returns its bearer token.
func (e *testEnv) guestToken(t *testing.T) string {
	t.Helper()
	status, body := e.request(t, "POST", "/api/auth/test-login", "", nil)
	require.Equal(t, http.StatusOK, status)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

// validAgentBody returns a complete agent creation payload.
func validAgentBody(name, archetype string) map[string]interface{} {
	return map[string]interface{}{
		"name":      name,
		"archetype": archetype,
		"personality": map[string]int{
			"extroversion":    5,
			"optimism":        5,
			"curiosity":       5,
			"cooperativeness": 5,
			"energy":          5,
		},
		"goal":          "g",
		"expertise":     "e",
		"background":    "b",
		"avatar_prompt": "p",
	}
}

// createAgent creates an agent for the token's user and returns its id.
func (e *testEnv) createAgent(t *testing.T, token, name, archetype string) string {
	t.Helper()
	status, body := e.request(t, "POST", "/api/agents", token, validAgentBody(name, archetype))
	require.Equal(t, http.StatusOK, status, "create agent: %v", body)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// scriptFor builds a stub dialogue script mentioning every given name.
func scriptFor(names ...string) string {
	var b bytes.Buffer
	for i, n := range names {
		fmt.Fprintf(&b, "%s [curious]: line %d of the conversation\n", n, i+1)
	}
	return b.String()
}

var errStubProvider = errors.New("stub provider down")
