package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/blocniti/blocniti/api"
	"github.com/blocniti/blocniti/internal/auth"
	"github.com/blocniti/blocniti/internal/cache"
	"github.com/blocniti/blocniti/internal/classify"
	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/internal/logging"
	"github.com/blocniti/blocniti/internal/schema"
	"github.com/blocniti/blocniti/pkg/models"
	"github.com/blocniti/blocniti/pkg/repository/mock"
)

const (
	idpSecret = "idp-secret"
	loginURL  = "https://idp.example.com/authorize"
)

// scripted answers every completion with the same reply or error.
type scripted struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *scripted) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

type testEnv struct {
	router    *mux.Router
	store     *mock.Store
	sessions  *auth.Sessions
	completer *scripted
	token     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api.SetLogger(logging.NewLogger("error", io.Discard))

	store := mock.New()
	email := "tenant@example.com"
	store.Users["u1"] = &models.User{ID: "u1", Email: &email, CreatedAt: time.Now(), UpdatedAt: time.Now()}

	schemas, err := schema.Default()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	completer := &scripted{reply: `{"violationClass":"B","deadline":"30 days","analysis":"A persistent leak is hazardous."}`}
	sessions := auth.NewSessions("test-secret", time.Hour)

	cfg := &config.Config{Env: "development"}
	deps := api.Deps{
		Store:      store,
		Classifier: classify.New(completer, schemas, time.Second, nil),
		Schemas:    schemas,
		Sessions:   sessions,
		Provider: auth.NewProvider(auth.ProviderConfig{
			LoginURL:    loginURL,
			Secret:      idpSecret,
			CallbackURL: "http://localhost:5000/api/callback",
		}),
		Cache: cache.NewReadThrough(cache.NewMemory(), time.Minute, nil),
	}

	token, err := sessions.Issue("u1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &testEnv{
		router:    api.SetupRoutes(cfg, "test", "now", deps),
		store:     store,
		sessions:  sessions,
		completer: completer,
		token:     token,
	}
}

// do sends a request authenticated as u1.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAs(t, e.token, method, path, body)
}

func (e *testEnv) doAs(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := e.sessions.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

type validationBody struct {
	Message string              `json:"message"`
	Details []schema.FieldError `json:"details"`
}

func fields(v validationBody) map[string]bool {
	out := make(map[string]bool, len(v.Details))
	for _, d := range v.Details {
		out[d.Field] = true
	}
	return out
}

func validIssue() map[string]any {
	return map[string]any{
		"roomNumber":       2,
		"roomName":         "Kitchen",
		"area":             "Sink",
		"status":           "priority",
		"issueDescription": "Water leaking under the kitchen sink for a week",
		"firstRequestDate": "2024-03-01",
		"issueBegan":       "",
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
