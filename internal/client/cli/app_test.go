package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/taskboard-be/internal/client"
	"github.com/hongminglow/taskboard-be/internal/client/sessionstore"
	"github.com/hongminglow/taskboard-be/internal/config"
	"github.com/hongminglow/taskboard-be/internal/models/dto"
	"github.com/hongminglow/taskboard-be/internal/server"
	"github.com/hongminglow/taskboard-be/internal/storage/memory"
)

type harness struct {
	t         *testing.T
	serverURL string
	sessionDB string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Config{
		Port:          8080,
		StorageDriver: config.DriverMemory,
		JWTSecret:     "0123456789abcdef0123456789abcdef",
		JWTIssuer:     "taskboard-test",
		JWTTTL:        time.Hour,
		CORSOrigins:   []string{"*"},
		LogLevel:      "info",
		BcryptCost:    4,
	}
	store := memory.NewStore()
	ts := httptest.NewServer(server.New(cfg, store, store, zap.NewNop().Sugar()).Handler())
	t.Cleanup(ts.Close)
	return &harness{
		t:         t,
		serverURL: ts.URL,
		sessionDB: filepath.Join(t.TempDir(), "state", "session.db"),
	}
}

func (h *harness) run(stdin string, args ...string) (int, string, string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--server", h.serverURL, "--session-db", h.sessionDB}, args...)
	code := Main(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (h *harness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	code, out, errOut := h.run(stdin, args...)
	require.Equal(h.t, 0, code, "stderr: %s", errOut)
	return out
}

func (h *harness) signup(name, email string) {
	h.t.Helper()
	h.mustRun("password123\n", "register", "--name", name, "--email", email)
	h.mustRun("password123\n", "login", "--email", email)
}

func createdID(t *testing.T, out string) string {
	t.Helper()
	_, id, ok := strings.Cut(strings.TrimSpace(out), "Created ")
	require.True(t, ok, out)
	return id
}

func TestTaskWorkflow(t *testing.T) {
	h := newHarness(t)
	h.signup("Alice", "alice@example.com")

	assert.Contains(t, h.mustRun("", "whoami"), "Alice <alice@example.com>")

	report := createdID(t, h.mustRun("", "add", "--title", "Write report", "--description", "q3"))
	h.mustRun("", "add", "Buy", "milk")

	out := h.mustRun("", "list")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "Buy milk")

	out = h.mustRun("", "list", "--search", "REPORT")
	assert.Contains(t, out, report)
	assert.NotContains(t, out, "Buy milk")

	assert.Contains(t, h.mustRun("", "toggle", report), "Write report is now completed")
	assert.Contains(t, h.mustRun("", "list", "--status", "completed"), report)
	pending := h.mustRun("", "list", "--status", "pending")
	assert.NotContains(t, pending, report)
	assert.Contains(t, pending, "Buy milk")
	assert.Equal(t, "total: 2  pending: 1  completed: 1\n", h.mustRun("", "stats"))

	out = h.mustRun("", "edit", report, "--title", "Final report")
	assert.Contains(t, out, "Final report")
	assert.Contains(t, out, "completed")

	h.mustRun("", "rm", report)
	h.mustRun("", "rm", report)
	assert.NotContains(t, h.mustRun("", "list"), report)

	code, _, errOut := h.run("", "edit", report, "--title", "Back again")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "error: ")

	h.mustRun("", "logout")
	code, _, errOut = h.run("", "whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not logged in")
}

func TestFailedLoginKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.signup("Alice", "alice@example.com")

	code, _, errOut := h.run("wrong-password\n", "login", "--email", "alice@example.com")
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, strings.Count(errOut, "\n"))
	assert.NotContains(t, errOut, "expired")

	assert.Contains(t, h.mustRun("", "whoami"), "alice@example.com")
}

func TestProfileSetOnlyChangesGivenFlags(t *testing.T) {
	h := newHarness(t)
	h.signup("Alice", "alice@example.com")

	out := h.mustRun("", "profile-set", "--bio", "Gopher", "--skills", "go, sql,,")
	assert.Contains(t, out, "Name:   Alice")
	assert.Contains(t, out, "Bio:    Gopher")
	assert.Contains(t, out, "Skills: go, sql")

	out = h.mustRun("", "profile-set", "--bio", "")
	assert.Contains(t, out, "Skills: go, sql")
	assert.Contains(t, out, "Bio:    \n")

	h.mustRun("", "profile-set", "--name", "Alicia")
	assert.Contains(t, h.mustRun("", "whoami"), "Alicia")

	code, _, errOut := h.run("", "profile-set")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "nothing to update")
}

func TestValidationErrorsAreReported(t *testing.T) {
	h := newHarness(t)
	h.signup("Alice", "alice@example.com")

	code, _, errOut := h.run("", "add", "--title", "   ")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(errOut, "error: "), errOut)

	code, _, errOut = h.run("", "add", "--title", "x", "--status", "done")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown task status")

	code, _, errOut = h.run("", "toggle", "not-a-uuid")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid task id")

	code, _, _ = h.run("", "toggle", "6f1f6c57-5d0b-4c3c-9c43-2b9a7f0d6a11")
	assert.Equal(t, 1, code)
}

func TestCommandsRequireLogin(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{{"list"}, {"stats"}, {"profile"}, {"add", "--title", "x"}} {
		code, _, errOut := h.run("", args...)
		assert.Equal(t, 1, code, args)
		assert.Contains(t, errOut, "not logged in", args)
	}

	code, _, _ := h.run("", "frobnicate")
	assert.Equal(t, 2, code)
	code, _, _ = h.run("")
	assert.Equal(t, 2, code)
}

func TestRegisterPromptsForMissingFields(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("Bob\nbob@example.com\npassword123\n", "register")
	assert.Contains(t, out, "Account created for bob@example.com")

	code, _, errOut := h.run("Bob\nbob@example.com\npassword123\n", "register")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "error: ")
}

func TestSearchShowsLatestTerm(t *testing.T) {
	h := newHarness(t)
	h.signup("Alice", "alice@example.com")
	h.mustRun("", "add", "--title", "Write report")
	h.mustRun("", "add", "--title", "Buy milk")

	out := h.mustRun("rep\nreport\n", "search")
	assert.Contains(t, out, `results for "report"`)
	assert.Contains(t, out, "Write report")
	assert.NotContains(t, out, "Buy milk")
}

func TestSearchWithPausesReturnsLatest(t *testing.T) {
	h := newHarness(t)
	h.signup("Alice", "alice@example.com")
	h.mustRun("", "add", "--title", "Write report")

	ctx := context.Background()
	store, err := sessionstore.Open(ctx, h.sessionDB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	api := client.NewAPI(h.serverURL, nil)
	pr, pw := io.Pipe()
	var out, errOut bytes.Buffer
	app := NewApp(api, client.NewSessionManager(api, store), pr, &out, &errOut)
	app.delay = 10 * time.Millisecond

	go func() {
		for _, term := range []string{"a", "b", "c", "d", "e", "report"} {
			fmt.Fprintln(pw, term)
			time.Sleep(80 * time.Millisecond)
		}
		fmt.Fprintln(pw)
		_ = pw.Close()
	}()

	start := time.Now()
	code := app.Run(ctx, []string{"search"})
	require.Equal(t, 0, code, "stderr: %s", errOut.String())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, out.String(), `results for "e":`)
	assert.Contains(t, out.String(), `results for "report":`)
	assert.Empty(t, errOut.String())
}

type brokenSaves struct {
	session client.Session
}

func (b *brokenSaves) LoadSession(context.Context) (client.Session, bool, error) {
	return b.session, true, nil
}

func (b *brokenSaves) SaveSession(context.Context, client.Session) error {
	return errors.New("disk full")
}

func (b *brokenSaves) ClearSession(context.Context) error { return nil }

func TestProfileWarnsWhenSessionSaveFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	api := client.NewAPI(h.serverURL, nil)
	_, err := api.Register(ctx, dto.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	resp, err := api.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	sessions := &brokenSaves{session: client.Session{Token: resp.Token, User: resp.User}}
	var out, errOut bytes.Buffer
	app := NewApp(api, client.NewSessionManager(api, sessions), strings.NewReader(""), &out, &errOut)

	code := app.Run(ctx, []string{"profile-set", "--bio", "Gopher"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Bio:    Gopher")
	assert.Equal(t, "warning: could not update saved session: save session: disk full\n", errOut.String())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TASKCTL_SERVER_URL", "http://tasks.internal:9000/")
	t.Setenv("TASKCTL_SESSION_DB", "/tmp/taskctl.db")

	cfg, rest, err := LoadConfig([]string{"list", "--status", "pending"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "http://tasks.internal:9000", cfg.ServerURL)
	assert.Equal(t, "/tmp/taskctl.db", cfg.SessionDB)
	assert.Equal(t, []string{"list", "--status", "pending"}, rest)

	cfg, _, err = LoadConfig([]string{"--server", "http://other:1", "stats"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "http://other:1", cfg.ServerURL)
}
