package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/internal/logging"
	"github.com/blocniti/blocniti/internal/storage"
	"github.com/blocniti/blocniti/pkg/models"
)

func testEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "blocniti.db")
	t.Setenv("BLOCNITI_ENV", "development")
	t.Setenv("BLOCNITI_DATABASE_PATH", dbPath)
	t.Setenv("BLOCNITI_DB_DRIVER", "sqlite")
	t.Setenv("BLOCNITI_CLASSIFIER_PROVIDER", "rubric")
	t.Setenv("BLOCNITI_LOG_LEVEL", "error")
	return dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	dbPath := testEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestReportCommand(t *testing.T) {
	dbPath := testEnv(t)
	ctx := context.Background()

	store, err := storage.Open(ctx, config.Database{Driver: config.DriverSQLite, Path: dbPath}, nil)
	require.NoError(t, err)
	_, err = store.UpsertUser(ctx, &models.UpsertUser{ID: "u1"})
	require.NoError(t, err)
	_, err = store.CreateRepairIssue(ctx, "u1", &models.NewRepairIssue{
		RoomName: "Kitchen", Area: "Stove", Status: models.StatusUrgent, IssueDescription: "Gas smell near the stove",
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	pdfPath := filepath.Join(t.TempDir(), "report.pdf")
	out, err := run(t, "report", "--user", "u1", "--out", pdfPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 repair issues")

	b, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))

	_, err = run(t, "report", "--user", "nobody", "--out", filepath.Join(t.TempDir(), "empty.pdf"))
	assert.Error(t, err)
}

func TestInvalidConfigRejected(t *testing.T) {
	testEnv(t)
	t.Setenv("BLOCNITI_ENV", "production")
	t.Setenv("BLOCNITI_SESSION_SECRET", "")

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "session_secret")
}

func TestBuildCache(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewLogger("error", io.Discard)

	c, err := buildCache(ctx, config.Cache{Driver: config.CacheNone}, logger)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = buildCache(ctx, config.Cache{Driver: config.CacheMemory}, logger)
	require.NoError(t, err)
	assert.NotNil(t, c)

	mr := miniredis.RunT(t)
	c, err = buildCache(ctx, config.Cache{Driver: config.CacheRedis, RedisAddr: mr.Addr()}, logger)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists("k"))
	require.NoError(t, c.Close())

	mr.Close()
	_, err = buildCache(ctx, config.Cache{Driver: config.CacheRedis, RedisAddr: mr.Addr()}, logger)
	assert.Error(t, err)
}

func TestBuildApp(t *testing.T) {
	dbPath := testEnv(t)
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	cfg.Database.Path = dbPath

	a, err := buildApp(context.Background(), cfg, logging.NewLogger("error", io.Discard))
	require.NoError(t, err)
	assert.NotNil(t, a.Deps.Store)
	assert.NotNil(t, a.Deps.Classifier)
	assert.NotNil(t, a.Deps.Cache)
	require.NoError(t, a.Close())
}
