package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":80", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Server.Playground)
	assert.Equal(t, "generated", cfg.Artifacts.Dir)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":8080"
  playground: true
  shutdown_timeout: 3s
database:
  driver: postgres
  dsn: postgres://localhost/collection
  slow_query_threshold: 1s
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Server.Playground)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, time.Second, cfg.Database.SlowQueryThreshold)
	assert.Equal(t, "json", cfg.Log.Format)
	// Unset keys keep their defaults.
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "server:\n  addr: \":8080\"\ndatabase:\n  max_open_conns: 4\n")
	t.Setenv("COLLECTION_SERVER_ADDR", ":9090")
	t.Setenv("COLLECTION_DATABASE_MAX_OPEN_CONNS", "20")
	t.Setenv("COLLECTION_DATABASE_DSN", "file:other.db")
	t.Setenv("COLLECTION_SERVER_SHUTDOWN_TIMEOUT", "1m")
	t.Setenv("COLLECTION_ARTIFACTS_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "file:other.db", cfg.Database.DSN)
	assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Artifacts.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "config: read")
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeFile(t, "server:\n  port: 80\n"))
		assert.ErrorContains(t, err, "config: parse")
	})

	t.Run("bad environment", func(t *testing.T) {
		t.Setenv("COLLECTION_DATABASE_MAX_IDLE_CONNS", "many")
		_, err := Load("")
		assert.ErrorContains(t, err, "config: environment")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeFile(t, `
server:
  addr: ""
database:
  driver: oracle
log:
  level: loud
  format: xml
`))
		require.Error(t, err)
		for _, msg := range []string{
			"config: invalid configuration",
			"server.addr is required",
			`database.driver: dialect: unsupported dialect "oracle"`,
			"log.level",
			`log.format: unknown format "xml"`,
		} {
			assert.Contains(t, err.Error(), msg)
		}
	})
}

func TestLog(t *testing.T) {
	level, err := Log{Level: "warn"}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, ok := Log{Format: "json"}.Handler(io.Discard, slog.LevelInfo).(*slog.JSONHandler)
	assert.True(t, ok)
	_, ok = Log{Format: "text"}.Handler(io.Discard, slog.LevelInfo).(*slog.TextHandler)
	assert.True(t, ok)
}

type thresholdRecorder struct{ d time.Duration }

func (r *thresholdRecorder) SetSlowThreshold(d time.Duration) { r.d = d }

func TestReloader(t *testing.T) {
	var level slog.LevelVar
	drv := &thresholdRecorder{}
	r := &Reloader{Level: &level, Driver: drv}

	cfg := Default()
	cfg.Log.Level = "error"
	cfg.Database.SlowQueryThreshold = 2 * time.Second
	r.Apply(cfg)
	assert.Equal(t, slog.LevelError, level.Level())
	assert.Equal(t, 2*time.Second, drv.d)

	// A nil driver is ignored.
	(&Reloader{Level: &level}).Apply(Default())
	assert.Equal(t, slog.LevelInfo, level.Level())
}

func TestWatch(t *testing.T) {
	path := writeFile(t, "log:\n  level: info\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	applied := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)), func(cfg *Config) {
			applied <- cfg
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-applied:
			reloaded = cfg.Log.Level == "debug"
		case <-tick.C:
			// Rewrite until the watcher has picked up a change.
			require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
		case <-deadline:
			t.Fatal("configuration was not reloaded")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "collection.yaml"), slog.Default(), func(*Config) {})
	assert.ErrorContains(t, err, "config: watch")
}
