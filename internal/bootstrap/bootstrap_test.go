package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TillSync_Go/internal/config"
	"github.com/osse101/TillSync_Go/internal/remote"
)

func TestCleanupLogs_KeepsMostRecent(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"session_2026-01-01_08-00-00.log",
		"session_2026-01-02_08-00-00.log",
		"session_2026-01-03_08-00-00.log",
		"session_2026-01-04_08-00-00.log",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deadletter.jsonl"), nil, 0o644))

	cleanupLogs(dir, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"session_2026-01-03_08-00-00.log",
		"session_2026-01-04_08-00-00.log",
		"deadletter.jsonl",
	}, left)
}

func TestCleanupLogs_UnderLimitUntouched(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session_a.log"), nil, 0o644))

	cleanupLogs(dir, LogFileRetentionCount)

	_, err := os.Stat(filepath.Join(dir, "session_a.log"))
	assert.NoError(t, err)
}

func TestSetupLogger_CreatesSessionFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := &config.Config{LogDir: dir, LogLevel: "debug", LogFormat: "json", ServiceName: "tillsync", Environment: "test", TerminalID: "till-01"}

	f, err := SetupLogger(cfg)
	require.NoError(t, err)
	defer f.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "session_")
}

func TestInitializeEventSystem(t *testing.T) {
	cfg := &config.Config{DeadLetterPath: filepath.Join(t.TempDir(), "data", "deadletter.jsonl")}

	bus, publisher, err := InitializeEventSystem(cfg)
	require.NoError(t, err)
	require.NotNil(t, bus)
	require.NotNil(t, publisher)
	assert.NoError(t, publisher.Shutdown(context.Background()))
}

func TestSetupRemote_REST(t *testing.T) {
	cfg := &config.Config{RemoteMode: config.RemoteModeREST, RemoteURL: "http://localhost:54321", RemoteGatewayKey: "anon"}

	rc, err := SetupRemote(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &remote.Client{}, rc.Remote)
	assert.NotNil(t, rc.Sessions)
	assert.NotNil(t, rc.SessionProvider())
	assert.Nil(t, rc.Pool)
	rc.Close()
}

func TestSetupRemote_UnknownMode(t *testing.T) {
	_, err := SetupRemote(context.Background(), &config.Config{RemoteMode: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnknownRemoteMode)
}

func TestRemoteComponents_NilSessionProvider(t *testing.T) {
	assert.Nil(t, RemoteComponents{}.SessionProvider())
}

func TestGracefulShutdown_EmptyComponents(t *testing.T) {
	assert.NotPanics(t, func() {
		GracefulShutdown(context.Background(), ShutdownComponents{})
	})
}
