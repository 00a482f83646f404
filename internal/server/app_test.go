package server

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/videotube/internal/server/config"
	"github.com/dmitrijs2005/videotube/internal/server/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopUploader struct{}

func (nopUploader) Upload(context.Context, string) (string, error) {
	return "http://media.local/x", nil
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = "memory://"
	cfg.AccessTokenSecret = "a"
	cfg.RefreshTokenSecret = "r"
	cfg.StaticDir = t.TempDir()
	cfg.UploadStagingDir = filepath.Join(t.TempDir(), "temp")
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.LogLevel = "error"
	return cfg
}

func stubUploader(t *testing.T, u media.Uploader, err error) {
	orig := newUploader
	t.Cleanup(func() { newUploader = orig })
	newUploader = func(context.Context, *config.Config) (media.Uploader, error) { return u, err }
}

func TestNewApp_MemoryBackend(t *testing.T) {
	stubUploader(t, nopUploader{}, nil)

	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, app.httpServer)
	require.NotNil(t, app.userService)
	assert.NoError(t, app.Close())
}

func TestNewApp_Errors(t *testing.T) {
	stubUploader(t, nil, errors.New("no s3"))

	_, err := NewApp(context.Background(), testConfig(t))
	assert.ErrorContains(t, err, "media init error")

	cfg := testConfig(t)
	cfg.DatabaseDSN = "redis://localhost"
	_, err = NewApp(context.Background(), cfg)
	assert.ErrorContains(t, err, "db init error")
}

func TestRun_StopsOnCancel(t *testing.T) {
	stubUploader(t, nopUploader{}, nil)

	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
