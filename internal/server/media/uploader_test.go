package media

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	url  string
	err  error
	seen []string
}

func (f *fakeUploader) Upload(_ context.Context, p string) (string, error) {
	f.seen = append(f.seen, p)
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return f.url, f.err
}

func TestCleanupUploader_RemovesOnSuccess(t *testing.T) {
	p := stageFile(t, "a.png", "x")
	next := &fakeUploader{url: "http://m/a.png"}

	url, err := WithCleanup(next, logging.Discard()).Upload(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "http://m/a.png", url)
	assert.Equal(t, []string{p}, next.seen)

	_, err = os.Stat(p)
	assert.True(t, errors.Is(err, os.ErrNotExist), "staged file must be removed")
}

func TestCleanupUploader_RemovesOnFailure(t *testing.T) {
	p := stageFile(t, "a.png", "x")
	next := &fakeUploader{err: errors.New("upstream down")}

	_, err := WithCleanup(next, logging.Discard()).Upload(context.Background(), p)
	assert.EqualError(t, err, "upstream down")

	_, err = os.Stat(p)
	assert.True(t, errors.Is(err, os.ErrNotExist), "staged file must be removed")
}
