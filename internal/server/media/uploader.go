// Package media pushes locally staged uploads to durable object storage.
package media

import (
	"context"

	"github.com/dmitrijs2005/videotube/internal/filex"
	"github.com/dmitrijs2005/videotube/internal/logging"
)

// Uploader stores the file at localPath and returns its durable URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// CleanupUploader removes the staged file after every upload attempt,
// successful or not. Removal failures are logged and never returned.
type CleanupUploader struct {
	next Uploader
	log  logging.Logger
}

func WithCleanup(next Uploader, log logging.Logger) *CleanupUploader {
	return &CleanupUploader{next: next, log: log}
}

func (c *CleanupUploader) Upload(ctx context.Context, localPath string) (string, error) {
	defer func() {
		if err := filex.RemoveIfExists(localPath); err != nil {
			c.log.Warn(ctx, "failed to remove staged file", "path", localPath, "error", err)
		}
	}()
	return c.next.Upload(ctx, localPath)
}
