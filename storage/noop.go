package storage

import "context"

// NoopUploader accepts uploads without storing anything. It keeps the service
// bootable with no object store configured; returned URLs are key-only markers.
type NoopUploader struct{}

// Upload discards the body and fabricates a URL from the key.
func (NoopUploader) Upload(_ context.Context, input UploadInput) (*UploadResult, error) {
	return &UploadResult{URL: "noop://" + input.Key, Key: input.Key}, nil
}
