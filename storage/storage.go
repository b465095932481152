package storage

import "context"

// UploadInput describes one object upload.
type UploadInput struct {
	Key         string
	Body        []byte
	ContentType string
}

// UploadResult describes the stored object.
type UploadResult struct {
	URL string
	Key string
}

// Uploader stores complaint and solution images and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}
