package service

import "context"

// ObjectStorage is the media gateway as seen by the services. It deals only
// in opaque object keys; bucket names and credentials stay inside the
// implementation.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
