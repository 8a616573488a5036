package domain

import "context"

// FileStore abstracts raw file byte storage for uploads. Get returns
// ErrNotFound for unknown keys.
type FileStore interface {
	Save(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}
