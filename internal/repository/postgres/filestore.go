package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/msomdec/inkwell/internal/domain"
)

// fileStore keeps upload bytes in a bytea column.
type fileStore struct {
	pool *pgxpool.Pool
}

func (s *fileStore) Save(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO file_blobs (storage_key, content_type, data) VALUES ($1, $2, $3)`,
		key, contentType, data)
	if err != nil {
		return fmt.Errorf("save file blob: %w", err)
	}
	return nil
}

func (s *fileStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT data, content_type FROM file_blobs WHERE storage_key = $1`, key,
	).Scan(&data, &contentType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("get file blob: %w", err)
	}
	return data, contentType, nil
}

func (s *fileStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM file_blobs WHERE storage_key = $1`, key); err != nil {
		return fmt.Errorf("delete file blob: %w", err)
	}
	return nil
}
