package mongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/msomdec/inkwell/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fileStore keeps uploads in a GridFS bucket, keyed by filename. The content
// type is stored in the file metadata.
type fileStore struct {
	db *mongo.Database
}

type gridFile struct {
	ID       primitive.ObjectID `bson:"_id"`
	Metadata struct {
		ContentType string `bson:"contentType"`
	} `bson:"metadata"`
}

func (s *fileStore) bucket() (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(filesBucket))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return b, nil
}

func (s *fileStore) Save(ctx context.Context, key, contentType string, data []byte) error {
	b, err := s.bucket()
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = b.SetWriteDeadline(deadline)
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := b.UploadFromStream(key, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	return nil
}

func (s *fileStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	b, err := s.bucket()
	if err != nil {
		return nil, "", err
	}
	file, err := s.find(ctx, b, key)
	if err != nil {
		return nil, "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = b.SetReadDeadline(deadline)
	}

	var buf bytes.Buffer
	if _, err := b.DownloadToStream(file.ID, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	return buf.Bytes(), file.Metadata.ContentType, nil
}

func (s *fileStore) Delete(ctx context.Context, key string) error {
	b, err := s.bucket()
	if err != nil {
		return err
	}
	file, err := s.find(ctx, b, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := b.Delete(file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// find returns the newest revision stored under key.
func (s *fileStore) find(ctx context.Context, b *gridfs.Bucket, key string) (*gridFile, error) {
	cur, err := b.Find(bson.M{"filename": key},
		options.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: -1}}).SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("find file: %w", err)
		}
		return nil, domain.ErrNotFound
	}
	var f gridFile
	if err := cur.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}
	return &f, nil
}
