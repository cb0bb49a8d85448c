package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const bucketName = "photos"

// GridFSStore keeps blobs in a MongoDB GridFS bucket, using the content
// address as the GridFS file id.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

var _ Store = (*GridFSStore)(nil)

// NewGridFSStore opens the photo bucket in db.
func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

type fileDoc struct {
	ID       string `bson:"_id"`
	Metadata struct {
		ContentType string `bson:"contentType"`
	} `bson:"metadata"`
}

// Put uploads data unless a file with the same content address already exists.
func (s *GridFSStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	id := Key(data)
	if _, err := s.find(ctx, id); err == nil {
		return id, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if err := s.bucket.UploadFromStreamWithID(id, id, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return id, nil
}

// Get downloads the blob stored under id.
func (s *GridFSStore) Get(ctx context.Context, id string) (*Blob, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(id, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download photo: %w", err)
	}
	return &Blob{Data: buf.Bytes(), ContentType: doc.Metadata.ContentType}, nil
}

// Delete removes the file; deleting a missing id is not an error.
func (s *GridFSStore) Delete(ctx context.Context, id string) error {
	if err := s.bucket.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

func (s *GridFSStore) find(ctx context.Context, id string) (*fileDoc, error) {
	cursor, err := s.bucket.FindContext(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("find photo: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("find photo: %w", err)
		}
		return nil, ErrNotFound
	}
	var doc fileDoc
	if err := cursor.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode photo metadata: %w", err)
	}
	return &doc, nil
}
