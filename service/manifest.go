package service

import (
	"bytes"
	"context"

	"github.com/minio/minio-go/v7"
)

// MinioManifestStore keeps recording manifests in object storage for the
// post-processing worker to pick up.
type MinioManifestStore struct {
	client *minio.Client
	bucket string
}

func NewMinioManifestStore(client *minio.Client, bucket string) *MinioManifestStore {
	return &MinioManifestStore{client: client, bucket: bucket}
}

func (s *MinioManifestStore) Put(ctx context.Context, objectName string, payload []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}
