package media

import (
	"context"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

const presignExpiry = 15 * time.Minute

type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		// a fixed region keeps presigning local; no bucket-location lookup
		Region: "us-east-1",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize MinIO")
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) SignUpload(ctx context.Context) (*UploadTicket, error) {
	object := ThumbnailFolder + "/" + newObjectName()
	u, err := s.client.PresignedPutObject(ctx, s.bucket, object, presignExpiry)
	if err != nil {
		return nil, errors.Wrap(err, "presign upload")
	}
	return &UploadTicket{
		Provider:  "minio",
		PublicID:  object,
		UploadURL: u.String(),
	}, nil
}

func (s *MinioStore) Remove(ctx context.Context, publicID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{})
	return errors.Wrap(err, "remove object")
}
