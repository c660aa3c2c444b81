// Package media signs direct browser uploads of course thumbnails and removes them when a
// course goes away.
package media

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const ThumbnailFolder = "educonnect_course_thumbnails"

var ErrUnknownStorage = errors.New("unknown storage type")

// UploadTicket is everything the browser needs to upload one file directly to storage.
// Cloudinary uploads use the signature fields; MinIO uploads PUT to UploadURL.
type UploadTicket struct {
	Provider  string `json:"provider"`
	PublicID  string `json:"public_id"`
	Folder    string `json:"folder,omitempty"`
	UploadURL string `json:"upload_url,omitempty"`
	Signature string `json:"signature,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	CloudName string `json:"cloud_name,omitempty"`
}

type Store interface {
	SignUpload(ctx context.Context) (*UploadTicket, error)
	Remove(ctx context.Context, publicID string) error
}

type Config struct {
	StorageType    string
	CloudinaryURL  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func New(cfg Config) (Store, error) {
	switch cfg.StorageType {
	case "cloudinary":
		return NewCloudinaryStore(cfg.CloudinaryURL, ThumbnailFolder)
	case "minio":
		return NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	default:
		return nil, errors.Wrap(ErrUnknownStorage, cfg.StorageType)
	}
}

func newObjectName() string {
	return uuid.NewString()
}
