package media

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
)

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	now    func() time.Time
}

func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Cloudinary")
	}
	return &CloudinaryStore{cld: cld, folder: folder, now: time.Now}, nil
}

func (s *CloudinaryStore) SignUpload(_ context.Context) (*UploadTicket, error) {
	publicID := newObjectName()
	params, err := api.StructToParams(uploader.UploadParams{
		Folder:   s.folder,
		PublicID: publicID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "prepare signature params")
	}

	timestamp := s.now().Unix()
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(params, s.cld.Config.Cloud.APISecret)
	if err != nil {
		return nil, errors.Wrap(err, "sign upload params")
	}

	return &UploadTicket{
		Provider:  "cloudinary",
		PublicID:  s.folder + "/" + publicID,
		Folder:    s.folder,
		Signature: signature,
		Timestamp: timestamp,
		APIKey:    s.cld.Config.Cloud.APIKey,
		CloudName: s.cld.Config.Cloud.CloudName,
	}, nil
}

func (s *CloudinaryStore) Remove(ctx context.Context, publicID string) error {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return errors.Wrap(err, "destroy cloudinary asset")
	}
	if res.Error.Message != "" {
		return errors.Errorf("destroy cloudinary asset: %s", res.Error.Message)
	}
	return nil
}
