package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"oilcycle-platform/pkg/config"
	"oilcycle-platform/pkg/errutil"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	config *config.Config
	client *minio.Client
}

type ServiceParams struct {
	fx.In
	Config *config.Config
	Client *minio.Client
}

func NewService(p ServiceParams) *Service {
	return &Service{
		config: p.Config,
		client: p.Client,
	}
}

// Store writes an uploaded photo to object storage and returns its public
// URL. The object key is random; the original filename only contributes
// the extension.
func (s *Service) Store(ctx context.Context, header *multipart.FileHeader) (string, error) {
	if header == nil || header.Size == 0 {
		return "", errutil.ValidationFailed("file is required",
			errutil.WithDetails(errutil.Detail{Field: "file", Message: "required"}))
	}

	file, err := header.Open()
	if err != nil {
		return "", errutil.BadRequest("failed to read uploaded file", errutil.WithErr(err))
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	objectName := fmt.Sprintf("disposals/%s%s", uuid.NewString(), ext)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, s.config.Minio.BucketName, objectName, file, header.Size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		zap.L().Error("failed to store upload", zap.String("object", objectName), zap.Error(err))
		return "", errutil.BadGateway("failed to store file", errutil.WithErr(err))
	}

	scheme := "http"
	if s.config.Minio.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.config.Minio.Endpoint, s.config.Minio.BucketName, objectName), nil
}
