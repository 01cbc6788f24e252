package upload

import (
	"context"
	"mime/multipart"
	"testing"

	"oilcycle-platform/pkg/config"
	"oilcycle-platform/pkg/errutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService() *Service {
	cfg := &config.Config{}
	cfg.Minio.BucketName = "test-bucket"
	return NewService(ServiceParams{Config: cfg})
}

func TestStoreRejectsMissingFile(t *testing.T) {
	svc := newTestService()

	_, err := svc.Store(context.Background(), nil)
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusValidationFailed, be.Code)
}

func TestStoreRejectsEmptyFile(t *testing.T) {
	svc := newTestService()

	_, err := svc.Store(context.Background(), &multipart.FileHeader{Filename: "photo.jpg", Size: 0})
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusValidationFailed, be.Code)
}
