package archive

import (
	"bytes"
	"context"
	"fmt"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type minioArchive struct {
	MinioClient *minio.Client
	BucketName  string
	Log         *zap.Logger
	now         func() time.Time
}

func NewMinioArchive(minioClient *minio.Client, bucketName string, logger *zap.Logger) contracts.BundleArchive {
	return &minioArchive{
		MinioClient: minioClient,
		BucketName:  bucketName,
		Log:         logger,
		now:         time.Now,
	}
}

func ObjectKey(messageID, stage string, at time.Time) string {
	return fmt.Sprintf("%s/%s-%d.json", messageID, stage, at.UnixNano())
}

func (a *minioArchive) Save(ctx context.Context, messageID, stage string, bundle *fhir_dto.Bundle) (string, error) {
	requestID := utils.GetRequestID(ctx)

	raw, err := json.Marshal(bundle)
	if err != nil {
		return "", exceptions.ErrCannotMarshalJSON(err)
	}

	key := ObjectKey(messageID, stage, a.now())
	_, err = a.MinioClient.PutObject(ctx, a.BucketName, key, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: constvars.ArchiveContentType,
	})
	if err != nil {
		a.Log.Error("minioArchive.Save error putting object",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBucketNameKey, a.BucketName),
			zap.String(constvars.LoggingObjectKey, key),
			zap.Error(err),
		)
		return "", exceptions.ErrMinioCreateObject(err, a.BucketName)
	}

	a.Log.Debug("minioArchive.Save stored bundle",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, messageID),
		zap.String(constvars.LoggingObjectKey, key),
	)
	return key, nil
}
