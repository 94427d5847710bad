package service

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lastochka/messenger/internal/config"
)

// FileStorage — медиахранилище вложений и аватарок групп. Опциональная
// способность: при выключенном S3 сервисы получают nil и отдают Unavailable
// на краю.
type FileStorage interface {
	Upload(ctx context.Context, chatID, filename, contentType string, body io.Reader) (string, error)
}

type s3Storage struct {
	bucket   string
	uploader *manager.Uploader
	client   *s3.Client
	log      *zap.Logger
}

func NewS3Storage(cfg *config.Config, log *zap.Logger) (FileStorage, error) {
	s3Opts := []func(*s3.Options){}
	if cfg.S3Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true // обязательно для MinIO
		})
	}

	awsCfg := aws.Config{
		Region: cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		),
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	storage := &s3Storage{
		bucket:   cfg.S3BucketName,
		uploader: manager.NewUploader(client),
		client:   client,
		log:      log,
	}

	// Лёгкая проверка доступности на старте.
	if _, err := client.ListBuckets(context.Background(), &s3.ListBucketsInput{}); err != nil {
		return nil, fmt.Errorf("storage health check failed: %w", err)
	}

	log.Info("s3 storage initialized", zap.String("endpoint", cfg.S3Endpoint))
	return storage, nil
}

func (s *s3Storage) Upload(ctx context.Context, chatID, filename, contentType string, body io.Reader) (string, error) {
	key := path.Join("chats", chatID, uuid.NewString(), filename)

	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	s.log.Info("file uploaded",
		zap.String("chat_id", chatID),
		zap.String("key", key))
	return result.Location, nil
}
