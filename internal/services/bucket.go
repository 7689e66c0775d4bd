package services

import (
  "bytes"
  "context"
  "fmt"
  "io"
  "os"
  "time"

  "cloud.google.com/go/storage"
  "google.golang.org/api/option"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
)

// BucketService stores raw uploaded documents and generated avatars in a GCS
// bucket under opaque keys.
type BucketService interface {
  UploadObject(ctx context.Context, key string, contentType string, data []byte) (string, error)
  DeleteObject(ctx context.Context, key string) error
}

type bucketService struct {
  log        *logger.Logger
  client     *storage.Client
  bucketName string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
  serviceLog := log.With("service", "BucketService")
  bucketName := os.Getenv("GCS_BUCKET_NAME")
  if bucketName == "" {
    return nil, fmt.Errorf("missing GCS_BUCKET_NAME environment variable")
  }
  ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
  defer cancel()

  var opts []option.ClientOption
  if credsFile := os.Getenv("GCS_CREDENTIALS_FILE"); credsFile != "" {
    opts = append(opts, option.WithCredentialsFile(credsFile))
  }
  client, err := storage.NewClient(ctx, opts...)
  if err != nil {
    return nil, fmt.Errorf("failed to create GCS client: %w", err)
  }
  return &bucketService{
    log:        serviceLog,
    client:     client,
    bucketName: bucketName,
  }, nil
}

func (bs *bucketService) UploadObject(ctx context.Context, key string, contentType string, data []byte) (string, error) {
  writer := bs.client.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
  writer.ContentType = contentType
  if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
    writer.Close()
    bs.log.Warn("Failed to write object to bucket, Cannot proceed. Returning error.", "key", key, "error", err)
    return "", fmt.Errorf("failed to write object '%s' to bucket: %w", key, err)
  }
  if err := writer.Close(); err != nil {
    bs.log.Warn("Failed to finalize object upload, Cannot proceed. Returning error.", "key", key, "error", err)
    return "", fmt.Errorf("failed to finalize object '%s' upload: %w", key, err)
  }
  url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
  bs.log.Debug("Uploaded object to bucket", "key", key, "url", url)
  return url, nil
}

func (bs *bucketService) DeleteObject(ctx context.Context, key string) error {
  if err := bs.client.Bucket(bs.bucketName).Object(key).Delete(ctx); err != nil {
    bs.log.Warn("Failed to delete object from bucket, Cannot proceed. Returning error.", "key", key, "error", err)
    return fmt.Errorf("failed to delete object '%s' from bucket: %w", key, err)
  }
  return nil
}
