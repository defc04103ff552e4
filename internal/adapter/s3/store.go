package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/allanpeda/motion-scripts/internal/port"
)

// multipartThreshold is the file size above which uploads switch to the
// multipart transfer manager
const multipartThreshold = 100 * 1024 * 1024

// Config contains S3 store configuration
type Config struct {
	Bucket      string
	Prefix      string // base prefix under which channel sub-paths live
	Region      string
	EndpointURL string // optional, for S3-compatible stores
	AccessKey   string
	SecretKey   string
}

// Store implements port.RemoteStore against an S3 bucket
type Store struct {
	client *awss3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// Ensure Store implements port.RemoteStore
var _ port.RemoteStore = (*Store)(nil)

// New creates a new S3 store. Static credentials are used when configured,
// otherwise the default provider chain applies.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		))
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Options := func(o *awss3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true // required by most S3-compatible stores
		}
	}

	return &Store{
		client: awss3.NewFromConfig(awsCfg, s3Options),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

// subPrefix returns the full key prefix for a channel sub-path
func (s *Store) subPrefix(subPath string) string {
	return path.Join(s.prefix, subPath) + "/"
}

// ListNewerThan returns objects under subPath modified at or after since
func (s *Store) ListNewerThan(ctx context.Context, subPath string, since time.Time) ([]port.RemoteObject, error) {
	objects, err := s.list(ctx, subPath, func(o port.RemoteObject) bool {
		return !o.LastModified.Before(since)
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// list pages through all objects under subPath, keeping those accepted
// by the filter
func (s *Store) list(ctx context.Context, subPath string, keep func(port.RemoteObject) bool) ([]port.RemoteObject, error) {
	prefix := s.subPrefix(subPath)
	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}

	var objects []port.RemoteObject
	paginator := awss3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// Skip folder placeholder objects
			if strings.HasSuffix(key, "/") && aws.ToInt64(obj.Size) == 0 {
				continue
			}
			remote := port.RemoteObject{
				Key:  key,
				Name: path.Base(key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				remote.LastModified = *obj.LastModified
			}
			if keep(remote) {
				objects = append(objects, remote)
			}
		}
	}

	return objects, nil
}

// Upload copies a local file to subPath under the given name
func (s *Store) Upload(ctx context.Context, localPath, subPath, name string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat local file: %w", err)
	}
	size := info.Size()

	// Detect content type from the file head
	header := make([]byte, 512)
	n, _ := file.Read(header)
	contentType := http.DetectContentType(header[:n])
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind local file: %w", err)
	}

	key := path.Join(s.prefix, subPath, name)

	if size > multipartThreshold {
		_, err = manager.NewUploader(s.client).Upload(ctx, &awss3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        file,
			ContentType: aws.String(contentType),
		})
	} else {
		_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          file,
			ContentLength: aws.Int64(size),
			ContentType:   aws.String(contentType),
		})
	}
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return nil
}

// DeleteOlderThan deletes objects under subPath last modified before cutoff.
// Per-object delete failures are logged and skipped.
func (s *Store) DeleteOlderThan(ctx context.Context, subPath string, cutoff time.Time) (int, error) {
	objects, err := s.list(ctx, subPath, func(o port.RemoteObject) bool {
		return o.LastModified.Before(cutoff)
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(obj.Key),
		})
		if err != nil {
			s.logger.Warn("failed to delete remote object",
				zap.String("key", obj.Key),
				zap.Error(err))
			continue
		}
		deleted++
	}

	return deleted, nil
}
