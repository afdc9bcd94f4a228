// internal/storage/remote/s3.go
package remote

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/newthinker/ampsync/internal/config"
	"github.com/newthinker/ampsync/internal/core"
	"github.com/newthinker/ampsync/internal/partition"
	"go.uber.org/zap"
)

// S3Store implements Store for S3-compatible backends.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
	log    *zap.Logger
}

// NewS3 creates a new S3 store client.
func NewS3(cfg config.RemoteConfig, log *zap.Logger) (*S3Store, error) {
	opts := s3.Options{
		Region:      cfg.S3.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
	}

	if cfg.S3.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		opts.UsePathStyle = true // Required for MinIO and most S3-compatible services
	}

	return &S3Store{
		client: s3.New(opts),
		bucket: cfg.S3.Bucket,
		prefix: cfg.Prefix,
		log:    log,
	}, nil
}

func (s *S3Store) key(hourKey string) string {
	return s.prefix + hourKey + partition.Ext
}

func (s *S3Store) checkBucket() error {
	if s.bucket == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("no s3 bucket configured"))
	}
	return nil
}

func (s *S3Store) List(ctx context.Context) (map[string]struct{}, error) {
	if err := s.checkBucket(); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, core.WrapError(core.ErrStore,
				fmt.Errorf("listing s3://%s/%s: %w", s.bucket, s.prefix, err))
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if !strings.HasSuffix(name, partition.Ext) {
				continue
			}
			keys[strings.TrimSuffix(name, partition.Ext)] = struct{}{}
		}
	}

	s.log.Info("listed remote partitions",
		zap.Int("count", len(keys)), zap.String("bucket", s.bucket))
	return keys, nil
}

func (s *S3Store) Put(ctx context.Context, hourKey, path string) error {
	if err := s.checkBucket(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return core.WrapError(core.ErrStore, fmt.Errorf("opening %s: %w", path, err))
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hourKey)),
		Body:   f,
	})
	if err != nil {
		return core.WrapError(core.ErrStore,
			fmt.Errorf("uploading %s to s3://%s/%s: %w", hourKey, s.bucket, s.key(hourKey), err))
	}

	s.log.Info("uploaded partition",
		zap.String("key", hourKey), zap.String("bucket", s.bucket))
	return nil
}

func (s *S3Store) Delete(ctx context.Context, hourKey string) error {
	if err := s.checkBucket(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hourKey)),
	})
	if err != nil {
		return core.WrapError(core.ErrStore,
			fmt.Errorf("deleting s3://%s/%s: %w", s.bucket, s.key(hourKey), err))
	}
	return nil
}
