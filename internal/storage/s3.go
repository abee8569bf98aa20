package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"alcyxob/coach-engine/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3ArchiveStore implements the ArchiveStore interface using an
// S3-compatible backend. Archives are stored gzip-compressed at
// athletes/<id>/plan_archive.json.gz.
type s3ArchiveStore struct {
	client     *s3.Client
	bucketName string
}

// NewS3ArchiveStore creates a new S3 archive store instance.
func NewS3ArchiveStore(cfg config.S3Config) (ArchiveStore, error) {
	// Custom resolver for S3-compatible endpoints (like MinIO, DigitalOcean Spaces)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fallback to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		log.Printf("ERROR: Failed to load AWS SDK config for S3: %v", err)
		return nil, err
	}

	// Force path-style addressing required by most S3-compatible services (like MinIO)
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	log.Printf("INFO: S3 archive store initialized for endpoint: %s, bucket: %s", cfg.Endpoint, cfg.BucketName)

	return &s3ArchiveStore{
		client:     s3Client,
		bucketName: cfg.BucketName,
	}, nil
}

func archiveKey(athleteID string) string {
	return fmt.Sprintf("athletes/%s/plan_archive.json.gz", athleteID)
}

// SaveArchive overwrites the athlete's archive object with the given list.
func (s *s3ArchiveStore) SaveArchive(ctx context.Context, athleteID string, entries []ArchiveEntry) (string, error) {
	if entries == nil {
		entries = []ArchiveEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode archive: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return "", fmt.Errorf("failed to compress archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to compress archive: %w", err)
	}

	key := archiveKey(athleteID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.bucketName),
		Key:             aws.String(key),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		log.Printf("ERROR: Failed to save archive for athlete %s: %v", athleteID, err)
		return "", err
	}

	log.Printf("INFO: Saved %d archive entries (%.1f KB) to s3://%s/%s", len(entries), float64(buf.Len())/1024, s.bucketName, key)
	return key, nil
}

// LoadArchive fetches and decompresses the athlete's archive.
func (s *s3ArchiveStore) LoadArchive(ctx context.Context, athleteID string) ([]ArchiveEntry, error) {
	key := archiveKey(athleteID)
	body, err := s.FetchObject(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	gz, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress archive: %w", err)
	}
	defer gz.Close()

	var entries []ArchiveEntry
	if err := json.NewDecoder(gz).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	log.Printf("INFO: Loaded %d archive entries from s3://%s/%s", len(entries), s.bucketName, key)
	return entries, nil
}

// FetchObject streams a raw object from the bucket.
func (s *s3ArchiveStore) FetchObject(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrObjectNotFound
		}
		log.Printf("ERROR: Failed to fetch object '%s' from bucket '%s': %v", objectKey, s.bucketName, err)
		return nil, err
	}
	return out.Body, nil
}

// DeleteObject removes an object from the S3 bucket.
func (s *s3ArchiveStore) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		log.Printf("ERROR: Failed to delete object '%s' from bucket '%s': %v", objectKey, s.bucketName, err)
		return err
	}

	log.Printf("INFO: Deleted object '%s' from bucket '%s'", objectKey, s.bucketName)
	return nil
}
