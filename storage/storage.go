// Package storage uploads finished renders to the configured object
// store and returns their public URLs. Grounded on the S3 client
// construction pattern used for cold-storage uploads elsewhere in the
// example corpus (aws-sdk-go-v2, custom endpoint, path-style
// addressing for S3-compatible stores), adapted to the object-storage
// contract of spec.md §4.14/§6: upload(local_path, bucket, folder,
// filename) -> public_url, overwrite enabled, content-type video/mp4.
package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/videoedit/ai-edit-api/config"
)

const videoContentType = "video/mp4"

// Config names the object-storage endpoint and credentials. BaseURL
// is both the S3-compatible API endpoint and the root used to build
// public URLs (`<base>/object/public/{bucket}/{path}` per spec.md §6).
type Config struct {
	BaseURL   string
	Region    string
	AccessKey string
	SecretKey string
}

// Uploader puts local files into object storage and returns their
// public URL.
type Uploader struct {
	client *s3.Client
	base   string
}

func New(ctx context.Context, cfg Config) (*Uploader, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("storage: base url is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(region))
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseURL)
		o.UsePathStyle = true
	})

	return &Uploader{client: client, base: strings.TrimSuffix(cfg.BaseURL, "/")}, nil
}

// Upload reads localPath and puts it at bucket/folder/filename,
// overwriting any existing object, and returns its public URL. Upload
// failure is the caller's decision to treat as fatal or not — per
// spec.md §4.14 it's only a hard error when a webhook was requested.
func (u *Uploader) Upload(ctx context.Context, localPath, bucket, folder, filename string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("storage: opening %s: %w", localPath, err)
	}
	defer f.Close()

	key := strings.TrimPrefix(strings.Trim(folder, "/")+"/"+filename, "/")

	uploadCtx, cancel := context.WithTimeout(ctx, config.UploadTimeout)
	defer cancel()

	input := putObjectInput(bucket, key, f)
	if _, err := u.client.PutObject(uploadCtx, input); err != nil {
		return "", fmt.Errorf("storage: uploading %s to %s/%s: %w", localPath, bucket, key, err)
	}

	return fmt.Sprintf("%s/object/public/%s/%s", u.base, bucket, key), nil
}

func putObjectInput(bucket, key string, body *os.File) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(videoContentType),
	}
}
