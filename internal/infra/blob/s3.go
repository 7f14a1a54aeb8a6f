package blob

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/eternalmoments/backend/internal/config"
)

// S3Deps bundles the S3 clients plus the bucket they operate on.
type S3Deps struct {
	Client   *s3.Client
	Uploader *manager.Uploader
	Presign  *s3.PresignClient

	bucket         string
	publicEndpoint string
}

// UploadedMeta describes a stored object.
type UploadedMeta struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	URL         string `json:"url"`
	ETag        string `json:"etag,omitempty"`
	ContentType string `json:"content_type"`
	SizeB       int64  `json:"size"`
}

func NewS3(ctx context.Context, cfg *config.Config) (*S3Deps, error) {
	awscfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3.AccessKey, cfg.S3.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	publicEndpoint := cfg.S3.PublicEndpoint
	if publicEndpoint == "" {
		publicEndpoint = cfg.S3.Endpoint
	}

	return &S3Deps{
		Client:         client,
		Uploader:       manager.NewUploader(client),
		Presign:        s3.NewPresignClient(client),
		bucket:         cfg.S3.Bucket,
		publicEndpoint: strings.TrimSuffix(publicEndpoint, "/"),
	}, nil
}

// PublicURL returns the stable, publicly readable URL for a key:
// {endpoint}/{bucket}/{key}.
func (d *S3Deps) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", d.publicEndpoint, d.bucket, strings.TrimPrefix(key, "/"))
}

// UploadFormFile streams a multipart upload into the bucket under key
// and returns the stored object's metadata, including its public URL.
func (d *S3Deps) UploadFormFile(ctx context.Context, key string, fh *multipart.FileHeader) (*UploadedMeta, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	out, err := d.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return nil, err
	}

	meta := &UploadedMeta{
		Bucket:      d.bucket,
		Key:         key,
		URL:         d.PublicURL(key),
		ContentType: contentType,
		SizeB:       fh.Size,
	}
	if out.ETag != nil {
		meta.ETag = strings.Trim(*out.ETag, `"`)
	}
	return meta, nil
}

// UploadBytes stores raw bytes under key.
func (d *S3Deps) UploadBytes(ctx context.Context, key string, b []byte, contentType string) (*UploadedMeta, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	out, err := d.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return nil, err
	}

	meta := &UploadedMeta{
		Bucket:      d.bucket,
		Key:         key,
		URL:         d.PublicURL(key),
		ContentType: contentType,
		SizeB:       int64(len(b)),
	}
	if out.ETag != nil {
		meta.ETag = strings.Trim(*out.ETag, `"`)
	}
	return meta, nil
}

// PresignGet returns a time-limited download URL for private access.
func (d *S3Deps) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	req, err := d.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// DeleteObjects removes the given keys, ignoring missing ones.
func (d *S3Deps) DeleteObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	objs := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objs = append(objs, types.ObjectIdentifier{Key: aws.String(k)})
	}
	_, err := d.Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(d.bucket),
		Delete: &types.Delete{Objects: objs, Quiet: aws.Bool(true)},
	})
	return err
}
