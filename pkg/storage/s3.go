package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sciocoder/FastEndpoints/pkg/id"
)

// S3 implements Storage on top of the AWS SDK v2 client.
type S3 struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

// NewS3 builds an S3 store from cfg.
func NewS3(cfg Config) (*S3, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &S3{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// Put uploads the reader's content. When contentType is empty it is
// sniffed from the first 512 bytes.
func (s *S3) Put(ctx context.Context, r io.Reader, size int64, prefix, contentType string) (*Object, error) {
	body, contentType, err := prepareBody(r, contentType)
	if err != nil {
		return nil, errors.Join(ErrUploadFailed, err)
	}

	key := buildKey(prefix, contentType)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, errors.Join(ErrUploadFailed, err)
	}

	return &Object{Key: key, ContentType: contentType, Size: size}, nil
}

// Get streams an object from the bucket.
func (s *S3) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Join(ErrNotFound, err)
	}
	return out.Body, nil
}

// Delete removes an object from the bucket.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// SignedURL returns a presigned GET link for the object.
func (s *S3) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", errors.Join(ErrSignFailed, err)
	}
	return req.URL, nil
}

// prepareBody buffers the reader enough to sniff the content type and
// returns a seekable body the SDK can sign.
func prepareBody(r io.Reader, contentType string) (io.ReadSeeker, string, error) {
	if contentType != "" {
		if rs, ok := r.(io.ReadSeeker); ok {
			return rs, contentType, nil
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return bytes.NewReader(data), contentType, nil
}

// buildKey produces {prefix/}{ulid}{.ext}; the extension comes from the
// content type when the platform knows one.
func buildKey(prefix, contentType string) string {
	key := id.NewULID()
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		key += exts[0]
	}
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		return fmt.Sprintf("%s/%s", prefix, key)
	}
	return key
}
