package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultURLLifetime = 15 * time.Minute

// FileStore hands out presigned URLs so video bytes never pass through the API.
type FileStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	URLLifetime     time.Duration
}

// Client обертка над S3 клиентом
type Client struct {
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	lifetime      time.Duration
}

// NewClient создает S3 клиент. Endpoint задается для S3-совместимых хранилищ.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.Bucket == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, errors.New("bucket and credentials must be set")
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if opts.URLLifetime <= 0 {
		opts.URLLifetime = DefaultURLLifetime
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		s3Client:      client,
		presignClient: s3.NewPresignClient(client),
		bucket:        opts.Bucket,
		lifetime:      opts.URLLifetime,
	}, nil
}

func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := c.presignClient.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = c.lifetime
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// PresignDownload returns a GET URL. Range requests are served by the object store.
func (c *Client) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = c.lifetime
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("object key is required")
	}
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return err
}
