package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/evaluation"
)

var (
	ErrFetch             = errors.New("storage fetch error")
	ErrMalformedDocument = errors.New("malformed evaluation document")
)

type S3API interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	ListObjectsV2WithContext(ctx aws.Context, input *s3.ListObjectsV2Input, opts ...request.Option) (*s3.ListObjectsV2Output, error)
}

type Client struct {
	s3Client S3API
}

func NewClient(s3Client S3API) *Client {
	return &Client{s3Client: s3Client}
}

// FetchDocument downloads s3://bucket/key and decodes it as an evaluation export.
func (c *Client) FetchDocument(ctx context.Context, bucket, key string) (*evaluation.Document, error) {
	obj, err := c.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get object s3://%s/%s: %v", ErrFetch, bucket, key, err)
	}
	if obj.Body == nil {
		return nil, fmt.Errorf("%w: empty body for s3://%s/%s", ErrFetch, bucket, key)
	}
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read object s3://%s/%s: %v", ErrFetch, bucket, key, err)
	}

	var doc evaluation.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: s3://%s/%s: %v", ErrMalformedDocument, bucket, key, err)
	}

	return &doc, nil
}

// ListKeys returns every key under prefix, following continuation tokens.
func (c *Client) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	var continuationToken *string
	for {
		resp, err := c.s3Client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list objects: %v", ErrFetch, err)
		}

		for _, item := range resp.Contents {
			keys = append(keys, aws.StringValue(item.Key))
		}

		if !aws.BoolValue(resp.IsTruncated) {
			break
		}
		continuationToken = resp.NextContinuationToken
	}

	return keys, nil
}
