package storage

import (
	"fmt"
	"net/url"
	"strings"
)

func ParseS3URL(s3URL string) (bucket string, prefix string, err error) {
	if !strings.HasPrefix(s3URL, "s3://") {
		return "", "", fmt.Errorf("invalid S3 URL, missing 's3://' prefix")
	}
	trimmedS3URL := strings.TrimPrefix(s3URL, "s3://")
	splitPos := strings.Index(trimmedS3URL, "/")
	if splitPos == -1 {
		return "", "", fmt.Errorf("invalid S3 URL, no '/' found after bucket name")
	}
	bucket = trimmedS3URL[:splitPos]
	prefix = trimmedS3URL[splitPos+1:]
	return bucket, prefix, nil
}

// DecodeEventKey undoes the form encoding S3 applies to keys in event
// notifications ("+" stands for a space).
func DecodeEventKey(key string) (string, error) {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return "", fmt.Errorf("invalid object key '%s': %v", key, err)
	}

	return decoded, nil
}

// EncodeEventKey is the inverse of DecodeEventKey.
func EncodeEventKey(key string) string {
	return url.QueryEscape(key)
}
