package storage

import (
	"alcyxob/sets-tracker/internal/config"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL("", true))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "http://localhost:9000", endpointURL("http://localhost:9000", true))
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, ErrBucketNotConfigured)
}

func TestPresignedDownloadURLIsSignedLocally(t *testing.T) {
	store, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
		BucketName:      "exports",
		UseSSL:          true,
	})
	require.NoError(t, err)

	url, err := store.GeneratePresignedDownloadURL(context.Background(), "exports/a.json", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://localhost:9000/exports/exports/a.json?"), url)
	assert.Contains(t, url, "X-Amz-Expires=60")
}
