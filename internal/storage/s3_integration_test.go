//go:build integration

package storage

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloo-solutions/justicesearch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresignURL_ResolvesAgainstRustFS(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)

	c, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     rc.AccessKey,
		SecretAccessKey: rc.SecretKey,
		Bucket:          "media",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	_, err = c.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String("media")})
	require.NoError(t, err)
	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String("media"),
		Key:    aws.String("thumbs/camp.jpg"),
		Body:   strings.NewReader("jpeg-bytes"),
	})
	require.NoError(t, err)

	signed, err := c.PresignURL(ctx, "s3://media/thumbs/camp.jpg")
	require.NoError(t, err)

	resp, err := http.Get(signed)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "jpeg-bytes", string(body))
}
