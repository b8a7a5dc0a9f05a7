package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/imagen-studio/internal/config"
)

type fakePutter struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	return &s3.PutObjectOutput{}, f.err
}

func newTestUploader(p objectPutter) *Uploader {
	return &Uploader{
		cfg:    config.S3Config{Bucket: "imgs", PublicBaseURL: "https://cdn.example.com/", Prefix: "/generations/"},
		client: p,
		now:    func() time.Time { return time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC) },
	}
}

func TestUploadBuildsDatedKeyAndURL(t *testing.T) {
	fp := &fakePutter{}
	u := newTestUploader(fp)

	url, err := u.Upload(context.Background(), []byte("png"), "image/png")
	require.NoError(t, err)

	key := aws.ToString(fp.input.Key)
	assert.Regexp(t, regexp.MustCompile(`^generations/2025/03/07/[0-9a-f-]{36}\.png$`), key)
	assert.Equal(t, "https://cdn.example.com/"+key, url)
	assert.Equal(t, "imgs", aws.ToString(fp.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fp.input.ContentType))
}

func TestUploadRejectsEmptyData(t *testing.T) {
	_, err := newTestUploader(&fakePutter{}).Upload(context.Background(), nil, "image/png")
	assert.Error(t, err)
}

func TestUploadWrapsError(t *testing.T) {
	boom := errors.New("denied")
	_, err := newTestUploader(&fakePutter{err: boom}).Upload(context.Background(), []byte("x"), "")
	assert.ErrorIs(t, err, boom)
}

func TestNewUploaderValidates(t *testing.T) {
	_, err := NewUploader(config.S3Config{})
	assert.Error(t, err)
	_, err = NewUploader(config.S3Config{Bucket: "b", Region: "r", AccessKey: "a", SecretKey: "s"})
	assert.Error(t, err)
	u, err := NewUploader(config.S3Config{Bucket: "b", Region: "r", AccessKey: "a", SecretKey: "s", PublicBaseURL: "https://x"})
	require.NoError(t, err)
	assert.Equal(t, "generations", u.cfg.Prefix)
}

func TestExtensionAndDataURL(t *testing.T) {
	assert.Equal(t, ".jpg", extensionFromContentType("IMAGE/JPEG"))
	assert.Equal(t, ".bin", extensionFromContentType("application/octet-stream"))
	assert.Equal(t, "data:image/png;base64,AQI=", DataURL([]byte{1, 2}, ""))
}
