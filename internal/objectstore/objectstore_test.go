package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/simmr/internal/logger"
)

type fakeBucket struct {
	in      *s3.PutObjectInput
	body    string
	err     error
	deleted []string
}

func (f *fakeBucket) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, f.err
}

func (f *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.body = string(b)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestR2StorePut(t *testing.T) {
	fake := &fakeBucket{}
	store := newR2Store(fake, "story_log_images", "https://cdn.example.com/", logger.New(logger.LevelOff, nil))

	url, err := store.Put(context.Background(), "u1-r1-1700000000000.jpg", "image/jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/u1-r1-1700000000000.jpg", url)
	assert.Equal(t, "story_log_images", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "image/jpg", aws.ToString(fake.in.ContentType))
	assert.Equal(t, CacheControl, aws.ToString(fake.in.CacheControl))
	assert.Equal(t, "jpeg", fake.body)
}

func TestR2StorePutError(t *testing.T) {
	fake := &fakeBucket{err: errors.New("denied")}
	store := newR2Store(fake, "b", "https://x", logger.New(logger.LevelOff, nil))

	_, err := store.Put(context.Background(), "k", "image/jpg", strings.NewReader(""))
	assert.Error(t, err)
}

func TestR2StoreDelete(t *testing.T) {
	fake := &fakeBucket{}
	store := newR2Store(fake, "story_log_images", "https://cdn.example.com", logger.New(logger.LevelOff, nil))

	require.NoError(t, store.Delete(context.Background(), "u1-r1-1.jpg"))
	assert.Equal(t, []string{"story_log_images/u1-r1-1.jpg"}, fake.deleted)

	fake.err = errors.New("denied")
	assert.Error(t, store.Delete(context.Background(), "k"))
}

func TestNewR2StoreRequiresEndpoint(t *testing.T) {
	_, err := NewR2Store(context.Background(), R2Options{Bucket: "b"}, logger.New(logger.LevelOff, nil))
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("")
	url, err := store.Put(context.Background(), "a.jpg", "image/jpg", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "memory://images/a.jpg", url)

	obj, ok := store.Get("a.jpg")
	require.True(t, ok)
	assert.Equal(t, "data", string(obj.Data))
	assert.Equal(t, "image/jpg", obj.ContentType)

	require.NoError(t, store.Delete(context.Background(), "a.jpg"))
	_, ok = store.Get("a.jpg")
	assert.False(t, ok)
	assert.NoError(t, store.Delete(context.Background(), "a.jpg"))
}
