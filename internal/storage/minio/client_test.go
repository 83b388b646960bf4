package minio

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authkeeper-server/internal/model"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      bool

	putErr  error
	putKey  string
	putBody []byte
	putSize int64
	putOpts minioLib.PutObjectOptions
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = true
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, r io.Reader, size int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	if f.putErr != nil {
		return minioLib.UploadInfo{}, f.putErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return minioLib.UploadInfo{}, err
	}
	f.putKey = key
	f.putBody = body
	f.putSize = size
	f.putOpts = opts
	return minioLib.UploadInfo{Key: key, Size: size}, nil
}

func TestNewOutboxWithAPI(t *testing.T) {
	ctx := context.Background()

	t.Run("bucket exists", func(t *testing.T) {
		api := &fakeMinio{bucketExists: true}
		o, err := NewOutboxWithAPI(ctx, api, "mail", "noreply@example.com")
		require.NoError(t, err)
		assert.Equal(t, "mail", o.bucket)
		assert.False(t, api.madeBucket)
	})

	t.Run("creates bucket", func(t *testing.T) {
		api := &fakeMinio{bucketExists: false}
		_, err := NewOutboxWithAPI(ctx, api, "mail", "noreply@example.com")
		require.NoError(t, err)
		assert.True(t, api.madeBucket)
	})

	t.Run("bucket exists error", func(t *testing.T) {
		api := &fakeMinio{bucketExistsErr: errors.New("boom")}
		o, err := NewOutboxWithAPI(ctx, api, "mail", "noreply@example.com")
		assert.Nil(t, o)
		assert.ErrorContains(t, err, "failed to ensure bucket exists")
	})

	t.Run("make bucket error", func(t *testing.T) {
		api := &fakeMinio{makeBucketErr: errors.New("fail")}
		o, err := NewOutboxWithAPI(ctx, api, "mail", "noreply@example.com")
		assert.Nil(t, o)
		assert.ErrorContains(t, err, "failed to create bucket")
	})
}

func TestOutbox_Deliver(t *testing.T) {
	ctx := context.Background()
	mail := model.Mail{
		To:      "user@example.com",
		Subject: "Verify your email address",
		HTML:    "<p>hi</p>",
	}

	t.Run("success", func(t *testing.T) {
		api := &fakeMinio{}
		o := &Outbox{
			api:    api,
			bucket: "mail",
			from:   "noreply@example.com",
			now:    func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) },
		}

		require.NoError(t, o.Deliver(ctx, mail))

		assert.True(t, strings.HasPrefix(api.putKey, "outbox/2025/03/07/"))
		assert.True(t, strings.HasSuffix(api.putKey, ".eml"))
		assert.Equal(t, int64(len(api.putBody)), api.putSize)
		assert.Equal(t, "message/rfc822", api.putOpts.ContentType)
		assert.Equal(t, "user@example.com", api.putOpts.UserMetadata["Mail-To"])

		raw := string(api.putBody)
		assert.Contains(t, raw, "To: <user@example.com>")
		assert.Contains(t, raw, "Subject: Verify your email address")
	})

	t.Run("invalid recipient", func(t *testing.T) {
		api := &fakeMinio{}
		o := &Outbox{api: api, bucket: "mail", from: "noreply@example.com", now: time.Now}

		err := o.Deliver(ctx, model.Mail{To: "nobody"})
		assert.ErrorContains(t, err, "failed to build message")
		assert.Empty(t, api.putKey)
	})

	t.Run("upload error", func(t *testing.T) {
		api := &fakeMinio{putErr: errors.New("put-fail")}
		o := &Outbox{api: api, bucket: "mail", from: "noreply@example.com", now: time.Now}

		err := o.Deliver(ctx, mail)
		assert.ErrorContains(t, err, "failed to upload object")
	})
}
