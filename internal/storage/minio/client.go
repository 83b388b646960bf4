package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/dtroode/authkeeper-server/internal/model"
	"github.com/dtroode/authkeeper-server/internal/notify"
)

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

const (
	outboxPrefix    = "outbox"
	emlContentType  = "message/rfc822"
	metadataTo      = "Mail-To"
	metadataSubject = "Mail-Subject"
)

var _ model.Deliverer = (*Outbox)(nil)

// Outbox delivers mail by storing each message as an .eml object in a bucket.
// A separate relay or a developer picks messages up from there.
type Outbox struct {
	api    minioAPI
	bucket string
	from   string
	now    func() time.Time
}

// NewOutbox creates a mail outbox using a real *minio.Client instance.
func NewOutbox(ctx context.Context, client *minio.Client, bucket, from string) (*Outbox, error) {
	return NewOutboxWithAPI(ctx, minioClientWrapper{c: client}, bucket, from)
}

// NewOutboxWithAPI allows injecting a mockable API (used in tests).
func NewOutboxWithAPI(ctx context.Context, api minioAPI, bucket, from string) (*Outbox, error) {
	o := &Outbox{
		api:    api,
		bucket: bucket,
		from:   from,
		now:    time.Now,
	}

	err := o.ensureBucketExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return o, nil
}

// ensureBucketExists creates the bucket if it doesn't exist
func (o *Outbox) ensureBucketExists(ctx context.Context) error {
	exists, err := o.api.BucketExists(ctx, o.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = o.api.MakeBucket(ctx, o.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Deliver renders the message as MIME and uploads it under
// outbox/<yyyy>/<mm>/<dd>/<uuid>.eml.
func (o *Outbox) Deliver(ctx context.Context, mail model.Mail) error {
	msg, err := notify.NewMsg(o.from, mail)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	key := path.Join(outboxPrefix, o.now().UTC().Format("2006/01/02"), uuid.NewString()+".eml")
	_, err = o.api.PutObject(ctx, o.bucket, key, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: emlContentType,
		UserMetadata: map[string]string{
			metadataTo:      mail.To,
			metadataSubject: mail.Subject,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	return nil
}
