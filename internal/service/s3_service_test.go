package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventech/ventech_api/internal/config"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Service_Put(t *testing.T) {
	putter := &fakePutter{}
	svc := NewS3ServiceWithClient(putter, &config.S3Config{Bucket: "invoices", Region: "ap-southeast-1"})

	url, err := svc.Put(context.Background(), "invoices/a.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://invoices.s3.ap-southeast-1.amazonaws.com/invoices/a.pdf", url)
	assert.Equal(t, "invoices", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("%PDF"), putter.body)

	putter.err = errors.New("denied")
	_, err = svc.Put(context.Background(), "k", nil, "text/plain")
	assert.Error(t, err)
}

func TestS3Service_ObjectURL(t *testing.T) {
	custom := NewS3ServiceWithClient(&fakePutter{}, &config.S3Config{Bucket: "b", Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/b/k.pdf", custom.ObjectURL("k.pdf"))

	public := NewS3ServiceWithClient(&fakePutter{}, &config.S3Config{Bucket: "b", PublicBaseURL: "https://files.ventech.id/"})
	assert.Equal(t, "https://files.ventech.id/k.pdf", public.ObjectURL("k.pdf"))
}

func TestNewS3Service_RequiresBucket(t *testing.T) {
	_, err := NewS3Service(context.Background(), &config.S3Config{})
	assert.Error(t, err)
}
