package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docscan/internal/config"
	"docscan/internal/model"
)

type fakeObjects struct {
	objects map[string][]byte
	putErr  error
	lastCT  string
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[bucket+"/"+key] = buf.Bytes()
	f.lastCT = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: n}, nil
}

func (f *fakeObjects) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	return nil, errors.New("not used")
}

func (f *fakeObjects) StatObject(_ context.Context, bucket, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	}
	return minio.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func TestMinIOStorage_CreateAndExists(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{}}
	s := &minioStorage{client: fake}
	ctx := context.Background()
	loc := model.Location("s3://scans/2024/a.pdf")

	ok, err := s.Exists(ctx, loc)
	require.NoError(t, err)
	assert.False(t, ok)

	w, err := s.Create(ctx, loc)
	require.NoError(t, err)
	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, []byte("0123456789"), fake.objects["scans/2024/a.pdf"])
	assert.Equal(t, "application/pdf", fake.lastCT)

	ok, err = s.Exists(ctx, loc)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMinIOStorage_AbortStoresNothing(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{"scans/a.pdf": []byte("complete")}}
	s := &minioStorage{client: fake}
	ctx := context.Background()

	w, err := s.Create(ctx, "s3://scans/a.pdf")
	require.NoError(t, err)
	_, err = w.Write([]byte("HALF"))
	require.NoError(t, err)
	require.NoError(t, Abort(w, errors.New("interrupted")))

	assert.Equal(t, []byte("complete"), fake.objects["scans/a.pdf"])

	w, err = s.Create(ctx, "s3://scans/b.pdf")
	require.NoError(t, err)
	_, err = w.Write([]byte("HALF"))
	require.NoError(t, err)
	require.NoError(t, Abort(w, errors.New("interrupted")))

	ok, err := s.Exists(ctx, "s3://scans/b.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMinIOStorage_UploadErrorSurfacesOnWriteOrClose(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{}, putErr: errors.New("access denied")}
	s := &minioStorage{client: fake}

	w, err := s.Create(context.Background(), "s3://scans/a.pdf")
	require.NoError(t, err)

	_, writeErr := w.Write([]byte("data"))
	closeErr := w.Close()
	assert.True(t, writeErr != nil || closeErr != nil)
	if closeErr != nil {
		assert.Contains(t, closeErr.Error(), "access denied")
	}
}

func TestObjectKey(t *testing.T) {
	bucket, key, err := objectKey("s3://scans/dir/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "scans", bucket)
	assert.Equal(t, "dir/a.pdf", key)

	_, _, err = objectKey("s3://scans")
	assert.ErrorIs(t, err, model.ErrMalformedLocation)
}

func TestNewMinIO_Validation(t *testing.T) {
	_, err := NewMinIO(config.MinIOConfig{})
	assert.EqualError(t, err, "minio endpoint is required")

	_, err = NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "minio credentials are required")

	_, err = NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.EqualError(t, err, "minio bucket is required")
}
