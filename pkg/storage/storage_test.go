package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDisk_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocalDisk(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "1700000000000_abc.png", strings.NewReader("pixels"), "image/png"))

	ok, err := d.Exists(ctx, "1700000000000_abc.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := d.Get(ctx, "1700000000000_abc.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "pixels", string(body))

	assert.Equal(t, "http://localhost:8080/storage/1700000000000_abc.png", d.URL("1700000000000_abc.png"))

	require.NoError(t, d.Delete(ctx, "1700000000000_abc.png"))
	require.NoError(t, d.Delete(ctx, "1700000000000_abc.png"))
	_, err = d.Get(ctx, "1700000000000_abc.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDisk_RejectsEscapingKeys(t *testing.T) {
	d, err := NewLocalDisk(t.TempDir(), "")
	require.NoError(t, err)
	assert.Error(t, d.Put(context.Background(), "../outside.txt", strings.NewReader("x"), ""))
}

func TestLocalDisk_Handler(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocalDisk(t.TempDir(), "")
	require.NoError(t, err)
	require.NoError(t, d.Put(ctx, "a.txt", strings.NewReader("hello"), "text/plain"))

	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	rec = httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManager(t *testing.T) {
	d, err := NewLocalDisk(t.TempDir(), "")
	require.NoError(t, err)

	m := NewManager("local")
	m.Register("local", d)

	assert.Same(t, d, m.Default())
	local, ok := m.Local()
	assert.True(t, ok)
	assert.Same(t, d, local)

	_, err = m.Disk("s3")
	assert.Error(t, err)
	assert.Equal(t, []string{"local"}, m.Names())
}

func TestS3Disk_RequiresBucket(t *testing.T) {
	_, err := NewS3Disk(context.Background(), S3Options{Region: "us-east-1"})
	assert.Error(t, err)
}
