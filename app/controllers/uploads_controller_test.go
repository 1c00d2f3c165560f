package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuber-eats/nuber/pkg/storage"
)

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newController(t *testing.T) (*UploadsController, *storage.LocalDisk) {
	t.Helper()
	disk, err := storage.NewLocalDisk(t.TempDir(), "http://cdn.nuber.test")
	require.NoError(t, err)
	c := NewUploadsController(disk)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c, disk
}

func TestUpload_StoresFileAndReturnsURL(t *testing.T) {
	c, disk := newController(t)

	body, ctype := multipartBody(t, "file", "burger.PNG", "pixels")
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	c.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Regexp(t, regexp.MustCompile(`^http://cdn\.nuber\.test/1700000000000_[0-9a-f]{20}\.png$`), out["url"])

	key := out["url"][len("http://cdn.nuber.test/"):]
	rc, err := disk.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "pixels", string(got))
}

func TestUpload_MissingFile(t *testing.T) {
	c, _ := newController(t)

	body, ctype := multipartBody(t, "other", "x.png", "x")
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	c.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_KeysAreUnique(t *testing.T) {
	c, _ := newController(t)
	a, err := c.objectKey("a.jpg")
	require.NoError(t, err)
	b, err := c.objectKey("a.jpg")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
