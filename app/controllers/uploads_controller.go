package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/nuber-eats/nuber/config"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/response"
	"github.com/nuber-eats/nuber/pkg/storage"
)

// UploadsController accepts a single multipart "file" and stores it on the
// default disk.
type UploadsController struct {
	disk     storage.Disk
	maxBytes int64
	now      func() time.Time
}

func NewUploadsController(disk storage.Disk) *UploadsController {
	return &UploadsController{
		disk:     disk,
		maxBytes: int64(config.GetInt("MAX_UPLOAD_MB", 10)) << 20,
		now:      time.Now,
	}
}

// Upload responds {"url": ...} with the public address of the stored file.
func (c *UploadsController) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, c.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	key, err := c.objectKey(header.Filename)
	if err != nil {
		log.Error("uploads: key", "error", err)
		response.Error(w, http.StatusInternalServerError, "Could not upload file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := c.disk.Put(r.Context(), key, file, contentType); err != nil {
		log.Error("uploads: store", "key", key, "error", err)
		response.Error(w, http.StatusInternalServerError, "Could not upload file")
		return
	}

	log.Info("uploads: stored", "key", key, "size", header.Size)
	response.JSON(w, http.StatusOK, map[string]string{"url": c.disk.URL(key)})
}

// objectKey is "<unix millis>_<20 hex chars><ext>". The client's file name
// contributes only its extension.
func (c *UploadsController) objectKey(filename string) (string, error) {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return fmt.Sprintf("%d_%s%s", c.now().UnixMilli(), hex.EncodeToString(b), ext), nil
}
