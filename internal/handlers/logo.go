package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cristianadrielbraun/qrstyle/internal/qrstyle"
)

var logoExtensions = map[string]string{
	".png":  ".png",
	".jpg":  ".jpg",
	".jpeg": ".jpg",
	".gif":  ".gif",
	".webp": ".webp",
	".svg":  ".svg",
}

// UploadLogo stores a multipart "logo" file in the upload directory and
// returns the generated name, which can then be passed as the logo query
// parameter.
func (h *Handler) UploadLogo(c *gin.Context) {
	if h.uploadDir == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "logo uploads are disabled", "code": string(qrstyle.KindValidation)})
		return
	}

	fh, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo file is required", "code": string(qrstyle.KindValidation)})
		return
	}
	ext, ok := logoExtensions[strings.ToLower(filepath.Ext(fh.Filename))]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported logo file type", "code": string(qrstyle.KindValidation)})
		return
	}
	if fh.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "logo file is too large", "code": string(qrstyle.KindValidation)})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if int64(len(data)) > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "logo file is too large", "code": string(qrstyle.KindValidation)})
		return
	}

	if _, err := qrstyle.DecodeLogo(data, 64); err != nil {
		h.logger.Debug("rejected logo upload", "file", fh.Filename, "err", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "logo image could not be decoded", "code": string(qrstyle.KindLogoDecode)})
		return
	}

	name := uuid.NewString() + ext
	if err := saveLogo(h.uploadDir, name, data); err != nil {
		h.logger.Error("store logo", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store logo", "code": string(qrstyle.KindRender)})
		return
	}
	h.logger.Info("logo stored", "name", name, "bytes", len(data))
	c.JSON(http.StatusCreated, gin.H{"name": name})
}

func saveLogo(dir, name string, data []byte) error {
	if name != filepath.Base(name) {
		return errors.New("invalid logo name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
