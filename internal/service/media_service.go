package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"campushub/internal/config"
	"campushub/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultUploadDir       = "/tmp/campushub/uploads"
	DefaultMaxUploadSizeMB = 10
	// AttachmentMaxSize bounds the longest edge of a stored attachment.
	AttachmentMaxSize     = 2048
	attachmentWebPQuality = 70
)

// SavedAttachment describes a stored upload ready to be attached to a post.
type SavedAttachment struct {
	URL       string
	MediaType string
}

// MediaService stores post attachments on disk. Uploads are validated,
// re-encoded to WebP and addressed by a content hash so re-uploading the
// same bytes is idempotent.
type MediaService struct {
	uploadDir string
	maxBytes  int64
}

// NewMediaService builds a MediaService from config, falling back to
// defaults for unset values.
func NewMediaService(cfg *config.Config) *MediaService {
	uploadDir := DefaultUploadDir
	maxUploadSizeMB := DefaultMaxUploadSizeMB
	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.MaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.MaxUploadSizeMB
		}
	}
	return &MediaService{
		uploadDir: uploadDir,
		maxBytes:  int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// UploadDir reports where attachments are written, for static file serving.
func (s *MediaService) UploadDir() string {
	return s.uploadDir
}

// SaveAttachment validates and stores an uploaded image, returning the
// public URL and media type to persist on the post.
func (s *MediaService) SaveAttachment(userID uint, content []byte) (*SavedAttachment, error) {
	if userID == 0 {
		return nil, models.NewValidationError("User is required")
	}
	if len(content) == 0 {
		return nil, models.NewValidationError("Attachment is empty")
	}
	if int64(len(content)) > s.maxBytes {
		return nil, models.NewValidationError(
			fmt.Sprintf("Attachment exceeds the %dMB limit", s.maxBytes/(1024*1024)))
	}

	detectedType := normalizeContentType(http.DetectContentType(content))
	if !isAllowedAttachmentMIME(detectedType) {
		return nil, models.NewValidationError("Unsupported attachment type: " + detectedType)
	}

	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Attachment is not a valid image")
	}

	encoded, err := encodeWebP(resizeToFit(img, AttachmentMaxSize, AttachmentMaxSize), attachmentWebPQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding attachment: %w", err)
	}

	name := attachmentHash(userID, content) + ".webp"
	if err := writeAttachmentFile(filepath.Join(s.uploadDir, name), encoded); err != nil {
		return nil, fmt.Errorf("writing attachment: %w", err)
	}

	return &SavedAttachment{URL: "/uploads/" + name, MediaType: "image"}, nil
}

// attachmentHash derives a deterministic name from the uploader and the raw
// bytes, so identical uploads reuse the same file.
func attachmentHash(userID uint, content []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeAttachmentFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func normalizeContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func isAllowedAttachmentMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// resizeToFit scales src down so both dimensions fit within maxW x maxH,
// preserving aspect ratio. Images already within bounds pass through.
func resizeToFit(src image.Image, maxW, maxH int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxW && h <= maxH {
		return src
	}

	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
