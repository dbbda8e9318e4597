package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"campushub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x % 251), G: uint8(y % 241), B: 180, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaService_SaveAttachment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadSizeMB: 10})

	saved, err := svc.SaveAttachment(42, pngBytes(t, 64, 48))
	require.NoError(t, err)

	assert.Equal(t, "image", saved.MediaType)
	assert.True(t, strings.HasPrefix(saved.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(saved.URL, ".webp"))

	onDisk := filepath.Join(dir, strings.TrimPrefix(saved.URL, "/uploads/"))
	_, statErr := os.Stat(onDisk)
	require.NoError(t, statErr)
}

func TestMediaService_SaveAttachmentIsDeterministic(t *testing.T) {
	t.Parallel()

	svc := NewMediaService(&config.Config{UploadDir: t.TempDir(), MaxUploadSizeMB: 10})
	content := pngBytes(t, 32, 32)

	first, err := svc.SaveAttachment(7, content)
	require.NoError(t, err)
	second, err := svc.SaveAttachment(7, content)
	require.NoError(t, err)
	assert.Equal(t, first.URL, second.URL)

	// A different uploader gets a different file for the same bytes.
	other, err := svc.SaveAttachment(8, content)
	require.NoError(t, err)
	assert.NotEqual(t, first.URL, other.URL)
}

func TestMediaService_SaveAttachmentResizesOversizedImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadSizeMB: 10})

	saved, err := svc.SaveAttachment(3, pngBytes(t, AttachmentMaxSize+200, 80))
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, strings.TrimPrefix(saved.URL, "/uploads/")))
	require.NoError(t, err)
	defer f.Close()

	cfgImg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.LessOrEqual(t, cfgImg.Width, AttachmentMaxSize)
	assert.LessOrEqual(t, cfgImg.Height, AttachmentMaxSize)
}

func TestMediaService_SaveAttachmentValidation(t *testing.T) {
	t.Parallel()

	svc := NewMediaService(&config.Config{UploadDir: t.TempDir(), MaxUploadSizeMB: 1})

	_, err := svc.SaveAttachment(1, []byte("not an image"))
	assertValidationError(t, err)

	_, err = svc.SaveAttachment(1, nil)
	assertValidationError(t, err)

	_, err = svc.SaveAttachment(0, pngBytes(t, 8, 8))
	assertValidationError(t, err)

	tooLarge := bytes.Repeat([]byte{'a'}, 2*1024*1024)
	_, err = svc.SaveAttachment(1, tooLarge)
	assertValidationError(t, err)
}
