package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"campushub/internal/config"
	"campushub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostTestServer builds a Server over an in-memory database with a
// seeded author and channel, wired through the normal dependency setup.
func newPostTestServer(t *testing.T) (*Server, *models.User, *models.Channel) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Circle{},
		&models.CircleMembership{},
		&models.Timeline{},
		&models.TimelineMembership{},
		&models.Channel{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.Reaction{},
		&models.Conversation{},
		&models.DirectMessage{},
		&models.Event{},
		&models.EventAttendance{},
	))

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 10,
	}
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	author := &models.User{Username: "poster", Email: "poster@e.com"}
	require.NoError(t, db.Create(author).Error)
	channel := &models.Channel{Name: "general"}
	require.NoError(t, db.Create(channel).Error)

	return s, author, channel
}

func postApp(s *Server, userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Post("/api/community/posts", s.CreateChannelPost)
	return app
}

func attachmentPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 20, G: 160, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateChannelPost_MultipartAttachment(t *testing.T) {
	s, author, channel := newPostTestServer(t)
	app := postApp(s, author.ID)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("content", "look at this"))
	require.NoError(t, form.WriteField("channel_id", "1"))
	part, err := form.CreateFormFile("attachment", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(attachmentPNG(t, 32, 32))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/community/posts", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	assert.Equal(t, channel.ID, *post.ChannelID)
	assert.Equal(t, "image", post.MediaType)
	assert.True(t, strings.HasPrefix(post.MediaURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(post.MediaURL, ".webp"))

	// The stored file backs the returned URL.
	onDisk := filepath.Join(s.mediaService.UploadDir(),
		strings.TrimPrefix(post.MediaURL, "/uploads/"))
	_, statErr := os.Stat(onDisk)
	require.NoError(t, statErr)
}

func TestCreateChannelPost_RejectsNonImageAttachment(t *testing.T) {
	s, author, _ := newPostTestServer(t)
	app := postApp(s, author.ID)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("content", "nope"))
	require.NoError(t, form.WriteField("channel_id", "1"))
	part, err := form.CreateFormFile("attachment", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("just some text"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/community/posts", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateChannelPost_JSONBodyStillAccepted(t *testing.T) {
	s, author, _ := newPostTestServer(t)
	app := postApp(s, author.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/community/posts",
		strings.NewReader(`{"content":"plain text post","channel_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	assert.Empty(t, post.MediaURL)
}
