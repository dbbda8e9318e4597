package linkpreview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"campushub/internal/cache"

	"golang.org/x/net/html"
)

// Preview holds metadata scraped for the first URL found in post text.
// A zero Preview means resolution failed or found nothing; posts are
// created either way.
type Preview struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Empty reports whether resolution produced no usable metadata.
func (p Preview) Empty() bool {
	return p.URL == "" || (p.Title == "" && p.Description == "" && p.ThumbnailURL == "")
}

var (
	urlPattern     = regexp.MustCompile(`https?://[^\s<>"]+|www\.[^\s<>"]+`)
	youtubePattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|shorts/)|youtu\.be/)([A-Za-z0-9_-]{11})`)
)

const (
	oembedEndpoint = "https://www.youtube.com/oembed?url=https://www.youtube.com/watch?v=%s&format=json"
	maxBodyBytes   = 1 << 20
)

// Resolver fetches preview metadata for URLs embedded in post content.
type Resolver struct {
	client *http.Client
	logger *slog.Logger

	// oembedOverride points the oEmbed call at a test server when set.
	oembedOverride string
}

// NewResolver builds a resolver with the given fetch timeout.
func NewResolver(timeout time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// ExtractURL returns the first URL-like substring in text, or "".
func ExtractURL(text string) string {
	match := urlPattern.FindString(text)
	if match == "" {
		return ""
	}
	match = strings.TrimRight(match, ".,;:!?)")
	if strings.HasPrefix(match, "www.") {
		match = "https://" + match
	}
	return match
}

// YouTubeID extracts the 11-character video id from a YouTube URL, or "".
func YouTubeID(rawURL string) string {
	m := youtubePattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// Resolve finds the first URL in text and fetches its preview. Errors are
// logged and swallowed: the returned Preview is simply empty on failure.
// Successful lookups are cached per URL.
func (r *Resolver) Resolve(ctx context.Context, text string) Preview {
	rawURL := ExtractURL(text)
	if rawURL == "" {
		return Preview{}
	}

	var preview Preview
	if cache.GetJSON(ctx, cache.LinkPreviewKey(rawURL), &preview) {
		return preview
	}

	var err error
	if id := YouTubeID(rawURL); id != "" {
		preview, err = r.resolveYouTube(ctx, rawURL, id)
	} else {
		preview, err = r.resolveOpenGraph(ctx, rawURL)
	}
	if err != nil {
		r.logger.DebugContext(ctx, "link preview resolution failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()))
		return Preview{}
	}
	if !preview.Empty() {
		cache.SetJSON(ctx, cache.LinkPreviewKey(rawURL), preview, cache.LinkPreviewTTL)
	}
	return preview
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (r *Resolver) resolveYouTube(ctx context.Context, rawURL, videoID string) (Preview, error) {
	endpoint := fmt.Sprintf(r.oembedURL(), videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Preview{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Preview{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Preview{}, fmt.Errorf("oembed returned status %d", resp.StatusCode)
	}

	var body oembedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return Preview{}, err
	}
	return Preview{
		URL:          rawURL,
		Title:        body.Title,
		Description:  body.AuthorName,
		ThumbnailURL: body.ThumbnailURL,
	}, nil
}

func (r *Resolver) resolveOpenGraph(ctx context.Context, rawURL string) (Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Preview{}, err
	}
	req.Header.Set("User-Agent", "campushub-linkpreview/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return Preview{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Preview{}, fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Preview{}, err
	}

	preview := Preview{URL: rawURL}
	var pageTitle string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				prop, content := metaAttrs(n)
				switch prop {
				case "og:title":
					preview.Title = content
				case "og:description":
					preview.Description = content
				case "og:image":
					preview.ThumbnailURL = content
				}
			case "title":
				if n.FirstChild != nil && pageTitle == "" {
					pageTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if preview.Title == "" {
		preview.Title = pageTitle
	}
	return preview, nil
}

func metaAttrs(n *html.Node) (property, content string) {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "property", "name":
			if property == "" {
				property = attr.Val
			}
		case "content":
			content = attr.Val
		}
	}
	return property, content
}

// oembedURL is swapped in tests to point at a local server.
func (r *Resolver) oembedURL() string {
	if r.oembedOverride != "" {
		return r.oembedOverride
	}
	return oembedEndpoint
}
