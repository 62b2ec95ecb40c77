package rating

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"path"
	"strings"
	"time"

	"gardenrating/pkg/heuristics"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	DownloadTimeout = 20 * time.Second
	CacheTTL        = 7 * 24 * time.Hour

	MissingAirtableNote = "Missing Airtable env vars; not updating record."
)

// Airtable columns written back after a rating.
const (
	FieldCropGuess       = "Crop Guess"
	FieldStage           = "Stage"
	FieldHealthScore     = "Health Score"
	FieldRecommendations = "Recommendations"
	FieldProcessed       = "Processed?"
)

type ImageFetcher interface {
	Fetch(ctx context.Context, photoURL string) (body []byte, contentType string, err error)
}

type HTTPImageFetcher struct {
	http *resty.Client
}

func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	if timeout == 0 {
		timeout = DownloadTimeout
	}
	return &HTTPImageFetcher{http: resty.New().SetTimeout(timeout)}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, photoURL string) ([]byte, string, error) {
	resp, err := f.http.R().SetContext(ctx).Get(photoURL)
	if err != nil {
		return nil, "", err
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

func decodeImage(body []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(body))
	return img, err
}

func airtableFields(a heuristics.Assessment) map[string]any {
	return map[string]any{
		FieldCropGuess:       a.CropGuess,
		FieldStage:           a.Stage,
		FieldHealthScore:     a.HealthScore,
		FieldRecommendations: bulletList(a.Recommendations),
		FieldProcessed:       true,
	}
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

func cacheKey(photoURL string) string {
	sum := sha256.Sum256([]byte(photoURL))
	return "rating:" + hex.EncodeToString(sum[:])
}

func archiveKey(recordID, photoURL, contentType string) string {
	return fmt.Sprintf("ratings/%s/%s%s", recordID, uuid.New().String(), imageExtension(photoURL, contentType))
}

func imageExtension(photoURL, contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(strings.ToLower(mediaType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if u, err := url.Parse(photoURL); err == nil {
		return strings.ToLower(path.Ext(u.Path))
	}
	return ""
}

func nullableString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func splitRecommendations(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
