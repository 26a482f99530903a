package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portaldomei/mei-portal-go/internal/domain"
)

// ============================================================
// Uploader implementation — Supabase Storage
// ============================================================

// Upload stores an image in the public bucket and returns its URL.
// Object names get a UUID prefix so re-uploading the same filename never
// clobbers an image still referenced by live content.
func (c *Client) Upload(ctx context.Context, name, contentType string, body io.Reader) (*domain.UploadResult, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Upload")
	defer span.End()

	object := fmt.Sprintf("%s-%s", uuid.New().String(), sanitizeObjectName(name))
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, object)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: storage upload failed",
			zap.String("object", object),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Warn("supabase: storage upload non-2xx",
			zap.String("object", object),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return nil, fmt.Errorf("supabase storage upload returned %d: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Debug("supabase: storage upload OK", zap.String("object", object))

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, object)
	return &domain.UploadResult{URL: publicURL}, nil
}

// sanitizeObjectName keeps only characters safe in a storage object key.
func sanitizeObjectName(name string) string {
	base := filepath.Base(name)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
