package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"expensesync/internal/remote"
)

// Upload stores the object in the configured bucket, replacing any existing
// object at path, and returns its public URL.
func (c *Client) Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := http.Header{
		"Content-Type": {contentType},
		"X-Upsert":     {"true"},
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   objectPath(c.bucket, path),
		header: h,
		body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return remote.PublicURL(c.baseURL, c.bucket, path), nil
}

func (c *Client) Delete(ctx context.Context, path string) error {
	if err := c.deleteObject(ctx, c.bucket, path); err != nil {
		return fmt.Errorf("delete object %s: %w", path, err)
	}
	return nil
}

func (c *Client) deleteObject(ctx context.Context, bucket, path string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: objectPath(bucket, path)})
}

func objectPath(bucket, path string) string {
	return "/storage/v1/object/" + bucket + "/" + strings.TrimLeft(path, "/")
}
