// Package compsvc is the client for the compression backend.
package compsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/httpx"
	"github.com/DarlingInSteam/compressrank-admin/version"
)

// Client represents a compression backend client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new compression backend client.
func New(cfg *config.ServiceConfig) *Client {
	timeout := 60 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &Client{
		baseURL:    cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Result represents the outcome of a compression run. Compression creates a
// new image record, it never mutates the source.
type Result struct {
	ImageID          string `json:"imageId"`
	OriginalImageID  string `json:"originalImageId"`
	CompressionLevel int    `json:"compressionLevel"`
	CompressedSize   int64  `json:"compressedSize"`
}

type originalSizeResponse struct {
	OriginalSize int64 `json:"originalSize"`
}

// Compress asks the backend to produce a compressed derivative of the given
// image at the given level (0-100).
func (c *Client) Compress(ctx context.Context, tok, id string, level int) (*Result, error) {
	path := "/api/compression/" + url.PathEscape(id) + "?compressionLevel=" + strconv.Itoa(level)
	var result Result
	if err := c.do(ctx, http.MethodPost, path, tok, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Restore asks the backend to restore the original content of a compressed
// image.
func (c *Client) Restore(ctx context.Context, tok, id string) error {
	return c.do(ctx, http.MethodPost, "/api/compression/"+url.PathEscape(id)+"/restore", tok, nil)
}

// GetOriginalSize returns the pre-compression size of an image in bytes.
func (c *Client) GetOriginalSize(ctx context.Context, tok, id string) (int64, error) {
	var resp originalSizeResponse
	if err := c.do(ctx, http.MethodGet, "/api/compression/"+url.PathEscape(id)+"/original-size", tok, &resp); err != nil {
		return 0, err
	}
	return resp.OriginalSize, nil
}

func (c *Client) do(ctx context.Context, method, path, tok string, out any) error {
	pathOnly, query, _ := strings.Cut(path, "?")
	reqURL, err := url.JoinPath(c.baseURL, pathOnly)
	if err != nil {
		return fmt.Errorf("failed to build request URL: %w", err)
	}
	if query != "" {
		reqURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("User-Agent", "CompressRank-Admin/"+version.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("compression backend request failed: %w", httpx.NewStatusError(resp.StatusCode, body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
