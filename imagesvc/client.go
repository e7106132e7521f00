// Package imagesvc is the client for the image storage backend: the image
// catalog, uploads, metadata, quotas and access statistics.
package imagesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/httpx"
	"github.com/DarlingInSteam/compressrank-admin/version"
)

// Client represents an image storage backend client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new image storage backend client.
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

// Image represents an image record in the catalog. A record with a non-empty
// OriginalImageID is a compressed derivative of that source image.
type Image struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"originalFilename"`
	ContentType      string    `json:"contentType"`
	Size             int64     `json:"size"`
	CompressionLevel int       `json:"compressionLevel"`
	OriginalImageID  string    `json:"originalImageId,omitempty"`
	UploadedAt       time.Time `json:"uploadedAt"`
	AccessCount      int64     `json:"accessCount"`
}

// Metadata represents the technical metadata of a stored image.
type Metadata struct {
	ImageID     string `json:"imageId"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	AccessCount int64  `json:"accessCount"`
}

// Quota represents the per-user usage limits, recomputed server-side.
type Quota struct {
	UserID           int64 `json:"userId"`
	ImagesUsed       int64 `json:"imagesUsed"`
	ImagesQuota      int64 `json:"imagesQuota"`
	DiskSpaceUsed    int64 `json:"diskSpaceUsed"`
	DiskSpaceQuota   int64 `json:"diskSpaceQuota"`
	ImagesPercent    int   `json:"imagesPercent"`
	DiskSpacePercent int   `json:"diskSpacePercent"`
}

// Statistics represents the access statistics of one image.
type Statistics struct {
	ImageID       string `json:"imageId"`
	ViewCount     int64  `json:"viewCount"`
	DownloadCount int64  `json:"downloadCount"`
}

// Identity carries the uploader identity sent redundantly alongside the
// bearer token, the way the platform's upload endpoint expects it.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// ListImages returns the full image catalog.
func (c *Client) ListImages(ctx context.Context, tok string) ([]Image, error) {
	var images []Image
	if err := c.doJSON(ctx, http.MethodGet, "/api/images", tok, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// GetMetadata returns the technical metadata of an image.
func (c *Client) GetMetadata(ctx context.Context, tok, id string) (*Metadata, error) {
	var meta Metadata
	if err := c.doJSON(ctx, http.MethodGet, "/api/images/"+url.PathEscape(id)+"/metadata", tok, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// GetQuota returns the quota of the calling user, or of another user when
// userID is non-zero and the caller is an administrator.
func (c *Client) GetQuota(ctx context.Context, tok string, userID int64) (*Quota, error) {
	path := "/api/images/quota"
	if userID > 0 {
		path += "?userId=" + strconv.FormatInt(userID, 10)
	}
	var quota Quota
	if err := c.doJSON(ctx, http.MethodGet, path, tok, &quota); err != nil {
		return nil, err
	}
	return &quota, nil
}

// ListStatistics returns the access statistics of every image.
func (c *Client) ListStatistics(ctx context.Context, tok string) ([]Statistics, error) {
	var stats []Statistics
	if err := c.doJSON(ctx, http.MethodGet, "/api/statistics", tok, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetStatistics returns the access statistics of one image.
func (c *Client) GetStatistics(ctx context.Context, tok, id string) (*Statistics, error) {
	var stats Statistics
	if err := c.doJSON(ctx, http.MethodGet, "/api/statistics/"+url.PathEscape(id), tok, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DeleteImage deletes an image record and its stored data.
func (c *Client) DeleteImage(ctx context.Context, tok, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/images/"+url.PathEscape(id), tok, nil)
}

// Upload stores a new image. The uploader identity travels in custom
// headers redundantly alongside the bearer token.
func (c *Client) Upload(ctx context.Context, tok string, identity Identity, filename, contentType string, data io.Reader) (*Image, error) {
	uploadURL, err := url.JoinPath(c.baseURL, "/api/images")
	if err != nil {
		return nil, fmt.Errorf("failed to build upload URL: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("failed to copy file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("X-User-Id", strconv.FormatInt(identity.UserID, 10))
	req.Header.Set("X-User-Name", identity.Username)
	req.Header.Set("X-User-Role", identity.Role)
	if contentType != "" {
		req.Header.Set("X-File-Content-Type", contentType)
	}
	req.Header.Set("User-Agent", "CompressRank-Admin/"+version.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("image upload failed: %w", httpx.NewStatusError(resp.StatusCode, body))
	}

	var image Image
	if err := json.Unmarshal(body, &image); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &image, nil
}

// Download streams the binary content of a stored image. The caller must
// close the returned reader.
func (c *Client) Download(ctx context.Context, tok, id string) (io.ReadCloser, string, error) {
	downloadURL, err := url.JoinPath(c.baseURL, "/api/images", url.PathEscape(id))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build download URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", "CompressRank-Admin/"+version.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close() //nolint:errcheck
		return nil, "", fmt.Errorf("image download failed: %w", httpx.NewStatusError(resp.StatusCode, body))
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// doJSON performs one request against the image backend and decodes the
// response body into out when it is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path, tok string, out any) error {
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
		return fmt.Errorf("image backend request failed: %w", httpx.NewStatusError(resp.StatusCode, body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
