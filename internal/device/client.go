package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/aperture/internal/fetchsync"
)

// ErrNilClient is returned by methods called on a nil *Client.
var ErrNilClient = errors.New("client is nil")

const (
	CameraSettingsPath = "/api/settings/camera"
	PhotoSettingsPath  = "/api/settings/photo"
	FilesPath          = "/api/files"
	DeleteFilesPath    = "/api/files/delete"
)

// Client talks to the camera's HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:8080"
	defaultUserAgent = "aperture/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the device address requests are resolved against.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// Camera returns the camera settings resource.
func (c *Client) Camera() *Resource[CameraSettings] {
	return NewResource[CameraSettings](c, CameraSettingsPath)
}

// Photo returns the photo settings resource.
func (c *Client) Photo() *Resource[PhotoSettings] {
	return NewResource[PhotoSettings](c, PhotoSettingsPath)
}

// Gallery returns a read-only transport over the file list.
func (c *Client) Gallery() fetchsync.Transport[[]File] {
	return fetchsync.FetchFunc[[]File](c.ListFiles)
}

// ListFiles retrieves the photos stored on the device.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var payload FileListResponse
	if err := c.do(ctx, http.MethodGet, FilesPath, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Files, nil
}

// DeleteFiles removes the named photos from the device.
func (c *Client) DeleteFiles(ctx context.Context, names []string) error {
	if c == nil {
		return ErrNilClient
	}
	if len(names) == 0 {
		return fmt.Errorf("no files to delete")
	}
	return c.do(ctx, http.MethodPost, DeleteFilesPath, DeleteFilesRequest{Files: names}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func requestID(ctx context.Context) string {
	if id := fetchsync.AttemptID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Resource is a JSON document on the device that is read with GET and
// replaced with POST. It implements fetchsync.Transport.
type Resource[T any] struct {
	client *Client
	path   string
}

var (
	_ fetchsync.Transport[CameraSettings] = (*Resource[CameraSettings])(nil)
	_ fetchsync.Transport[PhotoSettings]  = (*Resource[PhotoSettings])(nil)
)

// NewResource binds path on c.
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: path}
}

// Path returns the resource path.
func (r *Resource[T]) Path() string { return r.path }

// Fetch reads the resource.
func (r *Resource[T]) Fetch(ctx context.Context) (T, error) {
	var payload T
	if r.client == nil {
		return payload, ErrNilClient
	}
	if err := r.client.do(ctx, http.MethodGet, r.path, nil, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// Update writes value and returns the device's canonical copy.
func (r *Resource[T]) Update(ctx context.Context, value T) (T, error) {
	var payload T
	if r.client == nil {
		return payload, ErrNilClient
	}
	if err := r.client.do(ctx, http.MethodPost, r.path, value, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
