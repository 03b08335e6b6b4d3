package api

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

	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/quadrature"
)

// Client is a compute.Backend that forwards every call to a Server.
// Domain errors are rebuilt from their wire codes, so errors.Is against
// the numeric sentinels works the same as with a local backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

var _ compute.Backend = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("client"),
	}
}

func (c *Client) Name() string { return "remote " + c.baseURL }

func (c *Client) Secant(ctx context.Context, req *compute.SecantRequest) (*compute.SecantResponse, error) {
	var resp compute.SecantResponse
	if err := c.post(ctx, "/api/nonlinear/mcs/calculate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Newton(ctx context.Context, req *compute.NewtonRequest) (*compute.NewtonResponse, error) {
	var resp compute.NewtonResponse
	if err := c.post(ctx, "/api/sne/ntm/calculate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Integrate(ctx context.Context, req *compute.IntegralRequest) (*compute.IntegralResponse, error) {
	var resp compute.IntegralResponse
	path := "/api/ni/" + url.PathEscape(req.Method) + "/calculate"
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Properties(ctx context.Context, req *compute.PropertiesRequest) (*quadrature.Properties, error) {
	var resp quadrature.Properties
	if err := c.post(ctx, "/api/ni/intermediate/calculate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Linear(ctx context.Context, req *compute.LinearRequest) (*compute.LinearResponse, error) {
	var resp compute.LinearResponse
	path := "/api/slat/" + url.PathEscape(req.Method) + "/calculate"
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks that the server answers.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("api: health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api: health: %s", resp.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("api: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("api: post %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.Status, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func decodeError(status string, data []byte) error {
	var body ErrorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return fmt.Errorf("api: %s", status)
	}
	if body.Kind == "" {
		return fmt.Errorf("api: %s: %s", status, body.Error)
	}

	err := numeric.FromCode(body.Kind, body.Code, body.Error)
	var ve *numeric.ValidationError
	if errors.As(err, &ve) {
		ve.Field = body.Field
	}
	return err
}
