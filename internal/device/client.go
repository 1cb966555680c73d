// Package device talks to the controller's HTTP configuration endpoints.
package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brewdash/brewdash/internal/domain"
)

const (
	defaultHTTPPort       = 80
	defaultRequestTimeout = 8 * time.Second
	maxErrorBodyLen       = 1024

	endpointBrewing   = "brewing"
	endpointGetConfig = "getConfig"
	fieldBrewing      = "brewing"
)

// StatusError is returned when the controller answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
	}

	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// BrewValues is the wire convention for the brewing endpoint.
type BrewValues struct {
	On  string
	Off string
}

type ClientConfig struct {
	Host       string
	Port       int
	Brew       BrewValues
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger

	mu   sync.RWMutex
	host string
	port int
	brew BrewValues
}

func NewClient(cfg ClientConfig) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}
	port := cfg.Port
	if port == 0 {
		port = defaultHTTPPort
	}
	brew := cfg.Brew
	if brew.On == "" && brew.Off == "" {
		brew = BrewValues{On: "0", Off: "1"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "device")
	}

	return &Client{
		client:    client,
		brew:      brew,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		logger:    logger,
		host:      strings.TrimSpace(cfg.Host),
		port:      port,
	}
}

// SetEndpoint switches host and port. A non-positive port keeps the default.
func (c *Client) SetEndpoint(host string, port int) {
	if port <= 0 {
		port = defaultHTTPPort
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = strings.TrimSpace(host)
	c.port = port
}

// BaseURL returns the controller's HTTP root, e.g. http://192.168.4.1:80.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(c.host, strconv.Itoa(c.port))}

	return u.String()
}

// Submit sends one parameter value to the endpoint the parameter belongs to.
func (c *Client) Submit(ctx context.Context, p domain.Parameter, value float64) error {
	if !p.Valid() {
		return fmt.Errorf("submit: unknown parameter %q", p)
	}
	form := url.Values{}
	form.Set(string(p), FormatValue(value))

	return c.postForm(ctx, p.Endpoint(), form)
}

// SetBrewValues changes the wire convention of later SetBrewing calls.
func (c *Client) SetBrewValues(brew BrewValues) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.brew = brew
}

func (c *Client) SetBrewing(ctx context.Context, on bool) error {
	c.mu.RLock()
	value := c.brew.Off
	if on {
		value = c.brew.On
	}
	c.mu.RUnlock()
	form := url.Values{}
	form.Set(fieldBrewing, value)

	return c.postForm(ctx, endpointBrewing, form)
}

// GetConfig fetches the controller's extraction config. Fields the
// controller omits stay nil.
func (c *Client) GetConfig(ctx context.Context) (domain.PartialSettings, error) {
	endpoint, err := c.endpointURL(endpointGetConfig)
	if err != nil {
		return domain.PartialSettings{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.PartialSettings{}, fmt.Errorf("create %s request: %w", endpointGetConfig, err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, endpointGetConfig)
	if err != nil {
		return domain.PartialSettings{}, err
	}

	var settings domain.PartialSettings
	if err := json.Unmarshal(body, &settings); err != nil {
		return domain.PartialSettings{}, fmt.Errorf("decode %s response: %w", endpointGetConfig, err)
	}

	return settings, nil
}

func (c *Client) postForm(ctx context.Context, name string, form url.Values) error {
	endpoint, err := c.endpointURL(name)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err = c.do(req, name)

	return err
}

func (c *Client) do(req *http.Request, name string) ([]byte, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("device request failed", "endpoint", name, "error", err)

		return nil, fmt.Errorf("request %s: %w", name, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.logger.Debug("device response", "endpoint", name, "status_code", resp.StatusCode, "took", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

		return nil, &StatusError{Endpoint: name, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", name, err)
	}

	return body, nil
}

func (c *Client) endpointURL(name string) (string, error) {
	c.mu.RLock()
	host, port := c.host, c.port
	c.mu.RUnlock()
	if host == "" {
		return "", fmt.Errorf("%s: device host is empty", name)
	}
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + name,
	}

	return u.String(), nil
}

// FormatValue renders a parameter value the way the controller parses it:
// shortest decimal form, no exponent.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
