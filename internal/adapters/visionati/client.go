// Package visionati is a client for the Visionati batch description API.
package visionati

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/image-captioner/captioner/internal/domain/model"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public Visionati API endpoint.
	DefaultBaseURL = "https://api.visionati.com"
	// DefaultPollInterval is the wait between status polls.
	DefaultPollInterval = time.Second

	fetchPath         = "/api/fetch"
	featureDescribe   = "descriptions"
	statusProcessing  = "processing"
	maxErrorBodyBytes = 4 << 10
)

var (
	// ErrNoResponseURI is returned when a submit succeeds without a poll location.
	ErrNoResponseURI = errors.New("visionati: submit response has no response_uri")
	// ErrBatchFailed is returned when the backend reports an error for the batch.
	ErrBatchFailed = errors.New("visionati: batch failed")
	// ErrMissingAPIKey is returned when a request carries no credential.
	ErrMissingAPIKey = errors.New("visionati: api key is required")
)

// Config holds Client settings. Zero values fall back to the defaults.
type Config struct {
	BaseURL      string
	PollInterval time.Duration
	// HTTPClient supplies the base transport; its Transport is wrapped with
	// the per-request API token.
	HTTPClient *http.Client
	Prompts    *PromptTable
	Logger     *slog.Logger
}

// Client submits image batches and polls until they finish.
type Client struct {
	baseURL      string
	pollInterval time.Duration
	base         *http.Client
	prompts      *PromptTable
	logger       *slog.Logger
}

// NewClient builds a Client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	prompts := cfg.Prompts
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      baseURL,
		pollInterval: interval,
		base:         hc,
		prompts:      prompts,
		logger:       logger.With("component", "visionati"),
	}
}

type fetchRequest struct {
	Feature []string `json:"feature"`
	Role    string   `json:"role"`
	Backend string   `json:"backend"`
	Prompt  string   `json:"prompt,omitempty"`
	URL     []string `json:"url"`
}

type fetchResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	ResponseURI string `json:"response_uri"`
}

type description struct {
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
}

type asset struct {
	Name         string        `json:"name"`
	Descriptions []description `json:"descriptions,omitempty"`
}

type pollResponse struct {
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
	Credits *int   `json:"credits,omitempty"`
	All     *struct {
		Assets []asset `json:"assets"`
	} `json:"all,omitempty"`
}

// Describe submits req and blocks until the batch leaves the processing
// state or ctx is done. Any failure discards the whole batch.
func (c *Client) Describe(ctx context.Context, req model.CaptionRequest) (*model.CaptionResult, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	hc := c.authorized(req.APIKey)

	role := req.Role
	if role == "" {
		role = model.DefaultRole
	}
	backend := req.Backend
	if backend == "" {
		backend = model.DefaultBackend
	}

	uri, err := c.submit(ctx, hc, fetchRequest{
		Feature: []string{featureDescribe},
		Role:    string(role),
		Backend: string(backend),
		Prompt:  c.prompts.Resolve(role, req.CustomPrompt),
		URL:     req.URLs,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.poll(ctx, hc, uri)
	if err != nil {
		return nil, err
	}
	return &model.CaptionResult{Descriptions: flatten(resp), Credits: resp.Credits}, nil
}

// authorized wraps the base transport so every request carries
// "Authorization: Token <key>".
func (c *Client) authorized(apiKey string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Token"})
	return &http.Client{
		Transport:     &oauth2.Transport{Source: src, Base: c.base.Transport},
		Timeout:       c.base.Timeout,
		CheckRedirect: c.base.CheckRedirect,
		Jar:           c.base.Jar,
	}
}

func (c *Client) submit(ctx context.Context, hc *http.Client, body fetchRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode visionati request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+fetchPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create visionati request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out fetchResponse
	if err := do(hc, req, &out); err != nil {
		return "", fmt.Errorf("visionati submit: %w", err)
	}
	if !out.Success || out.Error != "" {
		msg := out.Error
		if msg == "" {
			msg = "request failed"
		}
		return "", fmt.Errorf("%w: %s", ErrBatchFailed, msg)
	}
	if out.ResponseURI == "" {
		return "", ErrNoResponseURI
	}
	c.logger.DebugContext(ctx, "visionati batch submitted",
		"urls", len(body.URL), "backend", body.Backend, "role", body.Role)
	return out.ResponseURI, nil
}

func (c *Client) poll(ctx context.Context, hc *http.Client, uri string) (*pollResponse, error) {
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("create visionati poll request: %w", err)
		}
		var out pollResponse
		if err := do(hc, req, &out); err != nil {
			return nil, fmt.Errorf("visionati poll: %w", err)
		}
		if out.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrBatchFailed, out.Error)
		}
		if out.Status != statusProcessing {
			c.logger.DebugContext(ctx, "visionati batch finished", "status", out.Status, "polls", attempt)
			return &out, nil
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// flatten keeps the first description per asset. The first asset wins when a
// name repeats.
func flatten(resp *pollResponse) map[string]string {
	out := map[string]string{}
	if resp.All == nil {
		return out
	}
	for _, a := range resp.All.Assets {
		if _, seen := out[a.Name]; seen {
			continue
		}
		if len(a.Descriptions) == 0 {
			out[a.Name] = ""
			continue
		}
		out[a.Name] = a.Descriptions[0].Description
	}
	return out
}
