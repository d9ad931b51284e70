// Package shopify is a minimal Shopify Admin GraphQL client for product reads
// and description updates.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/domain/model"
	jmespath "github.com/jmespath-community/go-jmespath"
)

const (
	// DefaultAPIVersion is the Admin API version used when none is configured.
	DefaultAPIVersion = "2024-10"

	accessTokenHeader = "X-Shopify-Access-Token"
	maxErrorBodyBytes = 4 << 10
)

var (
	// ErrGraphQL wraps errors reported in a GraphQL response body.
	ErrGraphQL = errors.New("shopify graphql error")
	// ErrProductNotFound is returned when a product id resolves to null.
	ErrProductNotFound = errors.New("shopify product not found")
)

// EndpointFunc builds the GraphQL URL for a shop and API version.
type EndpointFunc func(shop, apiVersion string) string

// DefaultEndpoint returns https://{shop}/admin/api/{version}/graphql.json.
func DefaultEndpoint(shop, apiVersion string) string {
	return "https://" + shop + "/admin/api/" + apiVersion + "/graphql.json"
}

// Config holds settings shared by every shop client.
type Config struct {
	APIVersion string
	Timeout    time.Duration
	HTTPClient *http.Client
	Endpoint   EndpointFunc
}

// Factory builds per-shop clients from stored sessions.
type Factory struct {
	apiVersion string
	hc         *http.Client
	endpoint   EndpointFunc
}

var _ core.CatalogClientFactory = (*Factory)(nil)

// NewFactory creates a Factory.
func NewFactory(cfg Config) *Factory {
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = DefaultAPIVersion
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	endpoint := cfg.Endpoint
	if endpoint == nil {
		endpoint = DefaultEndpoint
	}
	return &Factory{apiVersion: version, hc: hc, endpoint: endpoint}
}

// ForSession returns a client bound to the session's shop and token.
func (f *Factory) ForSession(session model.ShopSession) (core.CatalogClient, error) {
	shop, err := NormalizeShopDomain(session.Shop)
	if err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("shop %s has no access token", shop)
	}
	return &Client{
		url:   f.endpoint(shop, f.apiVersion),
		token: session.AccessToken,
		hc:    f.hc,
	}, nil
}

// Client talks to one shop's Admin GraphQL endpoint.
type Client struct {
	url   string
	token string
	hc    *http.Client
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// ListProducts returns one page of the product connection.
func (c *Client) ListProducts(ctx context.Context, q model.ProductQuery) (model.ProductConnection, error) {
	var out struct {
		Products model.ProductConnection `json:"products"`
	}
	vars := map[string]any{}
	if q.Query != nil {
		vars["query"] = *q.Query
	}
	if q.First != nil {
		vars["first"] = *q.First
	}
	if q.After != nil {
		vars["after"] = *q.After
	}
	if q.Last != nil {
		vars["last"] = *q.Last
	}
	if q.Before != nil {
		vars["before"] = *q.Before
	}
	if err := c.do(ctx, gqlRequest{Query: productsQuery, Variables: vars}, &out, exprTopLevelErrors); err != nil {
		return model.ProductConnection{}, fmt.Errorf("list products: %w", err)
	}
	return out.Products, nil
}

// GetProduct fetches a single product by its GraphQL id.
func (c *Client) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var out struct {
		Product *model.Product `json:"product"`
	}
	req := gqlRequest{Query: productQuery, Variables: map[string]any{"id": id}}
	if err := c.do(ctx, req, &out, exprTopLevelErrors); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	if out.Product == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return out.Product, nil
}

// UpdateProductDescription replaces a product's descriptionHtml. Only the id
// and description are sent so variants are left alone.
func (c *Client) UpdateProductDescription(ctx context.Context, id, descriptionHTML string) (*model.Product, error) {
	var out struct {
		ProductUpdate struct {
			Product *model.Product `json:"product"`
		} `json:"productUpdate"`
	}
	req := gqlRequest{
		Query: productUpdateMutation,
		Variables: map[string]any{
			"input": map[string]any{"id": id, "descriptionHtml": descriptionHTML},
		},
	}
	if err := c.do(ctx, req, &out, exprTopLevelErrors, exprUserErrors); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	if out.ProductUpdate.Product == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return out.ProductUpdate.Product, nil
}

func (c *Client) do(ctx context.Context, body gqlRequest, data any, errorExprs ...string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessTokenHeader, c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read graphql response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBodyBytes {
			raw = raw[:maxErrorBodyBytes]
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if msgs := collectMessages(generic, errorExprs...); len(msgs) > 0 {
		return fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: response has no data", ErrGraphQL)
	}
	if err := json.Unmarshal(envelope.Data, data); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}

// collectMessages evaluates each expression and gathers non-empty strings.
func collectMessages(doc any, exprs ...string) []string {
	var msgs []string
	for _, expr := range exprs {
		res, err := jmespath.Search(expr, doc)
		if err != nil {
			continue
		}
		list, ok := res.([]any)
		if !ok {
			continue
		}
		for _, v := range list {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				msgs = append(msgs, s)
			}
		}
	}
	return msgs
}
