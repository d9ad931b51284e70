package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/image-captioner/captioner/internal/adapters/shopify"
	"github.com/image-captioner/captioner/internal/domain/model"
	apperrors "github.com/image-captioner/captioner/internal/errors"
	"github.com/image-captioner/captioner/internal/service"
)

const (
	testSecret     = "app-secret"
	testAdminToken = "operator-token"
)

type fakeBulk struct {
	startShop string
	startOp   model.BulkOperation
	startErr  error

	progressShop string
	progressID   string
	progress     *model.BulkUpdateProgress
	progressErr  error
}

func (f *fakeBulk) Start(_ context.Context, shopID string, op model.BulkOperation) (*model.BulkUpdateJob, error) {
	f.startShop, f.startOp = shopID, op
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &model.BulkUpdateJob{ID: "0b7b5b6e-2c55-4c8e-8f0e-0a3d9d1b2f11", ShopID: shopID}, nil
}

func (f *fakeBulk) Progress(_ context.Context, shopID, jobID string) (*model.BulkUpdateProgress, error) {
	f.progressShop, f.progressID = shopID, jobID
	return f.progress, f.progressErr
}

type fakeLister struct {
	filter   service.ProductFilter
	query    string
	products []model.AnnotatedProduct
	err      error
}

func (f *fakeLister) ListProducts(
	_ context.Context,
	_ string,
	filter service.ProductFilter,
	query string,
) ([]model.AnnotatedProduct, error) {
	f.filter, f.query = filter, query
	return f.products, f.err
}

type fakeProcessor struct {
	events []model.ProductCreatedEvent
	err    error
}

func (f *fakeProcessor) HandleProductCreated(_ context.Context, event model.ProductCreatedEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func newTestRouter(t *testing.T, bulk *fakeBulk, lister *fakeLister, proc *fakeProcessor) http.Handler {
	t.Helper()
	return NewRouter(RouterServices{
		BulkUpdates:   bulk,
		Products:      lister,
		Webhooks:      proc,
		Auth:          ShopAuthConfig{APISecret: testSecret, AdminToken: testAdminToken},
		WebhookSecret: testSecret,
		MaxBodyBytes:  1 << 10,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// serve authenticates /api requests as the operator unless the request
// already carries credentials.
func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	if strings.HasPrefix(req.URL.Path, "/api/") && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_APIRoutesRequireAuth(t *testing.T) {
	bulk := &fakeBulk{}
	lister := &fakeLister{}
	proc := &fakeProcessor{}
	h := newTestRouter(t, bulk, lister, proc)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/shops/beanies.myshopify.com/bulk-updates",
			strings.NewReader(`{"kind":"all"}`)),
		httptest.NewRequest(http.MethodGet, "/api/shops/beanies.myshopify.com/bulk-updates/latest", nil),
		httptest.NewRequest(http.MethodGet, "/api/shops/beanies.myshopify.com/products", nil),
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, req.URL.Path)
	}
	assert.Empty(t, bulk.startShop)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := `{"admin_graphql_api_id":"gid://shopify/Product/1"}`
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(body, shopify.SignWebhook(testSecret, []byte(body))))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, proc.events, 1)
}

func TestBulkStart_Accepted(t *testing.T) {
	bulk := &fakeBulk{}
	h := newTestRouter(t, bulk, &fakeLister{}, &fakeProcessor{})

	req := httptest.NewRequest(http.MethodPost, "/api/shops/Beanies.myshopify.com/bulk-updates",
		strings.NewReader(`{"kind":"products","products":[{"id":"gid://shopify/Product/1"}]}`))
	rec := serve(h, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "0b7b5b6e-2c55-4c8e-8f0e-0a3d9d1b2f11", decodeBody(t, rec)["productCatalogBulkUpdateRequestId"])
	assert.Equal(t, "beanies.myshopify.com", bulk.startShop)
	assert.Equal(t, model.BulkOperationProducts, bulk.startOp.Kind)
	require.Len(t, bulk.startOp.Products, 1)
}

func TestBulkStart_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		startErr error
		want     int
		wantCode string
	}{
		{
			name:     "busy shop",
			path:     "/api/shops/beanies.myshopify.com/bulk-updates",
			body:     `{"kind":"all"}`,
			startErr: apperrors.Wrap(service.ErrShopBusy, apperrors.ErrCodeConflict, "bulk update already running"),
			want:     http.StatusConflict,
			wantCode: "conflict",
		},
		{
			name:     "unknown kind",
			path:     "/api/shops/beanies.myshopify.com/bulk-updates",
			body:     `{"kind":"everything"}`,
			want:     http.StatusBadRequest,
			wantCode: "invalid_json",
		},
		{
			name:     "foreign shop domain",
			path:     "/api/shops/beanies.example.com/bulk-updates",
			body:     `{"kind":"all"}`,
			want:     http.StatusBadRequest,
			wantCode: "invalid_shop",
		},
		{
			name:     "missing session",
			path:     "/api/shops/beanies.myshopify.com/bulk-updates",
			body:     `{"kind":"all"}`,
			startErr: apperrors.Configurationf("no session for shop %q", "beanies.myshopify.com"),
			want:     http.StatusUnprocessableEntity,
			wantCode: "not_configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &fakeBulk{startErr: tt.startErr}, &fakeLister{}, &fakeProcessor{})
			rec := serve(h, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))
			require.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, rec)["error"])
		})
	}
}

func TestBulkProgress(t *testing.T) {
	failed := false
	bulk := &fakeBulk{progress: &model.BulkUpdateProgress{
		BulkUpdateJob:                 model.BulkUpdateJob{ID: "job-1", ShopID: "beanies.myshopify.com", Error: &failed},
		ProductDescriptionUpdateCount: 7,
	}}
	h := newTestRouter(t, bulk, &fakeLister{}, &fakeProcessor{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/shops/beanies.myshopify.com/bulk-updates/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, bulk.progressID)
	body := decodeBody(t, rec)
	assert.InDelta(t, 7, body["productDescriptionUpdateCount"], 0)
	assert.Equal(t, "job-1", body["productCatalogBulkUpdateRequestId"])

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/shops/beanies.myshopify.com/bulk-updates/job-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "job-1", bulk.progressID)
}

func TestBulkProgress_NotFound(t *testing.T) {
	bulk := &fakeBulk{progressErr: apperrors.NotFound("bulk update request not found")}
	h := newTestRouter(t, bulk, &fakeLister{}, &fakeProcessor{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/shops/beanies.myshopify.com/bulk-updates/latest", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductsList(t *testing.T) {
	lister := &fakeLister{products: []model.AnnotatedProduct{{
		Product:       model.Product{ID: "gid://shopify/Product/1", Title: "Beanie"},
		AIDescription: "<p>A red beanie.</p>",
	}}}
	h := newTestRouter(t, &fakeBulk{}, lister, &fakeProcessor{})

	rec := serve(h, httptest.NewRequest(http.MethodGet,
		"/api/shops/beanies.myshopify.com/products?filter=Pending&query=title:beanie", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.FilterPending, lister.filter)
	assert.Equal(t, "title:beanie", lister.query)
	body := decodeBody(t, rec)
	assert.InDelta(t, 1, body["count"], 0)
}

func TestProductsList_InvalidFilter(t *testing.T) {
	h := newTestRouter(t, &fakeBulk{}, &fakeLister{}, &fakeProcessor{})
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/shops/beanies.myshopify.com/products?filter=maybe", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "filter", decodeBody(t, rec)["field"])
}

func TestProductsList_UpstreamFailure(t *testing.T) {
	lister := &fakeLister{err: apperrors.Wrap(errors.New("503 from storefront"), apperrors.ErrCodeUpstream, "list products")}
	h := newTestRouter(t, &fakeBulk{}, lister, &fakeProcessor{})
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/shops/beanies.myshopify.com/products?filter=ai", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func webhookRequest(body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader([]byte(body)))
	req.Header.Set(shopify.HeaderTopic, model.TopicProductsCreate)
	req.Header.Set(shopify.HeaderShopDomain, "beanies.myshopify.com")
	req.Header.Set(shopify.HeaderWebhookID, "delivery-1")
	req.Header.Set(shopify.HeaderHMAC, signature)
	return req
}

func TestWebhookReceive(t *testing.T) {
	body := `{"admin_graphql_api_id":"gid://shopify/Product/1","title":"Beanie"}`

	t.Run("verified delivery is processed", func(t *testing.T) {
		proc := &fakeProcessor{}
		h := newTestRouter(t, &fakeBulk{}, &fakeLister{}, proc)
		rec := serve(h, webhookRequest(body, shopify.SignWebhook(testSecret, []byte(body))))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, proc.events, 1)
		assert.Equal(t, "delivery-1", proc.events[0].DeliveryID)
		assert.Equal(t, "gid://shopify/Product/1", proc.events[0].Payload.AdminGraphQLAPIID)
	})

	t.Run("bad signature is rejected", func(t *testing.T) {
		proc := &fakeProcessor{}
		h := newTestRouter(t, &fakeBulk{}, &fakeLister{}, proc)
		rec := serve(h, webhookRequest(body, shopify.SignWebhook("wrong", []byte(body))))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, proc.events)
	})

	t.Run("busy shop asks for redelivery", func(t *testing.T) {
		proc := &fakeProcessor{err: apperrors.Wrap(service.ErrShopBusy, apperrors.ErrCodeConflict, "shop busy")}
		h := newTestRouter(t, &fakeBulk{}, &fakeLister{}, proc)
		rec := serve(h, webhookRequest(body, shopify.SignWebhook(testSecret, []byte(body))))
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("internal failure hides details", func(t *testing.T) {
		proc := &fakeProcessor{err: errors.New("pq: connection reset")}
		h := newTestRouter(t, &fakeBulk{}, &fakeLister{}, proc)
		rec := serve(h, webhookRequest(body, shopify.SignWebhook(testSecret, []byte(body))))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})

	t.Run("oversized body", func(t *testing.T) {
		big := `{"title":"` + strings.Repeat("x", 2<<10) + `"}`
		proc := &fakeProcessor{}
		h := newTestRouter(t, &fakeBulk{}, &fakeLister{}, proc)
		rec := serve(h, webhookRequest(big, shopify.SignWebhook(testSecret, []byte(big))))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, proc.events)
	})
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.Validation("bad"), http.StatusBadRequest},
		{apperrors.NotFound("gone"), http.StatusNotFound},
		{apperrors.Conflict("busy"), http.StatusConflict},
		{apperrors.Configurationf("no key"), http.StatusUnprocessableEntity},
		{apperrors.Wrap(errors.New("x"), apperrors.ErrCodeUpstream, "remote"), http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := StatusForError(tt.err)
		assert.Equal(t, tt.want, got, tt.err.Error())
	}
}
