package visionati

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/image-captioner/captioner/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	t          *testing.T
	srv        *httptest.Server
	processing int32
	polls      atomic.Int32
	submitted  fetchRequest
	submit     func(w http.ResponseWriter)
	pollStatus int
	result     string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{t: t}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, "Token vk-test", r.Header.Get("Authorization"))
	switch r.URL.Path {
	case fetchPath:
		assert.Equal(f.t, http.MethodPost, r.Method)
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.submitted))
		if f.submit != nil {
			f.submit(w)
			return
		}
		fmt.Fprintf(w, `{"success":true,"response_uri":%q}`, f.srv.URL+"/api/response/abc")
	case "/api/response/abc":
		n := f.polls.Add(1)
		if f.pollStatus != 0 {
			w.WriteHeader(f.pollStatus)
			return
		}
		if n <= f.processing {
			fmt.Fprint(w, `{"status":"processing"}`)
			return
		}
		fmt.Fprint(w, f.result)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBackend) client() *Client {
	return NewClient(Config{BaseURL: f.srv.URL, PollInterval: time.Millisecond})
}

func request(urls ...string) model.CaptionRequest {
	return model.CaptionRequest{APIKey: "vk-test", URLs: urls}
}

func TestDescribe_PollsUntilDone(t *testing.T) {
	f := newFakeBackend(t)
	f.processing = 2
	f.result = `{"status":"completed","credits":97,"all":{"assets":[
		{"name":"https://cdn/a.jpg","descriptions":[{"description":"<p>A</p>","source":"gemini"},{"description":"second"}]},
		{"name":"https://cdn/b.jpg","descriptions":[]},
		{"name":"https://cdn/c.jpg"}
	]}}`

	res, err := f.client().Describe(context.Background(), request("https://cdn/a.jpg", "https://cdn/b.jpg", "https://cdn/c.jpg"))
	require.NoError(t, err)

	assert.Equal(t, int32(3), f.polls.Load())
	assert.Equal(t, map[string]string{
		"https://cdn/a.jpg": "<p>A</p>",
		"https://cdn/b.jpg": "",
		"https://cdn/c.jpg": "",
	}, res.Descriptions)
	require.NotNil(t, res.Credits)
	assert.Equal(t, 97, *res.Credits)

	assert.Equal(t, []string{"descriptions"}, f.submitted.Feature)
	assert.Equal(t, "ecommerce", f.submitted.Role)
	assert.Equal(t, "gemini", f.submitted.Backend)
	assert.Contains(t, f.submitted.Prompt, "Describe this product in English for an ecommerce context.")
	assert.Contains(t, f.submitted.Prompt, "no more than 500 words")
}

func TestDescribe_SubmitFailures(t *testing.T) {
	cases := []struct {
		name    string
		respond func(w http.ResponseWriter)
		wantErr error
	}{
		{
			name:    "non-2xx",
			respond: func(w http.ResponseWriter) { http.Error(w, "nope", http.StatusUnauthorized) },
		},
		{
			name:    "success false",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `{"success":false}`) },
			wantErr: ErrBatchFailed,
		},
		{
			name: "error field",
			respond: func(w http.ResponseWriter) {
				fmt.Fprint(w, `{"success":true,"error":"no credits","response_uri":"x"}`)
			},
			wantErr: ErrBatchFailed,
		},
		{
			name:    "missing response uri",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `{"success":true}`) },
			wantErr: ErrNoResponseURI,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeBackend(t)
			f.submit = tc.respond

			_, err := f.client().Describe(context.Background(), request("https://cdn/a.jpg"))
			require.Error(t, err)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
			assert.Zero(t, f.polls.Load())
		})
	}
}

func TestDescribe_PollErrorDiscardsBatch(t *testing.T) {
	f := newFakeBackend(t)
	f.processing = 1
	f.result = `{"status":"failed","error":"backend exploded","all":{"assets":[{"name":"u","descriptions":[{"description":"d"}]}]}}`

	res, err := f.client().Describe(context.Background(), request("u"))
	require.ErrorIs(t, err, ErrBatchFailed)
	assert.Nil(t, res)
}

func TestDescribe_PollNon2xx(t *testing.T) {
	f := newFakeBackend(t)
	f.pollStatus = http.StatusBadGateway

	_, err := f.client().Describe(context.Background(), request("u"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDescribe_ContextCancelStopsPolling(t *testing.T) {
	f := newFakeBackend(t)
	f.processing = 1 << 30

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(Config{BaseURL: f.srv.URL, PollInterval: 5 * time.Millisecond}).Describe(ctx, request("u"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDescribe_CustomPromptAndSettings(t *testing.T) {
	f := newFakeBackend(t)
	f.result = `{"status":"completed","all":{"assets":[]}}`

	req := request("u")
	req.Backend = model.BackendClaude
	req.Role = model.RoleGeneral
	req.CustomPrompt = "Describe the fabric."

	res, err := f.client().Describe(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, res.Descriptions)
	assert.Nil(t, res.Credits)

	assert.Equal(t, "general", f.submitted.Role)
	assert.Equal(t, "claude", f.submitted.Backend)
	assert.Regexp(t, `^Describe the fabric\. The description should be concise`, f.submitted.Prompt)
}

func TestDescribe_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{}).Describe(context.Background(), model.CaptionRequest{URLs: []string{"u"}})
	require.ErrorIs(t, err, ErrMissingAPIKey)
}
