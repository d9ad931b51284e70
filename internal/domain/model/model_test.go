package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_ImageURL(t *testing.T) {
	assert.Empty(t, Product{ID: "gid://shopify/Product/1"}.ImageURL())
	assert.Equal(t, "https://cdn/x.png", Product{FeaturedImage: &Image{URL: "https://cdn/x.png"}}.ImageURL())
}

func TestBulkOperationKind_UnmarshalText(t *testing.T) {
	var k BulkOperationKind
	require.NoError(t, k.UnmarshalText([]byte(" Approve ")))
	assert.Equal(t, BulkOperationApprove, k)

	err := k.UnmarshalText([]byte("delete"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bulk operation kind")
}

func TestBulkOperation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		op      BulkOperation
		wantErr string
	}{
		{name: "all", op: BulkOperation{Kind: BulkOperationAll}},
		{
			name: "products",
			op:   BulkOperation{Kind: BulkOperationProducts, Products: []Product{{ID: "p1"}}},
		},
		{
			name:    "products empty",
			op:      BulkOperation{Kind: BulkOperationProducts},
			wantErr: "requires at least one product",
		},
		{
			name:    "products missing id",
			op:      BulkOperation{Kind: BulkOperationProducts, Products: []Product{{Title: "x"}}},
			wantErr: "products[0]: id is required",
		},
		{
			name:    "approve missing description",
			op:      BulkOperation{Kind: BulkOperationApprove, Approvals: []Approval{{ProductID: "p1"}}},
			wantErr: "aiDescription is required",
		},
		{
			name: "approve",
			op: BulkOperation{
				Kind:      BulkOperationApprove,
				Approvals: []Approval{{ProductID: "p1", Description: "<p>x</p>"}},
			},
		},
		{name: "unknown", op: BulkOperation{Kind: "nope"}, wantErr: "invalid bulk operation kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBulkUpdateJob_State(t *testing.T) {
	job := BulkUpdateJob{ID: "j1", StartTime: time.Now()}
	assert.True(t, job.InProgress())
	assert.False(t, job.Failed())

	end := time.Now()
	failed := true
	job.EndTime = &end
	job.Error = &failed
	assert.False(t, job.InProgress())
	assert.True(t, job.Failed())
}

func TestBulkUpdateProgress_JSON(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := BulkUpdateProgress{
		BulkUpdateJob:                 BulkUpdateJob{ID: "job-1", ShopID: "a.myshopify.com", StartTime: start},
		ProductDescriptionUpdateCount: 7,
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "job-1", got["productCatalogBulkUpdateRequestId"])
	assert.EqualValues(t, 7, got["productDescriptionUpdateCount"])
	assert.Equal(t, "2026-01-02T03:04:05Z", got["start_time"])
	assert.NotContains(t, got, "end_time")
	assert.NotContains(t, got, "error")
}

func TestCaptionSettings_Defaults(t *testing.T) {
	var nilSettings *CaptionSettings
	assert.Equal(t, RoleEcommerce, nilSettings.EffectiveRole())
	assert.Equal(t, BackendGemini, nilSettings.EffectiveBackend())
	assert.Empty(t, nilSettings.EffectiveCustomPrompt())

	prompt := "  Describe the fabric.  "
	s := &CaptionSettings{Role: RoleCritic, Backend: BackendClaude, CustomPrompt: &prompt}
	assert.Equal(t, RoleCritic, s.EffectiveRole())
	assert.Equal(t, BackendClaude, s.EffectiveBackend())
	assert.Equal(t, "Describe the fabric.", s.EffectiveCustomPrompt())
}

func TestRoleAndBackend_UnmarshalText(t *testing.T) {
	var r Role
	require.NoError(t, r.UnmarshalText([]byte("Tweet")))
	assert.Equal(t, RoleTweet, r)
	require.Error(t, r.UnmarshalText([]byte("poet")))

	var b Backend
	require.NoError(t, b.UnmarshalText([]byte("openai")))
	assert.Equal(t, BackendOpenAI, b)
	require.Error(t, b.UnmarshalText([]byte("clarifai")))

	assert.Len(t, Roles(), 11)
}
