// Package testutil provides database, Redis and fixture helpers for tests.
package testutil

import (
	"fmt"

	"github.com/image-captioner/captioner/internal/domain/model"
)

// ProductBuilder provides a fluent interface for building storefront products.
type ProductBuilder struct {
	p model.Product
}

// NewProduct creates a product with an id, title and featured image derived from n.
func NewProduct(n int) *ProductBuilder {
	return &ProductBuilder{p: model.Product{
		ID:            fmt.Sprintf("gid://shopify/Product/%d", n),
		Title:         fmt.Sprintf("Product %d", n),
		FeaturedImage: &model.Image{URL: fmt.Sprintf("https://cdn.example.com/p%d.jpg", n)},
	}}
}

// WithDescription sets the live description.
func (b *ProductBuilder) WithDescription(d string) *ProductBuilder {
	b.p.Description = d
	return b
}

// WithoutImage removes the featured image.
func (b *ProductBuilder) WithoutImage() *ProductBuilder {
	b.p.FeaturedImage = nil
	return b
}

// WithImage sets the featured image URL.
func (b *ProductBuilder) WithImage(url string) *ProductBuilder {
	b.p.FeaturedImage = &model.Image{URL: url}
	return b
}

// Build returns the product.
func (b *ProductBuilder) Build() model.Product {
	return b.p
}

// Products builds n products numbered from start.
func Products(start, n int) []model.Product {
	out := make([]model.Product, 0, n)
	for i := range n {
		out = append(out, NewProduct(start+i).Build())
	}
	return out
}

// Page wraps nodes in a connection. endCursor is set only when hasNext is true.
func Page(nodes []model.Product, hasNext bool, endCursor string) model.ProductConnection {
	c := model.ProductConnection{Nodes: nodes}
	c.PageInfo.HasNextPage = hasNext
	if hasNext {
		c.PageInfo.EndCursor = endCursor
	}
	return c
}
