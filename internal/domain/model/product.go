// Package model defines the core data types shared by the captioning pipeline.
package model

// Image is a storefront media reference.
type Image struct {
	URL string `json:"url"`
}

// Product is the subset of a storefront product the pipeline reads and writes.
// Only Description is ever mutated.
type Product struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	FeaturedImage *Image `json:"featuredImage,omitempty"`
}

// ImageURL returns the featured image URL or "" when the product has no image.
func (p Product) ImageURL() string {
	if p.FeaturedImage == nil {
		return ""
	}
	return p.FeaturedImage.URL
}

// PageInfo is the cursor state returned with every catalog page.
type PageInfo struct {
	StartCursor     string `json:"startCursor"`
	EndCursor       string `json:"endCursor"`
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
}

// ProductConnection is one page of the remote product collection.
type ProductConnection struct {
	Nodes    []Product `json:"nodes"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// ProductQuery carries the cursor pagination arguments for a catalog read.
// Nil fields are omitted from the remote request.
type ProductQuery struct {
	Query  *string `json:"query,omitempty"`
	First  *int    `json:"first,omitempty"`
	After  *string `json:"after,omitempty"`
	Last   *int    `json:"last,omitempty"`
	Before *string `json:"before,omitempty"`
}

// ProductIDs returns the ids of the given products in order.
func ProductIDs(products []Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

// AnnotatedProduct is a product together with its most recent generated
// description, when one exists.
type AnnotatedProduct struct {
	Product

	AIDescription string `json:"aiDescription,omitempty"`
}
