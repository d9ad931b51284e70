package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/image-captioner/captioner/internal/domain/model"
)

// PageFetcher reads one page of a shop's catalog.
type PageFetcher func(ctx context.Context, q model.ProductQuery) (model.ProductConnection, error)

// PageFunc is invoked once per non-empty catalog page.
type PageFunc func(ctx context.Context, products []model.Product) error

// PageFilter selects the products of one page that belong in a result set.
type PageFilter func(ctx context.Context, products []model.Product) ([]model.Product, error)

// ForEachProductPage walks the catalog forward page by page until the remote
// collection reports no next page. Empty pages are skipped without ending the
// walk. The first fetch or callback error stops the walk and is returned.
func ForEachProductPage(ctx context.Context, fetch PageFetcher, query string, pageSize int, fn PageFunc) error {
	if fetch == nil || fn == nil {
		return errors.New("page fetcher and page func are required")
	}

	q := model.ProductQuery{First: &pageSize}
	if query != "" {
		q.Query = &query
	}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := fetch(ctx, q)
		if err != nil {
			return fmt.Errorf("fetch catalog page %d: %w", page, err)
		}

		if len(conn.Nodes) > 0 {
			if err := fn(ctx, conn.Nodes); err != nil {
				return fmt.Errorf("process catalog page %d: %w", page, err)
			}
		}

		if !conn.PageInfo.HasNextPage {
			return nil
		}
		cursor := conn.PageInfo.EndCursor
		q.After = &cursor
	}
}

// FilterAllProducts collects the products of every page that pass pred,
// in catalog order.
func FilterAllProducts(
	ctx context.Context,
	fetch PageFetcher,
	query string,
	pageSize int,
	pred PageFilter,
) ([]model.Product, error) {
	if pred == nil {
		return nil, errors.New("page filter is required")
	}

	out := []model.Product{}
	err := ForEachProductPage(ctx, fetch, query, pageSize, func(ctx context.Context, products []model.Product) error {
		kept, err := pred(ctx, products)
		if err != nil {
			return err
		}
		out = append(out, kept...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
