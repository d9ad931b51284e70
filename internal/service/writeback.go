package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/domain/model"
)

// ErrIncompleteCaptions is returned when the captioning backend did not return
// a description for every submitted image URL.
var ErrIncompleteCaptions = errors.New("captioning returned fewer descriptions than images submitted")

// WriteBackTarget identifies the shop being written and the job the audit
// rows belong to.
type WriteBackTarget struct {
	ShopID  string
	Catalog core.CatalogClient
	Source  model.DescriptionUpdateSource
}

// WriteBackServiceOptions groups dependencies for WriteBackService.
type WriteBackServiceOptions struct {
	Updates   core.DescriptionUpdateRepository // Required
	Describer core.ImageDescriber              // Required
	Logger    *slog.Logger                     // Optional
}

// WriteBackService captions catalog pages and applies the results to the
// storefront, logging each change.
type WriteBackService struct {
	updates   core.DescriptionUpdateRepository
	describer core.ImageDescriber
	logger    *slog.Logger
}

// NewWriteBackService constructs a WriteBackService.
func NewWriteBackService(opts WriteBackServiceOptions) (*WriteBackService, error) {
	if opts.Updates == nil {
		return nil, errors.New("DescriptionUpdateRepository is required")
	}
	if opts.Describer == nil {
		return nil, errors.New("ImageDescriber is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteBackService{
		updates:   opts.Updates,
		describer: opts.Describer,
		logger:    logger.With("component", "writeback_service"),
	}, nil
}

// CaptionPage captions the page's images in one batch and writes the results
// back. A page without images is skipped. If any submitted URL comes back
// without a description nothing on the page is written.
func (s *WriteBackService) CaptionPage(ctx context.Context, target WriteBackTarget, products []model.Product) (int, error) {
	urls := imageURLs(products)
	if len(urls) == 0 {
		return 0, nil
	}

	descriptions, err := s.describer.DescribeImages(ctx, target.ShopID, urls)
	if err != nil {
		return 0, err
	}

	if missing := missingURLs(urls, descriptions); missing > 0 {
		return 0, fmt.Errorf("%w: submitted %d, missing %d", ErrIncompleteCaptions, len(urls), missing)
	}

	return s.ApplyPage(ctx, target, products, descriptions)
}

// ApplyPage writes descriptions to the products that own the matching image
// URLs, one product at a time. Products without an image or without a
// non-empty description are left untouched. The first failure stops the page;
// products already written stay written and logged.
func (s *WriteBackService) ApplyPage(
	ctx context.Context,
	target WriteBackTarget,
	products []model.Product,
	descriptions map[string]string,
) (int, error) {
	written := 0
	for _, p := range products {
		url := p.ImageURL()
		if url == "" {
			continue
		}
		desc, ok := descriptions[url]
		if !ok || desc == "" {
			continue
		}

		if err := s.writeOne(ctx, target, p, desc); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// ApplyApprovals publishes descriptions that were generated earlier, without
// calling the captioning backend. Each product is re-read so the audit row
// records the description being replaced.
func (s *WriteBackService) ApplyApprovals(ctx context.Context, target WriteBackTarget, approvals []model.Approval) (int, error) {
	written := 0
	for _, a := range approvals {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		p, err := target.Catalog.GetProduct(ctx, a.ProductID)
		if err != nil {
			return written, fmt.Errorf("get product %s: %w", a.ProductID, err)
		}
		if err := s.writeOne(ctx, target, *p, a.Description); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (s *WriteBackService) writeOne(ctx context.Context, target WriteBackTarget, p model.Product, desc string) error {
	if _, err := target.Catalog.UpdateProductDescription(ctx, p.ID, desc); err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}

	update := model.DescriptionUpdate{
		ProductID:      p.ID,
		ShopID:         target.ShopID,
		OldDescription: p.Description,
		NewDescription: desc,
	}
	if err := s.updates.Create(ctx, update, target.Source); err != nil {
		// The storefront already has the new description.
		s.logger.ErrorContext(ctx, "description written but audit row failed",
			"shop_id", target.ShopID,
			"product_id", p.ID,
			"bulk_update_request_id", target.Source.BulkUpdateRequestID,
			"error", err,
		)
		return fmt.Errorf("record description update for %s: %w", p.ID, err)
	}
	return nil
}

// imageURLs returns the distinct image URLs of products in page order.
func imageURLs(products []model.Product) []string {
	seen := make(map[string]struct{}, len(products))
	urls := make([]string, 0, len(products))
	for _, p := range products {
		url := p.ImageURL()
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls
}

func missingURLs(urls []string, descriptions map[string]string) int {
	missing := 0
	for _, u := range urls {
		if _, ok := descriptions[u]; !ok {
			missing++
		}
	}
	return missing
}
