package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/domain/model"
	apperrors "github.com/image-captioner/captioner/internal/errors"
)

// ProductFilter names a classification view over the catalog.
type ProductFilter string

const (
	// FilterAI keeps products that have at least one generated description.
	FilterAI ProductFilter = "ai"
	// FilterNoAI keeps products that have never been captioned.
	FilterNoAI ProductFilter = "no-ai"
	// FilterPending keeps products whose live description differs from the latest generated one.
	FilterPending ProductFilter = "pending"
	// FilterConfirmed keeps products whose live description matches the latest generated one.
	FilterConfirmed ProductFilter = "confirmed"
)

const defaultListPageSize = 10

// ParseProductFilter parses a filter name.
func ParseProductFilter(s string) (ProductFilter, error) {
	f := ProductFilter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FilterAI, FilterNoAI, FilterPending, FilterConfirmed:
		return f, nil
	default:
		return "", fmt.Errorf("unknown product filter %q", s)
	}
}

// ClassificationServiceOptions groups dependencies for ClassificationService.
type ClassificationServiceOptions struct {
	Updates  core.DescriptionUpdateRepository // Required
	Sessions core.ShopSessionRepository       // Required
	Catalogs core.CatalogClientFactory        // Required
	PageSize int
	Logger   *slog.Logger // Optional
}

// ClassificationService partitions catalog products by their description history.
// It never writes.
type ClassificationService struct {
	updates  core.DescriptionUpdateRepository
	sessions core.ShopSessionRepository
	catalogs core.CatalogClientFactory
	pageSize int
	logger   *slog.Logger
}

// NewClassificationService constructs a ClassificationService.
func NewClassificationService(opts ClassificationServiceOptions) (*ClassificationService, error) {
	switch {
	case opts.Updates == nil:
		return nil, errors.New("DescriptionUpdateRepository is required")
	case opts.Sessions == nil:
		return nil, errors.New("ShopSessionRepository is required")
	case opts.Catalogs == nil:
		return nil, errors.New("CatalogClientFactory is required")
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultListPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassificationService{
		updates:  opts.Updates,
		sessions: opts.Sessions,
		catalogs: opts.Catalogs,
		pageSize: pageSize,
		logger:   logger.With("component", "classification_service"),
	}, nil
}

// Filter returns the page predicate for a view, scoped to shopID.
func (s *ClassificationService) Filter(shopID string, filter ProductFilter) (PageFilter, error) {
	switch filter {
	case FilterAI:
		return s.byHistory(shopID, true), nil
	case FilterNoAI:
		return s.byHistory(shopID, false), nil
	case FilterConfirmed:
		return s.byApproval(shopID, true), nil
	case FilterPending:
		return s.byApproval(shopID, false), nil
	default:
		return nil, fmt.Errorf("unknown product filter %q", filter)
	}
}

// ListProducts walks the shop's whole catalog and returns the products in
// the view. Products with history carry their latest generated description.
func (s *ClassificationService) ListProducts(
	ctx context.Context,
	shopID string,
	filter ProductFilter,
	query string,
) ([]model.AnnotatedProduct, error) {
	shopID = strings.ToLower(strings.TrimSpace(shopID))
	pred, err := s.Filter(shopID, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid filter")
	}

	catalog, err := resolveCatalog(ctx, s.sessions, s.catalogs, shopID)
	if err != nil {
		return nil, err
	}

	products, err := FilterAllProducts(ctx, catalog.ListProducts, query, s.pageSize, pred)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := make([]model.AnnotatedProduct, 0, len(products))
	if filter == FilterNoAI || len(products) == 0 {
		for _, p := range products {
			out = append(out, model.AnnotatedProduct{Product: p})
		}
		return out, nil
	}

	latest, err := s.updates.LatestByProduct(ctx, shopID, model.ProductIDs(products))
	if err != nil {
		return nil, fmt.Errorf("load latest descriptions: %w", err)
	}
	for _, p := range products {
		out = append(out, model.AnnotatedProduct{Product: p, AIDescription: latest[p.ID].NewDescription})
	}
	s.logger.DebugContext(ctx, "classified products", "shop_id", shopID, "filter", filter, "count", len(out))
	return out, nil
}

// byHistory keeps products that do (want=true) or do not have any update rows.
func (s *ClassificationService) byHistory(shopID string, want bool) PageFilter {
	return func(ctx context.Context, products []model.Product) ([]model.Product, error) {
		has, err := s.updates.ProductIDsWithUpdates(ctx, shopID, model.ProductIDs(products))
		if err != nil {
			return nil, fmt.Errorf("load description history: %w", err)
		}
		out := make([]model.Product, 0, len(products))
		for _, p := range products {
			if has[p.ID] == want {
				out = append(out, p)
			}
		}
		return out, nil
	}
}

// byApproval compares each captioned product's live description with its
// latest generated one. Products never captioned are in neither view.
func (s *ClassificationService) byApproval(shopID string, confirmed bool) PageFilter {
	return func(ctx context.Context, products []model.Product) ([]model.Product, error) {
		latest, err := s.updates.LatestByProduct(ctx, shopID, model.ProductIDs(products))
		if err != nil {
			return nil, fmt.Errorf("load latest descriptions: %w", err)
		}
		out := make([]model.Product, 0, len(products))
		for _, p := range products {
			u, ok := latest[p.ID]
			if !ok {
				continue
			}
			if model.StrippedEqual(p.Description, u.NewDescription) == confirmed {
				out = append(out, p)
			}
		}
		return out, nil
	}
}
