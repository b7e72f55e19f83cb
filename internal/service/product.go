package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/events"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/repo"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/transport"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/util"
)

const TopProductsCount = 3

type ProductService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Cache  TopCache
	Index  ProductIndex
}

func withEmptyReviews(items []models.Product) []models.Product {
	for i := range items {
		if items[i].Reviews == nil {
			items[i].Reviews = []models.Review{}
		}
	}
	return items
}

func (s *ProductService) ListProducts(ctx context.Context, keyword string, page int) (*transport.ProductPage, error) {
	page = util.ClampPage(page)
	offset, limit := util.Calculate(page, util.DefaultPageSize)

	total, items, err := s.Repo.ListProducts(ctx, keyword, offset, limit)
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{
		Products: withEmptyReviews(items),
		Page:     page,
		Pages:    util.Pages(total, limit),
	}, nil
}

// SearchProducts uses the search index when one is configured and falls
// back to the keyword listing otherwise or when the index fails.
func (s *ProductService) SearchProducts(ctx context.Context, q string, page int) (*transport.ProductPage, error) {
	if s.Index == nil {
		return s.ListProducts(ctx, q, page)
	}
	page = util.ClampPage(page)
	offset, limit := util.Calculate(page, util.DefaultPageSize)

	total, ids, err := s.Index.Search(ctx, q, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to db", "error", err)
		return s.ListProducts(ctx, q, page)
	}

	items, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{
		Products: withEmptyReviews(items),
		Page:     page,
		Pages:    util.Pages(total, limit),
	}, nil
}

func (s *ProductService) TopProducts(ctx context.Context) ([]models.Product, error) {
	l := logging.FromContext(ctx)
	cached := s.Cache != nil
	var gen int64
	if cached {
		items, ok, err := s.Cache.Get(ctx)
		if err != nil {
			l.Warn("top_products_cache_failed", "error", err)
		} else if ok {
			return items, nil
		}
		// Read before the DB so a concurrent invalidation discards our write.
		if gen, err = s.Cache.Generation(ctx); err != nil {
			l.Warn("top_products_cache_failed", "error", err)
			cached = false
		}
	}

	items, err := s.Repo.TopProducts(ctx, TopProductsCount)
	if err != nil {
		return nil, err
	}
	items = withEmptyReviews(items)

	if cached {
		if _, err := s.Cache.Set(ctx, items, gen); err != nil {
			l.Warn("top_products_cache_failed", "error", err)
		}
	}
	return items, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, err
	}
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
	return p, nil
}

// CreateProduct inserts a placeholder product owned by ownerID, to be filled
// in through UpdateProduct.
func (s *ProductService) CreateProduct(ctx context.Context, ownerID uuid.UUID) (*models.Product, error) {
	p := &models.Product{
		UserID:       ownerID,
		Name:         "Sample name",
		Price:        0,
		Image:        "/images/sample.jpg",
		Brand:        "Sample brand",
		Category:     "Sample category",
		CountInStock: 0,
		NumReviews:   0,
		Description:  "Sample description",
		Reviews:      []models.Review{},
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, p, "product_created")
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	if req.Price != nil && *req.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.CountInStock != nil && *req.CountInStock < 0 {
		return nil, fmt.Errorf("%w: countInStock cannot be negative", ErrValidation)
	}

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	setString := func(dst *string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			*dst = *v
		}
	}
	setString(&p.Name, req.Name)
	setString(&p.Description, req.Description)
	setString(&p.Image, req.Image)
	setString(&p.Brand, req.Brand)
	setString(&p.Category, req.Category)
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.CountInStock != nil {
		p.CountInStock = *req.CountInStock
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, p, "product_updated")
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return err
	}

	s.invalidateTop(ctx)
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, "product_deleted", id.String(), nil)
	return nil
}

// AddReview is the only write path for Rating and NumReviews.
func (s *ProductService) AddReview(ctx context.Context, productID uuid.UUID, author *models.User, req transport.CreateReviewRequest) (*models.Product, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	p, err := s.Repo.AddReview(ctx, productID, &models.Review{
		UserID:  author.ID,
		Name:    author.Name,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		case errors.Is(err, repo.ErrReviewExists):
			return nil, fmt.Errorf("%w: product already reviewed", ErrConflict)
		}
		return nil, err
	}

	s.afterWrite(ctx, p, "product_reviewed")
	return p, nil
}

func (s *ProductService) invalidateTop(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warn("top_products_cache_failed", "error", err)
	}
}

func (s *ProductService) afterWrite(ctx context.Context, p *models.Product, eventType string) {
	s.invalidateTop(ctx)
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, eventType, p.ID.String(), map[string]any{
		"name":       p.Name,
		"price":      p.Price,
		"rating":     p.Rating,
		"numReviews": p.NumReviews,
	})
}
