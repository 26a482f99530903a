package service

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/portaldomei/mei-portal-go/internal/domain"
	"github.com/portaldomei/mei-portal-go/internal/infra/observability"
	"github.com/portaldomei/mei-portal-go/internal/port"
)

var contentTracer = otel.Tracer("service/content")

// ContentService serves the site's editorial content and runs the admin
// panel's mutations. Reads go through a TTL cache keyed "content:*";
// every mutation invalidates the whole prefix so the site never serves a
// stale mix of old and new entries.
type ContentService struct {
	store    port.ContentStore
	uploader port.Uploader
	cache    port.Cache[any]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewContentService creates the content service with all dependencies injected.
func NewContentService(
	store port.ContentStore,
	uploader port.Uploader,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ContentService {
	return &ContentService{
		store:    store,
		uploader: uploader,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// ============================================================
// Public site reads (cached)
// ============================================================

func (s *ContentService) ListBanners(ctx context.Context, activeOnly bool) ([]domain.Banner, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.ListBanners")
	defer span.End()

	cacheKey := fmt.Sprintf("content:banners:%t", activeOnly)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if v, ok := cached.([]domain.Banner); ok {
			s.metrics.IncrCacheHit("content")
			return v, nil
		}
	}
	s.metrics.IncrCacheMiss("content")

	banners, err := s.store.ListBanners(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	s.cache.Set(cacheKey, banners)
	return banners, nil
}

func (s *ContentService) ListPartners(ctx context.Context) ([]domain.Partner, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.ListPartners")
	defer span.End()

	cacheKey := "content:partners"
	if cached, ok := s.cache.Get(cacheKey); ok {
		if v, ok := cached.([]domain.Partner); ok {
			s.metrics.IncrCacheHit("content")
			return v, nil
		}
	}
	s.metrics.IncrCacheMiss("content")

	partners, err := s.store.ListPartners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	s.cache.Set(cacheKey, partners)
	return partners, nil
}

func (s *ContentService) ListPosts(ctx context.Context, publishedOnly bool) ([]domain.Post, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.ListPosts")
	defer span.End()

	cacheKey := fmt.Sprintf("content:posts:%t", publishedOnly)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if v, ok := cached.([]domain.Post); ok {
			s.metrics.IncrCacheHit("content")
			return v, nil
		}
	}
	s.metrics.IncrCacheMiss("content")

	posts, err := s.store.ListPosts(ctx, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	s.cache.Set(cacheKey, posts)
	return posts, nil
}

func (s *ContentService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.GetPost")
	defer span.End()
	span.SetAttributes(attribute.String("post.id", id))

	return s.store.GetPost(ctx, id)
}

func (s *ContentService) ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.ListLoanProducts")
	defer span.End()

	cacheKey := "content:loan_products"
	if cached, ok := s.cache.Get(cacheKey); ok {
		if v, ok := cached.([]domain.LoanProduct); ok {
			s.metrics.IncrCacheHit("content")
			return v, nil
		}
	}
	s.metrics.IncrCacheMiss("content")

	products, err := s.store.ListLoanProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loan products: %w", err)
	}
	s.cache.Set(cacheKey, products)
	return products, nil
}

// GetHomeContent aggregates everything the landing page needs in one
// round trip, fetching the four collections concurrently.
func (s *ContentService) GetHomeContent(ctx context.Context) (*domain.HomeContent, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.GetHomeContent")
	defer span.End()

	var home domain.HomeContent

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		banners, err := s.ListBanners(gCtx, true)
		if err != nil {
			return err
		}
		home.Banners = banners
		return nil
	})
	g.Go(func() error {
		partners, err := s.ListPartners(gCtx)
		if err != nil {
			return err
		}
		home.Partners = partners
		return nil
	})
	g.Go(func() error {
		posts, err := s.ListPosts(gCtx, true)
		if err != nil {
			return err
		}
		home.Posts = posts
		return nil
	})
	g.Go(func() error {
		products, err := s.ListLoanProducts(gCtx)
		if err != nil {
			return err
		}
		home.LoanProducts = products
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("home content aggregation failed", zap.Error(err))
		return nil, err
	}
	return &home, nil
}

// ============================================================
// Admin panel mutations (invalidate the content cache)
// ============================================================

func (s *ContentService) SaveBanner(ctx context.Context, b *domain.Banner) (*domain.Banner, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.SaveBanner")
	defer span.End()

	if b.Title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "Título é obrigatório"}
	}
	if b.ImageURL == "" {
		return nil, &domain.ErrValidation{Field: "imageUrl", Message: "Imagem é obrigatória"}
	}

	saved, err := s.store.UpsertBanner(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("save banner: %w", err)
	}
	s.cache.InvalidatePrefix("content:")
	s.logger.Info("banner saved", zap.String("id", saved.ID))
	return saved, nil
}

func (s *ContentService) DeleteBanner(ctx context.Context, id string) error {
	ctx, span := contentTracer.Start(ctx, "ContentService.DeleteBanner")
	defer span.End()

	if err := s.store.DeleteBanner(ctx, id); err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	s.cache.InvalidatePrefix("content:")
	s.logger.Info("banner deleted", zap.String("id", id))
	return nil
}

func (s *ContentService) SavePartner(ctx context.Context, p *domain.Partner) (*domain.Partner, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.SavePartner")
	defer span.End()

	if p.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "Nome é obrigatório"}
	}

	saved, err := s.store.UpsertPartner(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("save partner: %w", err)
	}
	s.cache.InvalidatePrefix("content:")
	s.logger.Info("partner saved", zap.String("id", saved.ID))
	return saved, nil
}

func (s *ContentService) DeletePartner(ctx context.Context, id string) error {
	ctx, span := contentTracer.Start(ctx, "ContentService.DeletePartner")
	defer span.End()

	if err := s.store.DeletePartner(ctx, id); err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	s.cache.InvalidatePrefix("content:")
	s.logger.Info("partner deleted", zap.String("id", id))
	return nil
}

func (s *ContentService) SavePost(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.SavePost")
	defer span.End()

	if p.Title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "Título é obrigatório"}
	}
	if p.Slug == "" {
		return nil, &domain.ErrValidation{Field: "slug", Message: "Slug é obrigatório"}
	}

	saved, err := s.store.UpsertPost(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}
	s.cache.InvalidatePrefix("content:")
	s.logger.Info("post saved", zap.String("id", saved.ID), zap.String("slug", saved.Slug))
	return saved, nil
}

func (s *ContentService) DeletePost(ctx context.Context, id string) error {
	ctx, span := contentTracer.Start(ctx, "ContentService.DeletePost")
	defer span.End()

	if err := s.store.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.cache.InvalidatePrefix("content:")
	s.logger.Info("post deleted", zap.String("id", id))
	return nil
}

func (s *ContentService) SaveLoanProduct(ctx context.Context, p *domain.LoanProduct) (*domain.LoanProduct, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.SaveLoanProduct")
	defer span.End()

	if p.Title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "Título é obrigatório"}
	}

	saved, err := s.store.UpsertLoanProduct(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("save loan product: %w", err)
	}
	s.cache.InvalidatePrefix("content:")
	s.logger.Info("loan product saved", zap.String("id", saved.ID))
	return saved, nil
}

func (s *ContentService) DeleteLoanProduct(ctx context.Context, id string) error {
	ctx, span := contentTracer.Start(ctx, "ContentService.DeleteLoanProduct")
	defer span.End()

	if err := s.store.DeleteLoanProduct(ctx, id); err != nil {
		return fmt.Errorf("delete loan product: %w", err)
	}
	s.cache.InvalidatePrefix("content:")
	s.logger.Info("loan product deleted", zap.String("id", id))
	return nil
}

// UploadImage stores an image for use in banners, partner logos or posts.
func (s *ContentService) UploadImage(ctx context.Context, name, contentType string, body io.Reader) (*domain.UploadResult, error) {
	ctx, span := contentTracer.Start(ctx, "ContentService.UploadImage")
	defer span.End()
	span.SetAttributes(attribute.String("upload.name", name))

	if name == "" {
		return nil, &domain.ErrValidation{Field: "file", Message: "Arquivo é obrigatório"}
	}

	res, err := s.uploader.Upload(ctx, name, contentType, body)
	if err != nil {
		s.metrics.IncrExternalError("storage")
		return nil, fmt.Errorf("upload image: %w", err)
	}
	s.logger.Info("image uploaded", zap.String("url", res.URL))
	return res, nil
}
