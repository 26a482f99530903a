// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"io"

	"github.com/portaldomei/mei-portal-go/internal/domain"
)

// ContentStore persists the content managed through the admin panel.
// Implemented by the Supabase adapter (or any other persistence layer).
type ContentStore interface {
	// Banners
	ListBanners(ctx context.Context, activeOnly bool) ([]domain.Banner, error)
	UpsertBanner(ctx context.Context, b *domain.Banner) (*domain.Banner, error)
	DeleteBanner(ctx context.Context, id string) error

	// Partners
	ListPartners(ctx context.Context) ([]domain.Partner, error)
	UpsertPartner(ctx context.Context, p *domain.Partner) (*domain.Partner, error)
	DeletePartner(ctx context.Context, id string) error

	// Posts
	ListPosts(ctx context.Context, publishedOnly bool) ([]domain.Post, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	UpsertPost(ctx context.Context, p *domain.Post) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error

	// Loan products
	ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error)
	UpsertLoanProduct(ctx context.Context, p *domain.LoanProduct) (*domain.LoanProduct, error)
	DeleteLoanProduct(ctx context.Context, id string) error
}

// Uploader stores an uploaded file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (*domain.UploadResult, error)
}

// AdvisorAgent asks the external generative service a free-text question.
type AdvisorAgent interface {
	Ask(ctx context.Context, question string) (*domain.AgentAnswer, error)
}

// AdminStore fetches and updates the admin credential record.
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*domain.AdminCredential, error)
	UpdateAdminCredential(ctx context.Context, id string, updates map[string]any) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	InvalidatePrefix(prefix string)
}
