package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/portaldomei/mei-portal-go/internal/domain"
)

// ============================================================
// ContentStore implementation — site content CRUD via PostgREST
// ============================================================

// Row types mirror the PostgREST column names. The API uses camelCase, the
// database uses snake_case, so each entity maps through its row struct.

type bannerRow struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	TargetURL string    `json:"target_url"`
	Active    bool      `json:"active"`
	Position  int       `json:"position"`
	UpdatedAt time.Time `json:"updated_at"`
}

type partnerRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logo_url"`
	SiteURL   string    `json:"site_url"`
	Position  int       `json:"position"`
	UpdatedAt time.Time `json:"updated_at"`
}

type postRow struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Body        string    `json:"body"`
	CoverURL    string    `json:"cover_url"`
	Published   bool      `json:"published"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type loanProductRow struct {
	ID          string    `json:"id"`
	Modality    string    `json:"modality"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PartnerURL  string    `json:"partner_url"`
	Position    int       `json:"position"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Banners ---

func (c *Client) ListBanners(ctx context.Context, activeOnly bool) ([]domain.Banner, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBanners")
	defer span.End()

	path := "banners?order=position.asc"
	if activeOnly {
		path = "banners?active=eq.true&order=position.asc"
	}
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Banner{}, nil
	}

	var rows []bannerRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode banners: %w", err)
	}

	banners := make([]domain.Banner, 0, len(rows))
	for _, r := range rows {
		banners = append(banners, domain.Banner{
			ID:        r.ID,
			Title:     r.Title,
			ImageURL:  r.ImageURL,
			TargetURL: r.TargetURL,
			Active:    r.Active,
			Position:  r.Position,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return banners, nil
}

func (c *Client) UpsertBanner(ctx context.Context, b *domain.Banner) (*domain.Banner, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertBanner")
	defer span.End()

	data := map[string]any{
		"title":      b.Title,
		"image_url":  b.ImageURL,
		"target_url": b.TargetURL,
		"active":     b.Active,
		"position":   b.Position,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}

	if b.ID == "" {
		data["id"] = uuid.New().String()
		body, err := c.doPost(ctx, "banners", data)
		if err != nil {
			return nil, fmt.Errorf("create banner: %w", err)
		}
		return decodeOneBanner(body)
	}

	path := fmt.Sprintf("banners?id=eq.%s", b.ID)
	if err := c.doPatch(ctx, path, data); err != nil {
		return nil, fmt.Errorf("update banner: %w", err)
	}

	saved := *b
	saved.UpdatedAt = time.Now().UTC()
	return &saved, nil
}

func (c *Client) DeleteBanner(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteBanner")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("banners?id=eq.%s", id))
}

func decodeOneBanner(body []byte) (*domain.Banner, error) {
	var rows []bannerRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode banners: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("banner insert returned no rows")
	}
	r := rows[0]
	return &domain.Banner{
		ID:        r.ID,
		Title:     r.Title,
		ImageURL:  r.ImageURL,
		TargetURL: r.TargetURL,
		Active:    r.Active,
		Position:  r.Position,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// --- Partners ---

func (c *Client) ListPartners(ctx context.Context) ([]domain.Partner, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPartners")
	defer span.End()

	body, err := c.get(ctx, "partners?order=position.asc")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Partner{}, nil
	}

	var rows []partnerRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode partners: %w", err)
	}

	partners := make([]domain.Partner, 0, len(rows))
	for _, r := range rows {
		partners = append(partners, domain.Partner{
			ID:        r.ID,
			Name:      r.Name,
			LogoURL:   r.LogoURL,
			SiteURL:   r.SiteURL,
			Position:  r.Position,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return partners, nil
}

func (c *Client) UpsertPartner(ctx context.Context, p *domain.Partner) (*domain.Partner, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertPartner")
	defer span.End()

	data := map[string]any{
		"name":       p.Name,
		"logo_url":   p.LogoURL,
		"site_url":   p.SiteURL,
		"position":   p.Position,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}

	if p.ID == "" {
		data["id"] = uuid.New().String()
		body, err := c.doPost(ctx, "partners", data)
		if err != nil {
			return nil, fmt.Errorf("create partner: %w", err)
		}
		var rows []partnerRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode partners: %w", err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("partner insert returned no rows")
		}
		r := rows[0]
		return &domain.Partner{
			ID:        r.ID,
			Name:      r.Name,
			LogoURL:   r.LogoURL,
			SiteURL:   r.SiteURL,
			Position:  r.Position,
			UpdatedAt: r.UpdatedAt,
		}, nil
	}

	path := fmt.Sprintf("partners?id=eq.%s", p.ID)
	if err := c.doPatch(ctx, path, data); err != nil {
		return nil, fmt.Errorf("update partner: %w", err)
	}

	saved := *p
	saved.UpdatedAt = time.Now().UTC()
	return &saved, nil
}

func (c *Client) DeletePartner(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePartner")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("partners?id=eq.%s", id))
}

// --- Posts ---

func (c *Client) ListPosts(ctx context.Context, publishedOnly bool) ([]domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPosts")
	defer span.End()

	path := "posts?order=published_at.desc"
	if publishedOnly {
		path = "posts?published=eq.true&order=published_at.desc"
	}
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Post{}, nil
	}

	var rows []postRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, postFromRow(r))
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetPost")
	defer span.End()

	path := fmt.Sprintf("posts?id=eq.%s&limit=1", id)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "post", ID: id}
	}

	var rows []postRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "post", ID: id}
	}
	p := postFromRow(rows[0])
	return &p, nil
}

func (c *Client) UpsertPost(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertPost")
	defer span.End()

	data := map[string]any{
		"slug":       p.Slug,
		"title":      p.Title,
		"summary":    p.Summary,
		"body":       p.Body,
		"cover_url":  p.CoverURL,
		"published":  p.Published,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if p.Published {
		when := p.PublishedAt
		if when.IsZero() {
			when = time.Now().UTC()
		}
		data["published_at"] = when.Format(time.RFC3339)
	}

	if p.ID == "" {
		data["id"] = uuid.New().String()
		body, err := c.doPost(ctx, "posts", data)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		var rows []postRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode posts: %w", err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("post insert returned no rows")
		}
		saved := postFromRow(rows[0])
		return &saved, nil
	}

	path := fmt.Sprintf("posts?id=eq.%s", p.ID)
	if err := c.doPatch(ctx, path, data); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return c.GetPost(ctx, p.ID)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePost")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("posts?id=eq.%s", id))
}

func postFromRow(r postRow) domain.Post {
	return domain.Post{
		ID:          r.ID,
		Slug:        r.Slug,
		Title:       r.Title,
		Summary:     r.Summary,
		Body:        r.Body,
		CoverURL:    r.CoverURL,
		Published:   r.Published,
		PublishedAt: r.PublishedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// --- Loan products ---

func (c *Client) ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLoanProducts")
	defer span.End()

	body, err := c.get(ctx, "loan_products?order=position.asc")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.LoanProduct{}, nil
	}

	var rows []loanProductRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode loan_products: %w", err)
	}

	products := make([]domain.LoanProduct, 0, len(rows))
	for _, r := range rows {
		products = append(products, domain.LoanProduct{
			ID:          r.ID,
			Modality:    r.Modality,
			Title:       r.Title,
			Description: r.Description,
			PartnerURL:  r.PartnerURL,
			Position:    r.Position,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return products, nil
}

func (c *Client) UpsertLoanProduct(ctx context.Context, p *domain.LoanProduct) (*domain.LoanProduct, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertLoanProduct")
	defer span.End()

	data := map[string]any{
		"modality":    p.Modality,
		"title":       p.Title,
		"description": p.Description,
		"partner_url": p.PartnerURL,
		"position":    p.Position,
		"updated_at":  time.Now().UTC().Format(time.RFC3339),
	}

	if p.ID == "" {
		data["id"] = uuid.New().String()
		body, err := c.doPost(ctx, "loan_products", data)
		if err != nil {
			return nil, fmt.Errorf("create loan product: %w", err)
		}
		var rows []loanProductRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode loan_products: %w", err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("loan product insert returned no rows")
		}
		r := rows[0]
		return &domain.LoanProduct{
			ID:          r.ID,
			Modality:    r.Modality,
			Title:       r.Title,
			Description: r.Description,
			PartnerURL:  r.PartnerURL,
			Position:    r.Position,
			UpdatedAt:   r.UpdatedAt,
		}, nil
	}

	path := fmt.Sprintf("loan_products?id=eq.%s", p.ID)
	if err := c.doPatch(ctx, path, data); err != nil {
		return nil, fmt.Errorf("update loan product: %w", err)
	}

	saved := *p
	saved.UpdatedAt = time.Now().UTC()
	return &saved, nil
}

func (c *Client) DeleteLoanProduct(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteLoanProduct")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("loan_products?id=eq.%s", id))
}
