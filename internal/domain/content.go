package domain

import "time"

// Content entities managed through the admin panel and served to the site.

// Banner is an affiliate banner shown on the site.
type Banner struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"imageUrl"`
	TargetURL string    `json:"targetUrl"`
	Active    bool      `json:"active"`
	Position  int       `json:"position"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Partner is a partner entry with a logo and a link.
type Partner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logoUrl"`
	SiteURL   string    `json:"siteUrl"`
	Position  int       `json:"position"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Post is a blog/CMS article.
type Post struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Body        string    `json:"body"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	Published   bool      `json:"published"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LoanProduct is the editorial description of a lending product shown next
// to the loan simulator. Distinct from the simulator's static modality
// profiles: this is marketing copy, that is reference data.
type LoanProduct struct {
	ID          string    `json:"id"`
	Modality    string    `json:"modality"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PartnerURL  string    `json:"partnerUrl,omitempty"`
	Position    int       `json:"position"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HomeContent aggregates everything the site's landing page needs.
type HomeContent struct {
	Banners      []Banner      `json:"banners"`
	Partners     []Partner     `json:"partners"`
	Posts        []Post        `json:"posts"`
	LoanProducts []LoanProduct `json:"loanProducts"`
}

// UploadResult is returned by the file-upload service.
type UploadResult struct {
	URL string `json:"url"`
}
