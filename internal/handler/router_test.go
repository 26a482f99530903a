package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/portaldomei/mei-portal-go/internal/calc"
	"github.com/portaldomei/mei-portal-go/internal/domain"
	"github.com/portaldomei/mei-portal-go/internal/handler"
	"github.com/portaldomei/mei-portal-go/internal/infra/cache"
	"github.com/portaldomei/mei-portal-go/internal/infra/observability"
	"github.com/portaldomei/mei-portal-go/internal/service"
)

// --- Mocks ---

type stubContentStore struct{}

func (stubContentStore) ListBanners(_ context.Context, _ bool) ([]domain.Banner, error) {
	return []domain.Banner{{ID: "b1", Title: "Banner", Active: true}}, nil
}
func (stubContentStore) UpsertBanner(_ context.Context, b *domain.Banner) (*domain.Banner, error) {
	saved := *b
	saved.ID = "b-new"
	return &saved, nil
}
func (stubContentStore) DeleteBanner(_ context.Context, _ string) error { return nil }
func (stubContentStore) ListPartners(_ context.Context) ([]domain.Partner, error) {
	return []domain.Partner{}, nil
}
func (stubContentStore) UpsertPartner(_ context.Context, p *domain.Partner) (*domain.Partner, error) {
	return p, nil
}
func (stubContentStore) DeletePartner(_ context.Context, _ string) error { return nil }
func (stubContentStore) ListPosts(_ context.Context, _ bool) ([]domain.Post, error) {
	return []domain.Post{}, nil
}
func (stubContentStore) GetPost(_ context.Context, id string) (*domain.Post, error) {
	return nil, &domain.ErrNotFound{Resource: "post", ID: id}
}
func (stubContentStore) UpsertPost(_ context.Context, p *domain.Post) (*domain.Post, error) {
	return p, nil
}
func (stubContentStore) DeletePost(_ context.Context, _ string) error { return nil }
func (stubContentStore) ListLoanProducts(_ context.Context) ([]domain.LoanProduct, error) {
	return []domain.LoanProduct{}, nil
}
func (stubContentStore) UpsertLoanProduct(_ context.Context, p *domain.LoanProduct) (*domain.LoanProduct, error) {
	return p, nil
}
func (stubContentStore) DeleteLoanProduct(_ context.Context, _ string) error { return nil }

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, _, _ string, _ io.Reader) (*domain.UploadResult, error) {
	return &domain.UploadResult{URL: "https://cdn/public/file.png"}, nil
}

type stubAgent struct{}

func (stubAgent) Ask(_ context.Context, _ string) (*domain.AgentAnswer, error) {
	return &domain.AgentAnswer{Text: "resposta", PromptTokens: 10, CompletionTokens: 5}, nil
}

type stubAdminStore struct {
	hash string
}

func (s stubAdminStore) GetAdminByUsername(_ context.Context, username string) (*domain.AdminCredential, error) {
	if username != "admin" {
		return nil, &domain.ErrNotFound{Resource: "admin_credential", ID: username}
	}
	return &domain.AdminCredential{ID: "admin-1", Username: "admin", PasswordHash: s.hash}, nil
}

func (s stubAdminStore) UpdateAdminCredential(_ context.Context, _ string, _ map[string]any) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	hash, err := bcrypt.GenerateFromPassword([]byte("senha-admin"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	svcs := handler.Services{
		Calculators: service.NewCalculatorService(calc.DefaultPolicy(), metrics, logger),
		Content:     service.NewContentService(stubContentStore{}, stubUploader{}, cache.New[any](time.Minute), metrics, logger),
		Advisor:     service.NewAdvisorService(stubAgent{}, metrics, logger),
		Auth:        service.NewAdminAuthService(stubAdminStore{hash: string(hash)}, "test-secret", time.Hour, logger),
	}
	return handler.NewRouter(svcs, metrics, logger, []string{"*"})
}

func doRequest(t *testing.T, router http.Handler, method, path string, body []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- Operational endpoints ---

func TestHealthz(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var status domain.HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode health status: %v", err)
	}
	if status.Status != "healthy" {
		t.Errorf("expected healthy, got %q", status.Status)
	}
}

func TestReadyz(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/readyz", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	// Run one calculation so the application counters have a sample
	body := []byte(`{"revenue":"3.000,00","regime":"mei"}`)
	if rec := doRequest(t, router, http.MethodPost, "/v1/calculators/tax", body, ""); rec.Code != http.StatusOK {
		t.Fatalf("calculator call failed: %d", rec.Code)
	}

	rec := doRequest(t, router, http.MethodGet, "/metrics", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "meiportal_calculator_runs_total") {
		t.Error("expected meiportal_calculator_runs_total series in /metrics output")
	}
}

// --- Calculators ---

func TestListCalculators(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/v1/calculators", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Calculators []calc.Descriptor `json:"calculators"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Calculators) != 7 {
		t.Errorf("expected 7 calculators, got %d", len(resp.Calculators))
	}
}

func TestComputeTaxEndToEnd(t *testing.T) {
	body := []byte(`{"revenue":"3.000,00","regime":"mei"}`)
	rec := doRequest(t, newTestRouter(t), http.MethodPost, "/v1/calculators/tax", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		State     string `json:"state"`
		Breakdown []struct {
			Label   string  `json:"label"`
			Amount  float64 `json:"amount"`
			Display string  `json:"display"`
		} `json:"breakdown"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.State != "computed" {
		t.Fatalf("expected computed, got %q", resp.State)
	}
	if len(resp.Breakdown) == 0 {
		t.Error("expected at least one breakdown line")
	}
	for _, line := range resp.Breakdown {
		if line.Display == "" {
			t.Errorf("line %q has empty display", line.Label)
		}
	}
}

func TestComputeUnknownKind(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodPost, "/v1/calculators/lottery", []byte(`{}`), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCalculatorPolicy(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/v1/calculators/policy", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Year           int              `json:"year"`
		MinimumWage    float64          `json:"minimumWage"`
		LoanModalities []map[string]any `json:"loanModalities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Year == 0 || resp.MinimumWage <= 0 {
		t.Errorf("unexpected policy payload: %+v", resp)
	}
	if len(resp.LoanModalities) == 0 {
		t.Error("expected loan modalities in policy payload")
	}
}

// --- Content ---

func TestHomeContent(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/v1/content/home", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var home domain.HomeContent
	if err := json.Unmarshal(rec.Body.Bytes(), &home); err != nil {
		t.Fatalf("decode home content: %v", err)
	}
	if len(home.Banners) != 1 {
		t.Errorf("expected 1 banner, got %d", len(home.Banners))
	}
}

func TestGetPostNotFound(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/v1/content/posts/nope", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// --- Advisor ---

func TestAdvisorAsk(t *testing.T) {
	body := []byte(`{"question":"Quanto o MEI paga por mês?"}`)
	rec := doRequest(t, newTestRouter(t), http.MethodPost, "/v1/advisor", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.AdvisorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text == "" || resp.ConversationID == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAdvisorAskEmptyQuestion(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodPost, "/v1/advisor", []byte(`{"question":""}`), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// --- Admin ---

func login(t *testing.T, router http.Handler) string {
	t.Helper()
	body := []byte(`{"username":"admin","password":"senha-admin"}`)
	rec := doRequest(t, router, http.MethodPost, "/v1/admin/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestAdminLoginAndProtectedRoute(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	rec := doRequest(t, router, http.MethodGet, "/v1/admin/banners", nil, token)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", rec.Code)
	}
}

func TestAdminRouteRejectsMissingToken(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/v1/admin/banners", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAdminRouteRejectsBadToken(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/v1/admin/banners", nil, "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestAdminLoginWrongPassword(t *testing.T) {
	body := []byte(`{"username":"admin","password":"errada"}`)
	rec := doRequest(t, newTestRouter(t), http.MethodPost, "/v1/admin/login", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAdminSaveBanner(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	body := []byte(`{"title":"Novo banner","imageUrl":"https://cdn/img.png","targetUrl":"https://parceiro.com","active":true,"position":1}`)
	rec := doRequest(t, router, http.MethodPost, "/v1/admin/banners", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var saved domain.Banner
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode saved banner: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected saved banner to have an id")
	}
}
