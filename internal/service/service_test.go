package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/portaldomei/mei-portal-go/internal/calc"
	"github.com/portaldomei/mei-portal-go/internal/domain"
	"github.com/portaldomei/mei-portal-go/internal/infra/cache"
	"github.com/portaldomei/mei-portal-go/internal/infra/observability"
	"github.com/portaldomei/mei-portal-go/internal/service"
)

// --- Mocks ---

type mockContentStore struct {
	banners      []domain.Banner
	partners     []domain.Partner
	posts        []domain.Post
	loanProducts []domain.LoanProduct
	err          error
	listCalls    int
}

func (m *mockContentStore) ListBanners(_ context.Context, _ bool) ([]domain.Banner, error) {
	m.listCalls++
	return m.banners, m.err
}

func (m *mockContentStore) UpsertBanner(_ context.Context, b *domain.Banner) (*domain.Banner, error) {
	if m.err != nil {
		return nil, m.err
	}
	saved := *b
	if saved.ID == "" {
		saved.ID = "banner-1"
	}
	return &saved, nil
}

func (m *mockContentStore) DeleteBanner(_ context.Context, _ string) error { return m.err }

func (m *mockContentStore) ListPartners(_ context.Context) ([]domain.Partner, error) {
	return m.partners, m.err
}

func (m *mockContentStore) UpsertPartner(_ context.Context, p *domain.Partner) (*domain.Partner, error) {
	return p, m.err
}

func (m *mockContentStore) DeletePartner(_ context.Context, _ string) error { return m.err }

func (m *mockContentStore) ListPosts(_ context.Context, _ bool) ([]domain.Post, error) {
	return m.posts, m.err
}

func (m *mockContentStore) GetPost(_ context.Context, id string) (*domain.Post, error) {
	for i := range m.posts {
		if m.posts[i].ID == id {
			return &m.posts[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "post", ID: id}
}

func (m *mockContentStore) UpsertPost(_ context.Context, p *domain.Post) (*domain.Post, error) {
	return p, m.err
}

func (m *mockContentStore) DeletePost(_ context.Context, _ string) error { return m.err }

func (m *mockContentStore) ListLoanProducts(_ context.Context) ([]domain.LoanProduct, error) {
	return m.loanProducts, m.err
}

func (m *mockContentStore) UpsertLoanProduct(_ context.Context, p *domain.LoanProduct) (*domain.LoanProduct, error) {
	return p, m.err
}

func (m *mockContentStore) DeleteLoanProduct(_ context.Context, _ string) error { return m.err }

type mockUploader struct {
	result *domain.UploadResult
	err    error
}

func (m *mockUploader) Upload(_ context.Context, _, _ string, _ io.Reader) (*domain.UploadResult, error) {
	return m.result, m.err
}

type mockAgent struct {
	answer *domain.AgentAnswer
	err    error
}

func (m *mockAgent) Ask(_ context.Context, _ string) (*domain.AgentAnswer, error) {
	return m.answer, m.err
}

type mockAdminStore struct {
	cred    *domain.AdminCredential
	updates map[string]any
	err     error
}

func (m *mockAdminStore) GetAdminByUsername(_ context.Context, username string) (*domain.AdminCredential, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.cred == nil || m.cred.Username != username {
		return nil, &domain.ErrNotFound{Resource: "admin_credential", ID: username}
	}
	copied := *m.cred
	return &copied, nil
}

func (m *mockAdminStore) UpdateAdminCredential(_ context.Context, _ string, updates map[string]any) error {
	m.updates = updates
	return nil
}

func newContentService(store *mockContentStore, uploader *mockUploader) *service.ContentService {
	return service.NewContentService(
		store,
		uploader,
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

// --- Content tests ---

func TestGetHomeContent_AggregatesAllCollections(t *testing.T) {
	store := &mockContentStore{
		banners:      []domain.Banner{{ID: "b1", Title: "Banner", Active: true}},
		partners:     []domain.Partner{{ID: "p1", Name: "Parceiro"}},
		posts:        []domain.Post{{ID: "a1", Slug: "primeiro-post", Title: "Primeiro", Published: true}},
		loanProducts: []domain.LoanProduct{{ID: "l1", Title: "Consignado"}},
	}
	svc := newContentService(store, &mockUploader{})

	home, err := svc.GetHomeContent(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(home.Banners) != 1 || home.Banners[0].ID != "b1" {
		t.Errorf("unexpected banners: %+v", home.Banners)
	}
	if len(home.Partners) != 1 || home.Partners[0].Name != "Parceiro" {
		t.Errorf("unexpected partners: %+v", home.Partners)
	}
	if len(home.Posts) != 1 || home.Posts[0].Slug != "primeiro-post" {
		t.Errorf("unexpected posts: %+v", home.Posts)
	}
	if len(home.LoanProducts) != 1 {
		t.Errorf("unexpected loan products: %+v", home.LoanProducts)
	}
}

func TestGetHomeContent_PropagatesStoreError(t *testing.T) {
	store := &mockContentStore{err: errors.New("supabase down")}
	svc := newContentService(store, &mockUploader{})

	if _, err := svc.GetHomeContent(context.Background()); err == nil {
		t.Fatal("expected error when store fails")
	}
}

func TestListBanners_SecondCallServedFromCache(t *testing.T) {
	store := &mockContentStore{banners: []domain.Banner{{ID: "b1", Active: true}}}
	svc := newContentService(store, &mockUploader{})

	if _, err := svc.ListBanners(context.Background(), true); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.ListBanners(context.Background(), true); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if store.listCalls != 1 {
		t.Errorf("expected 1 store call, got %d", store.listCalls)
	}
}

func TestSaveBanner_InvalidatesCache(t *testing.T) {
	store := &mockContentStore{banners: []domain.Banner{{ID: "b1", Active: true}}}
	svc := newContentService(store, &mockUploader{})

	if _, err := svc.ListBanners(context.Background(), true); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	_, err := svc.SaveBanner(context.Background(), &domain.Banner{Title: "Novo", ImageURL: "https://cdn/img.png"})
	if err != nil {
		t.Fatalf("save banner: %v", err)
	}

	if _, err := svc.ListBanners(context.Background(), true); err != nil {
		t.Fatalf("list after save: %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("expected cache invalidation to force a second store call, got %d", store.listCalls)
	}
}

func TestSaveBanner_RejectsMissingFields(t *testing.T) {
	svc := newContentService(&mockContentStore{}, &mockUploader{})

	_, err := svc.SaveBanner(context.Background(), &domain.Banner{ImageURL: "https://cdn/img.png"})
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadImage(t *testing.T) {
	svc := newContentService(&mockContentStore{}, &mockUploader{
		result: &domain.UploadResult{URL: "https://cdn/public/banner.png"},
	})

	res, err := svc.UploadImage(context.Background(), "banner.png", "image/png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.URL != "https://cdn/public/banner.png" {
		t.Errorf("unexpected url %q", res.URL)
	}

	if _, err := svc.UploadImage(context.Background(), "", "image/png", strings.NewReader("img")); err == nil {
		t.Error("expected error for empty file name")
	}
}

// --- Advisor tests ---

func TestAdvisorAsk_Success(t *testing.T) {
	agent := &mockAgent{answer: &domain.AgentAnswer{
		Text:             "O MEI paga um valor fixo mensal de DAS.",
		Sources:          []domain.AdvisorSource{{URI: "https://gov.br/mei"}},
		PromptTokens:     120,
		CompletionTokens: 80,
	}}
	svc := service.NewAdvisorService(agent, observability.NewMetrics(), zap.NewNop())

	resp, err := svc.Ask(context.Background(), &domain.AdvisorRequest{Question: "Quanto o MEI paga de imposto?"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.ConversationID == "" {
		t.Error("expected a generated conversation id")
	}
	if resp.Text == "" || len(resp.Sources) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAdvisorAsk_KeepsConversationID(t *testing.T) {
	agent := &mockAgent{answer: &domain.AgentAnswer{Text: "ok"}}
	svc := service.NewAdvisorService(agent, observability.NewMetrics(), zap.NewNop())

	resp, err := svc.Ask(context.Background(), &domain.AdvisorRequest{
		Question:       "E os juros?",
		ConversationID: "conv-42",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.ConversationID != "conv-42" {
		t.Errorf("expected conversation id to be preserved, got %q", resp.ConversationID)
	}
}

func TestAdvisorAsk_RejectsEmptyQuestion(t *testing.T) {
	svc := service.NewAdvisorService(&mockAgent{}, observability.NewMetrics(), zap.NewNop())

	_, err := svc.Ask(context.Background(), &domain.AdvisorRequest{Question: "   "})
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdvisorMetrics_ReflectsSuccessesAndFailures(t *testing.T) {
	agent := &mockAgent{answer: &domain.AgentAnswer{Text: "ok", PromptTokens: 30, CompletionTokens: 20}}
	svc := service.NewAdvisorService(agent, observability.NewMetrics(), zap.NewNop())

	for i := 0; i < 2; i++ {
		if _, err := svc.Ask(context.Background(), &domain.AdvisorRequest{Question: "Quanto custa o DAS?"}); err != nil {
			t.Fatalf("ask %d: %v", i, err)
		}
	}
	agent.err = errors.New("agent down")
	agent.answer = nil
	if _, err := svc.Ask(context.Background(), &domain.AdvisorRequest{Question: "E agora?"}); err == nil {
		t.Fatal("expected error from failing agent")
	}

	snap := svc.Metrics(context.Background())
	if snap.TotalRequests != 3 {
		t.Errorf("expected 3 total requests, got %d", snap.TotalRequests)
	}
	if snap.ErrorRate < 0.33 || snap.ErrorRate > 0.34 {
		t.Errorf("expected error rate near 1/3, got %f", snap.ErrorRate)
	}
	// 100 tokens over 3 requests
	if snap.AvgTokensPerRequest < 33.3 || snap.AvgTokensPerRequest > 33.4 {
		t.Errorf("expected avg tokens near 33.3, got %f", snap.AvgTokensPerRequest)
	}
}

func TestAdvisorAsk_AgentFailure(t *testing.T) {
	agent := &mockAgent{err: &domain.ErrExternalService{Service: "advisory_agent", Err: errors.New("timeout")}}
	svc := service.NewAdvisorService(agent, observability.NewMetrics(), zap.NewNop())

	if _, err := svc.Ask(context.Background(), &domain.AdvisorRequest{Question: "oi"}); err == nil {
		t.Fatal("expected error when agent fails")
	}
}

// --- Admin auth tests ---

func adminStore(t *testing.T, password string) *mockAdminStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &mockAdminStore{cred: &domain.AdminCredential{
		ID:           "admin-1",
		Username:     "admin",
		PasswordHash: string(hash),
	}}
}

func TestAdminLogin_IssuesVerifiableToken(t *testing.T) {
	store := adminStore(t, "s3nha-forte")
	svc := service.NewAdminAuthService(store, "test-secret", time.Hour, zap.NewNop())

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{Username: "admin", Password: "s3nha-forte"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a session token")
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Errorf("expected expiry in the future, got %v", resp.ExpiresAt)
	}

	claims, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Sub != "admin-1" || claims.Role != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	store := adminStore(t, "s3nha-forte")
	svc := service.NewAdminAuthService(store, "test-secret", time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Username: "admin", Password: "errada"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if store.updates["failed_attempts"] != 1 {
		t.Errorf("expected failed_attempts increment, got %+v", store.updates)
	}
}

func TestAdminLogin_UnknownUser(t *testing.T) {
	store := adminStore(t, "s3nha-forte")
	svc := service.NewAdminAuthService(store, "test-secret", time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Username: "root", Password: "s3nha-forte"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminLogin_LockedCredential(t *testing.T) {
	store := adminStore(t, "s3nha-forte")
	lockedUntil := time.Now().Add(10 * time.Minute)
	store.cred.LockedUntil = &lockedUntil
	svc := service.NewAdminAuthService(store, "test-secret", time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Username: "admin", Password: "s3nha-forte"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized while locked, got %v", err)
	}
}

func TestVerifyToken_RejectsWrongSecret(t *testing.T) {
	store := adminStore(t, "s3nha-forte")
	issuer := service.NewAdminAuthService(store, "secret-a", time.Hour, zap.NewNop())
	verifier := service.NewAdminAuthService(store, "secret-b", time.Hour, zap.NewNop())

	resp, err := issuer.Login(context.Background(), &domain.LoginRequest{Username: "admin", Password: "s3nha-forte"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := verifier.VerifyToken(resp.Token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestChangePassword(t *testing.T) {
	store := adminStore(t, "senha-atual")
	svc := service.NewAdminAuthService(store, "test-secret", time.Hour, zap.NewNop())

	if err := svc.ChangePassword(context.Background(), "admin", "senha-atual", "nova-senha-123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := store.updates["password_hash"]; !ok {
		t.Errorf("expected password_hash update, got %+v", store.updates)
	}

	if err := svc.ChangePassword(context.Background(), "admin", "senha-errada", "nova-senha-123"); err == nil {
		t.Error("expected error for wrong current password")
	}
	if err := svc.ChangePassword(context.Background(), "admin", "senha-atual", "curta"); err == nil {
		t.Error("expected error for short new password")
	}
}

// --- Calculator service tests ---

func TestCalculatorCompute_DispatchesAndReturnsResult(t *testing.T) {
	svc := service.NewCalculatorService(calc.DefaultPolicy(), observability.NewMetrics(), zap.NewNop())

	raw := json.RawMessage(`{"revenue":"3.000,00","regime":"mei"}`)
	result, err := svc.Compute(context.Background(), calc.KindTax, raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calc.StateOf(result) != calc.StateComputed {
		t.Errorf("expected computed state, got %v", calc.StateOf(result))
	}
}

func TestCalculatorCompute_UnknownKind(t *testing.T) {
	svc := service.NewCalculatorService(calc.DefaultPolicy(), observability.NewMetrics(), zap.NewNop())

	if _, err := svc.Compute(context.Background(), calc.Kind("unknown"), json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestCalculatorKinds(t *testing.T) {
	svc := service.NewCalculatorService(calc.DefaultPolicy(), observability.NewMetrics(), zap.NewNop())

	kinds := svc.Kinds(context.Background())
	if len(kinds) != 7 {
		t.Fatalf("expected 7 calculators, got %d", len(kinds))
	}
	for _, d := range kinds {
		if d.Title == "" {
			t.Errorf("calculator %s has no title", d.Kind)
		}
	}
}
