package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/youssef/agora/internal/content"
	"github.com/youssef/agora/internal/middleware"
	"github.com/youssef/agora/internal/model"
)

// --- テスト ---

// newTestRouter はNewRouterで構成した本番同等のハンドラーを返す。
// セッションID "session-ok" のみを有効なセッションとして扱う。
func newTestRouter(t *testing.T, contentService AdminContentServiceInterface, publicService PublicContentServiceInterface) http.Handler {
	t.Helper()

	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(6000, 2))
	t.Cleanup(rateLimiter.Stop)

	authService := &mockAuthService{
		getIdentityFn: func(ctx context.Context, sessionID string) (*model.Identity, error) {
			if sessionID == "session-ok" {
				return &model.Identity{ID: "account-1", Email: "admin@example.com"}, nil
			}
			return nil, nil
		},
	}

	deps := &RouterDeps{
		IdentityResolver:  authService,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rateLimiter,
		CSRFConfig:        middleware.CSRFConfig{},
		AuthService:       authService,
		AuthConfig:        AuthHandlerConfig{SessionMaxAge: 86400},
		AdminPathPrefix:   "/cache-post",
		ProfileLoader:     fullAdminLoader(),
		ContentService:    contentService,
		UploadService:     &mockUploader{},
		PublicService:     publicService,
	}
	return NewRouter(deps)
}

// withSession はセッションCookieを付与する。
func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-ok"})
	return req
}

// withCSRF はCSRFトークンのCookieとヘッダーを付与する。
func withCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "token-123"})
	req.Header.Set("X-CSRF-Token", "token-123")
	return req
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &mockAdminContentService{}, &mockPublicContentService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRouter_PublicNews_NoAuthRequired(t *testing.T) {
	publicService := &mockPublicContentService{
		publishedNewsFn: func(ctx context.Context, commission model.Commission, limit int) ([]*model.NewsItem, error) {
			return []*model.NewsItem{{ID: "n1", Status: model.ContentStatusPublished}}, nil
		},
	}
	router := newTestRouter(t, &mockAdminContentService{}, publicService)

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var items []newsResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %+v", items)
	}
}

func TestRouter_CSRFTokenEndpoint_ReturnsToken(t *testing.T) {
	router := newTestRouter(t, &mockAdminContentService{}, &mockPublicContentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["token"] == "" {
		t.Error("token should not be empty")
	}
}

func TestRouter_AdminNews_WithoutSession_Returns401(t *testing.T) {
	router := newTestRouter(t, &mockAdminContentService{}, &mockPublicContentService{})

	req := httptest.NewRequest(http.MethodGet, "/cache-post/news", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestRouter_AdminNews_WithSession_Returns200(t *testing.T) {
	var gotProfile *model.Profile
	contentService := &mockAdminContentService{
		listNewsFn: func(ctx context.Context, p *model.Profile) ([]*model.NewsItem, error) {
			gotProfile = p
			return []*model.NewsItem{}, nil
		},
	}
	router := newTestRouter(t, contentService, &mockPublicContentService{})

	req := withSession(httptest.NewRequest(http.MethodGet, "/cache-post/news", nil))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotProfile == nil || gotProfile.ID != "account-1" {
		t.Errorf("profile = %+v, want account-1", gotProfile)
	}
}

func TestRouter_AdminNewsCreate_WithoutCSRF_Returns403(t *testing.T) {
	contentService := &mockAdminContentService{
		createNewsFn: func(ctx context.Context, p *model.Profile, input content.NewsInput) (*model.NewsItem, error) {
			t.Fatal("service should not be called without CSRF token")
			return nil, nil
		},
	}
	router := newTestRouter(t, contentService, &mockPublicContentService{})

	body := `{"commission":"ir","title":"t","content":"c"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/cache-post/news", strings.NewReader(body)))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestRouter_AdminNewsCreate_WithSessionAndCSRF_Returns201(t *testing.T) {
	contentService := &mockAdminContentService{
		createNewsFn: func(ctx context.Context, p *model.Profile, input content.NewsInput) (*model.NewsItem, error) {
			return &model.NewsItem{ID: "n-new", Commission: input.Commission, Title: input.Title}, nil
		},
	}
	router := newTestRouter(t, contentService, &mockPublicContentService{})

	body := `{"commission":"ir","title":"Summit Recap","content":"<p>x</p>"}`
	req := withCSRF(withSession(httptest.NewRequest(http.MethodPost, "/cache-post/news", strings.NewReader(body))))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}
}

func TestRouter_AdminUpload_RequiresSession(t *testing.T) {
	router := newTestRouter(t, &mockAdminContentService{}, &mockPublicContentService{})

	req := httptest.NewRequest(http.MethodPost, "/cache-post/uploads/news-images", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// 問い合わせ送信は一般APIより厳しいレート制限がかかる。
func TestRouter_ContactSubmission_RateLimited(t *testing.T) {
	router := newTestRouter(t, &mockAdminContentService{}, &mockPublicContentService{})

	body := `{"name":"Sara","email":"sara@example.com","subject":"Join","message":"Hello"}`
	var lastStatus int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
		req.RemoteAddr = "203.0.113.77:51234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		lastStatus = w.Result().StatusCode
	}

	if lastStatus != http.StatusTooManyRequests {
		t.Errorf("third contact submission status = %d, want %d", lastStatus, http.StatusTooManyRequests)
	}
}

func TestRouter_AuthLogin_SetsSessionCookie(t *testing.T) {
	router := newTestRouter(t, &mockAdminContentService{}, &mockPublicContentService{})

	body := `{"email":"admin@example.com","password":"secret-password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("session cookie should be set on login")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
}

func TestRouter_SecurityHeaders_AppliedGlobally(t *testing.T) {
	router := newTestRouter(t, &mockAdminContentService{}, &mockPublicContentService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Result().Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
}
