package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/youssef/agora/internal/content"
	"github.com/youssef/agora/internal/model"
)

// newPublicRouter はPublicHandlerのルートだけを構成したルーターを返す。
// chi.URLParamが機能するようルーター経由でテストする。
func newPublicRouter(service PublicContentServiceInterface) http.Handler {
	h := NewPublicHandler(service)
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/api/news", h.ListNews)
	r.Get("/api/news/{id}", h.GetNewsItem)
	r.Get("/api/articles", h.ListArticles)
	r.Get("/api/articles/{slug}", h.GetArticleBySlug)
	r.Get("/api/categories", h.ListCategories)
	r.Post("/api/contact", h.SubmitContact)
	return r
}

func TestPublicHandler_Health(t *testing.T) {
	router := newPublicRouter(&mockPublicContentService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestPublicHandler_ListNews_PassesCommissionFilter(t *testing.T) {
	var gotCommission model.Commission
	var gotLimit int
	service := &mockPublicContentService{
		publishedNewsFn: func(ctx context.Context, commission model.Commission, limit int) ([]*model.NewsItem, error) {
			gotCommission = commission
			gotLimit = limit
			return []*model.NewsItem{{ID: "n1", Commission: commission, Status: model.ContentStatusPublished}}, nil
		},
	}
	router := newPublicRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/news?commission=ir&limit=5", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotCommission != model.CommissionIR {
		t.Errorf("commission = %q, want %q", gotCommission, model.CommissionIR)
	}
	if gotLimit != 5 {
		t.Errorf("limit = %d, want 5", gotLimit)
	}

	var items []newsResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(items) != 1 || items[0].ID != "n1" {
		t.Errorf("items = %+v", items)
	}
}

func TestPublicHandler_ListNews_InvalidCommission_Returns400(t *testing.T) {
	service := &mockPublicContentService{
		publishedNewsFn: func(ctx context.Context, commission model.Commission, limit int) ([]*model.NewsItem, error) {
			return nil, model.NewInvalidCommissionError(string(commission))
		},
	}
	router := newPublicRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/news?commission=unknown", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestPublicHandler_GetNewsItem_NotFound_Returns404(t *testing.T) {
	service := &mockPublicContentService{
		getNewsItemFn: func(ctx context.Context, id string) (*model.NewsItem, error) {
			return nil, model.NewNotFoundError("ニュース")
		},
	}
	router := newPublicRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/news/missing", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}

	var body apiErrorResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != model.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeNotFound)
	}
}

func TestPublicHandler_GetArticleBySlug_ReturnsArticle(t *testing.T) {
	service := &mockPublicContentService{
		getArticleFn: func(ctx context.Context, slug string) (*model.Article, error) {
			return &model.Article{ID: "a1", Slug: slug, Title: "Title", Status: model.ContentStatusPublished}, nil
		},
	}
	router := newPublicRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/morocco-the-un", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var got articleResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if got.Slug != "morocco-the-un" {
		t.Errorf("slug = %q, want %q", got.Slug, "morocco-the-un")
	}
}

func TestPublicHandler_ListArticles_PassesFilters(t *testing.T) {
	var gotCategory string
	var gotFeatured bool
	service := &mockPublicContentService{
		publishedArticlesFn: func(ctx context.Context, category string, featuredOnly bool, limit int) ([]*model.Article, error) {
			gotCategory = category
			gotFeatured = featuredOnly
			return []*model.Article{}, nil
		},
	}
	router := newPublicRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/articles?category=politics&featured=true", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if gotCategory != "politics" {
		t.Errorf("category = %q, want %q", gotCategory, "politics")
	}
	if !gotFeatured {
		t.Error("featuredOnly should be true")
	}
}

func TestPublicHandler_SubmitContact_Returns201(t *testing.T) {
	var gotInput content.ContactInput
	service := &mockPublicContentService{
		submitContactFn: func(ctx context.Context, input content.ContactInput) (*model.ContactSubmission, error) {
			gotInput = input
			return &model.ContactSubmission{ID: "c1", Status: model.ContactStatusNew}, nil
		},
	}
	router := newPublicRouter(service)

	body := `{"name":"Sara","email":"sara@example.com","subject":"Join","message":"Hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}
	if gotInput.Name != "Sara" || gotInput.Subject != "Join" {
		t.Errorf("input = %+v", gotInput)
	}
}

func TestPublicHandler_SubmitContact_ValidationFailed_Returns400(t *testing.T) {
	service := &mockPublicContentService{
		submitContactFn: func(ctx context.Context, input content.ContactInput) (*model.ContactSubmission, error) {
			return nil, model.NewValidationFailedError("名前は必須です")
		},
	}
	router := newPublicRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", defaultPublicListLimit},
		{"abc", defaultPublicListLimit},
		{"0", defaultPublicListLimit},
		{"-3", defaultPublicListLimit},
		{"10", 10},
		{"1000", maxPublicListLimit},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.raw); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
