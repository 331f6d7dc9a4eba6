package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/youssef/agora/internal/content"
	"github.com/youssef/agora/internal/model"
)

// defaultPublicListLimit は公開一覧の既定の取得件数。
const defaultPublicListLimit = 20

// maxPublicListLimit は公開一覧の取得件数の上限。
const maxPublicListLimit = 100

// PublicContentServiceInterface は公開ハンドラーが必要とするサービスインターフェース。
type PublicContentServiceInterface interface {
	// PublishedNews は公開済みニュースの一覧を返す。commissionが空の場合は全委員会。
	PublishedNews(ctx context.Context, commission model.Commission, limit int) ([]*model.NewsItem, error)
	// GetPublishedNewsItem は公開済みニュースの詳細を返す。閲覧数を加算する。
	GetPublishedNewsItem(ctx context.Context, id string) (*model.NewsItem, error)
	// PublishedArticles は公開済み記事の一覧を返す。
	PublishedArticles(ctx context.Context, category string, featuredOnly bool, limit int) ([]*model.Article, error)
	// GetPublishedArticleBySlug は公開済み記事の詳細を返す。閲覧数を加算する。
	GetPublishedArticleBySlug(ctx context.Context, slug string) (*model.Article, error)
	// ListCategories は記事カテゴリの一覧を返す。
	ListCategories(ctx context.Context) ([]*model.ArticleCategory, error)
	// SubmitContact は問い合わせを受け付ける。
	SubmitContact(ctx context.Context, input content.ContactInput) (*model.ContactSubmission, error)
}

// PublicHandler は公開サイト向けのHTTPハンドラー。
// 認証不要で、公開済みコンテンツのみを返す。
type PublicHandler struct {
	service PublicContentServiceInterface
}

// NewPublicHandler はPublicHandlerを生成する。
func NewPublicHandler(service PublicContentServiceInterface) *PublicHandler {
	return &PublicHandler{service: service}
}

// contactRequest は問い合わせ送信リクエストのボディ。
type contactRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	Interest     string `json:"interest"`
	Organization string `json:"organization"`
	LinkedIn     string `json:"linkedin"`
}

// Health はヘルスチェックエンドポイント。
// GET /health
func (h *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListNews は公開済みニュースの一覧を返す。
// GET /api/news?commission=ir&limit=20
func (h *PublicHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	commission := model.Commission(r.URL.Query().Get("commission"))
	limit := parseLimit(r.URL.Query().Get("limit"))

	items, err := h.service.PublishedNews(r.Context(), commission, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNewsResponseList(items))
}

// GetNewsItem は公開済みニュースの詳細を返す。
// GET /api/news/:id
func (h *PublicHandler) GetNewsItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.service.GetPublishedNewsItem(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNewsResponse(item))
}

// ListArticles は公開済み記事の一覧を返す。
// GET /api/articles?category=politics&featured=true&limit=20
func (h *PublicHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	featuredOnly := r.URL.Query().Get("featured") == "true"
	limit := parseLimit(r.URL.Query().Get("limit"))

	articles, err := h.service.PublishedArticles(r.Context(), category, featuredOnly, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toArticleResponseList(articles))
}

// GetArticleBySlug は公開済み記事の詳細を返す。
// GET /api/articles/:slug
func (h *PublicHandler) GetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, err := h.service.GetPublishedArticleBySlug(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toArticleResponse(article))
}

// ListCategories は記事カテゴリの一覧を返す。
// GET /api/categories
func (h *PublicHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toCategoryResponseList(categories))
}

// SubmitContact は問い合わせ送信を処理する。
// POST /api/contact
func (h *PublicHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	submission, err := h.service.SubmitContact(r.Context(), content.ContactInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Subject:      req.Subject,
		Message:      req.Message,
		Interest:     req.Interest,
		Organization: req.Organization,
		LinkedIn:     req.LinkedIn,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]string{"id": submission.ID})
}

// parseLimit は一覧取得件数のクエリパラメータを解釈する。
// 未指定・不正値は既定値、上限超過は上限値に丸める。
func parseLimit(raw string) int {
	if raw == "" {
		return defaultPublicListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultPublicListLimit
	}
	if n > maxPublicListLimit {
		return maxPublicListLimit
	}
	return n
}
