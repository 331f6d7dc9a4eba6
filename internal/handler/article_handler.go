package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youssef/agora/internal/content"
	"github.com/youssef/agora/internal/model"
)

// ArticleServiceInterface は記事管理ハンドラーが必要とするサービスインターフェース。
// 認可判定はサービス層が行う。
type ArticleServiceInterface interface {
	// ListArticles は操作者が管理できる範囲の記事一覧を返す。
	ListArticles(ctx context.Context, p *model.Profile) ([]*model.Article, error)
	// CreateArticle は記事を作成する。
	CreateArticle(ctx context.Context, p *model.Profile, input content.ArticleInput) (*model.Article, error)
	// UpdateArticle は記事を更新する。
	UpdateArticle(ctx context.Context, p *model.Profile, id string, input content.ArticleInput) (*model.Article, error)
	// DeleteArticle は記事を削除する。
	DeleteArticle(ctx context.Context, p *model.Profile, id string) error
}

// ArticleHandler は記事管理のHTTPハンドラー。
type ArticleHandler struct {
	service  ArticleServiceInterface
	profiles ProfileLoader
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface, profiles ProfileLoader) *ArticleHandler {
	return &ArticleHandler{
		service:  service,
		profiles: profiles,
	}
}

// articleRequest は記事の作成・更新リクエストのボディ。
type articleRequest struct {
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	Content          string `json:"content"`
	Excerpt          string `json:"excerpt"`
	CoverImageURL    string `json:"cover_image_url"`
	FeaturedImageURL string `json:"featured_image_url"`
	AuthorBio        string `json:"author_bio"`
	EditorName       string `json:"editor_name"`
	Category         string `json:"category"`
	MetaTitle        string `json:"meta_title"`
	MetaDescription  string `json:"meta_description"`
	MetaKeywords     string `json:"meta_keywords"`
	ReadTimeMinutes  int    `json:"read_time_minutes"`
	IsFeatured       bool   `json:"is_featured"`
	Status           string `json:"status"`
}

func (req articleRequest) toInput() content.ArticleInput {
	return content.ArticleInput{
		Title:            req.Title,
		Slug:             req.Slug,
		Content:          req.Content,
		Excerpt:          req.Excerpt,
		CoverImageURL:    req.CoverImageURL,
		FeaturedImageURL: req.FeaturedImageURL,
		AuthorBio:        req.AuthorBio,
		EditorName:       req.EditorName,
		Category:         req.Category,
		MetaTitle:        req.MetaTitle,
		MetaDescription:  req.MetaDescription,
		MetaKeywords:     req.MetaKeywords,
		ReadTimeMinutes:  req.ReadTimeMinutes,
		IsFeatured:       req.IsFeatured,
		Status:           model.ContentStatus(req.Status),
	}
}

// List は操作者が管理できる範囲の記事一覧を返す。
// GET {admin}/articles
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	articles, err := h.service.ListArticles(r.Context(), profile)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toArticleResponseList(articles))
}

// Create は記事を作成する。
// POST {admin}/articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	article, err := h.service.CreateArticle(r.Context(), profile, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toArticleResponse(article))
}

// Update は記事を更新する。
// PUT {admin}/articles/:id
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	article, err := h.service.UpdateArticle(r.Context(), profile, id, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toArticleResponse(article))
}

// Delete は記事を削除する。
// DELETE {admin}/articles/:id
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.DeleteArticle(r.Context(), profile, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
