package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youssef/agora/internal/content"
	"github.com/youssef/agora/internal/model"
)

// NewsServiceInterface はニュース管理ハンドラーが必要とするサービスインターフェース。
// 認可判定はサービス層が行う。
type NewsServiceInterface interface {
	// ListNews は操作者が管理できる範囲のニュース一覧を返す。
	ListNews(ctx context.Context, p *model.Profile) ([]*model.NewsItem, error)
	// CreateNews はニュースを作成する。
	CreateNews(ctx context.Context, p *model.Profile, input content.NewsInput) (*model.NewsItem, error)
	// UpdateNews はニュースを更新する。
	UpdateNews(ctx context.Context, p *model.Profile, id string, input content.NewsInput) (*model.NewsItem, error)
	// DeleteNews はニュースを削除する。
	DeleteNews(ctx context.Context, p *model.Profile, id string) error
}

// NewsHandler はニュース管理のHTTPハンドラー。
type NewsHandler struct {
	service  NewsServiceInterface
	profiles ProfileLoader
}

// NewNewsHandler はNewsHandlerを生成する。
func NewNewsHandler(service NewsServiceInterface, profiles ProfileLoader) *NewsHandler {
	return &NewsHandler{
		service:  service,
		profiles: profiles,
	}
}

// newsRequest はニュースの作成・更新リクエストのボディ。
type newsRequest struct {
	Commission      string `json:"commission"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	ImageURL        string `json:"image_url"`
	Category        string `json:"category"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	ReadTimeMinutes int    `json:"read_time_minutes"`
	IsFeatured      bool   `json:"is_featured"`
	Status          string `json:"status"`
}

func (req newsRequest) toInput() content.NewsInput {
	return content.NewsInput{
		Commission:      model.Commission(req.Commission),
		Title:           req.Title,
		Content:         req.Content,
		ImageURL:        req.ImageURL,
		Category:        req.Category,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		ReadTimeMinutes: req.ReadTimeMinutes,
		IsFeatured:      req.IsFeatured,
		Status:          model.ContentStatus(req.Status),
	}
}

// List は操作者が管理できる範囲のニュース一覧を返す。
// GET {admin}/news
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	items, err := h.service.ListNews(r.Context(), profile)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNewsResponseList(items))
}

// Create はニュースを作成する。
// POST {admin}/news
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	var req newsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	item, err := h.service.CreateNews(r.Context(), profile, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toNewsResponse(item))
}

// Update はニュースを更新する。
// PUT {admin}/news/:id
func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	var req newsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	item, err := h.service.UpdateNews(r.Context(), profile, id, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNewsResponse(item))
}

// Delete はニュースを削除する。
// DELETE {admin}/news/:id
func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.DeleteNews(r.Context(), profile, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
