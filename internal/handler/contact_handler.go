package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youssef/agora/internal/model"
)

// ContactAdminServiceInterface は問い合わせ管理ハンドラーが必要とするサービスインターフェース。
// 閲覧・更新ともfullスコープの管理者のみに許可される。判定はサービス層が行う。
type ContactAdminServiceInterface interface {
	// ListContactSubmissions は問い合わせの一覧を返す。
	ListContactSubmissions(ctx context.Context, p *model.Profile) ([]*model.ContactSubmission, error)
	// UpdateContactStatus は問い合わせの対応状態を更新する。
	UpdateContactStatus(ctx context.Context, p *model.Profile, id string, status model.ContactStatus) error
}

// ContactHandler は問い合わせ管理のHTTPハンドラー。
type ContactHandler struct {
	service  ContactAdminServiceInterface
	profiles ProfileLoader
}

// NewContactHandler はContactHandlerを生成する。
func NewContactHandler(service ContactAdminServiceInterface, profiles ProfileLoader) *ContactHandler {
	return &ContactHandler{
		service:  service,
		profiles: profiles,
	}
}

// updateContactStatusRequest は対応状態更新リクエストのボディ。
type updateContactStatusRequest struct {
	Status string `json:"status"`
}

// List は問い合わせの一覧を返す。
// GET {admin}/contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	subs, err := h.service.ListContactSubmissions(r.Context(), profile)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toContactResponseList(subs))
}

// UpdateStatus は問い合わせの対応状態を更新する。
// PATCH {admin}/contacts/:id/status
func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromRequest(w, r, h.profiles)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	var req updateContactStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.service.UpdateContactStatus(r.Context(), profile, id, model.ContactStatus(req.Status)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
