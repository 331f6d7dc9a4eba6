// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youssef/agora/internal/middleware"
	"github.com/youssef/agora/internal/model"
)

// ProfileLoader はアカウントIDからプロフィールを取得するインターフェース。
// repository.ProfileRepositoryの部分集合として定義する。
// プロフィールが存在しない場合はnilを返す（ロール未割当は正常系）。
type ProfileLoader interface {
	FindByID(ctx context.Context, accountID string) (*model.Profile, error)
}

// AdminContentServiceInterface は管理APIが必要とするコンテンツ操作の集約インターフェース。
// content.Serviceが実装する。
type AdminContentServiceInterface interface {
	NewsServiceInterface
	ArticleServiceInterface
	ContactAdminServiceInterface
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	IdentityResolver  middleware.IdentityResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 管理API
	AdminPathPrefix string
	ProfileLoader   ProfileLoader
	ContentService  AdminContentServiceInterface
	UploadService   UploadServiceInterface
	UploadMaxBytes  int64

	// 公開API
	PublicService PublicContentServiceInterface

	// メトリクス（nil可）
	HTTPMetrics    middleware.HTTPStatusRecorder
	LoginMetrics   LoginMetricsRecorder
	UploadMetrics  UploadMetricsRecorder
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CORS → (グループごとの追加ミドルウェア)
//
// 管理API（AdminPathPrefix以下）はSession → CSRF → RateLimit(General)で保護する。
// 公開APIはRateLimit(General)のみ、問い合わせ送信はさらに専用レート制限を重ねる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.LoginMetrics)
	publicHandler := NewPublicHandler(deps.PublicService)
	newsHandler := NewNewsHandler(deps.ContentService, deps.ProfileLoader)
	articleHandler := NewArticleHandler(deps.ContentService, deps.ProfileLoader)
	contactHandler := NewContactHandler(deps.ContentService, deps.ProfileLoader)
	uploadHandler := NewUploadHandler(deps.UploadService, deps.UploadMaxBytes, deps.UploadMetrics)

	// --- 認証不要のルート ---

	r.Get("/health", publicHandler.Health)
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// 認証ルート
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// 公開コンテンツAPI
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/news", publicHandler.ListNews)
		r.Get("/api/news/{id}", publicHandler.GetNewsItem)
		r.Get("/api/articles", publicHandler.ListArticles)
		r.Get("/api/articles/{slug}", publicHandler.GetArticleBySlug)
		r.Get("/api/categories", publicHandler.ListCategories)

		// 問い合わせ送信は匿名で叩けるため専用レート制限を重ねる
		r.With(deps.RateLimiter.ContactMiddleware()).Post("/api/contact", publicHandler.SubmitContact)
	})

	// --- 管理API ---
	// 公開サイトからリンクされないプレフィックス以下に置く。
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	prefix := deps.AdminPathPrefix
	if prefix == "" {
		prefix = "/admin"
	}
	r.Route(prefix, func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.IdentityResolver))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ニュース管理
		r.Route("/news", func(r chi.Router) {
			r.Get("/", newsHandler.List)
			r.Post("/", newsHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", newsHandler.Update)
				r.Delete("/", newsHandler.Delete)
			})
		})

		// 記事管理
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", articleHandler.List)
			r.Post("/", articleHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", articleHandler.Update)
				r.Delete("/", articleHandler.Delete)
			})
		})

		// 問い合わせ管理
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", contactHandler.List)
			r.Patch("/{id}/status", contactHandler.UpdateStatus)
		})

		// 画像アップロード
		r.Post("/uploads/{bucket}", uploadHandler.Upload)
	})

	return r
}

// --- 共通ヘルパー ---

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeInvalidRequestBody はリクエストボディの解析失敗レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodePermissionDenied, model.ErrCodeEmailNotConfirmed:
		return http.StatusForbidden
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateSlug, model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidCommission, model.ErrCodeInvalidStatus, "INVALID_REQUEST":
		return http.StatusBadRequest
	case model.ErrCodeBackendUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case model.ErrCodeUnsupportedFileType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// profileFromRequest は認証済みリクエストから操作者のプロフィールを取得する。
// プロフィール未割当の場合は(nil, true)を返し、認可判定はサービス層に委ねる。
// アイデンティティがコンテキストにない場合は401を書き込み(nil, false)を返す。
func profileFromRequest(w http.ResponseWriter, r *http.Request, loader ProfileLoader) (*model.Profile, bool) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return nil, false
	}

	profile, err := loader.FindByID(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}

	return profile, true
}
