package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youssef/agora/internal/model"
	"github.com/youssef/agora/internal/storage"
)

// UploadServiceInterface は画像アップロードハンドラーが必要とするインターフェース。
// storage.Uploaderの部分集合として定義する。
type UploadServiceInterface interface {
	// Upload はファイルを保存し、公開URLを返す。
	Upload(ctx context.Context, bucket, filename, contentType string, size int64, body io.Reader) (string, error)
}

// UploadMetricsRecorder はアップロードの集計に必要なインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type UploadMetricsRecorder interface {
	RecordUpload(bucket string)
}

// UploadHandler は画像アップロードのHTTPハンドラー。
type UploadHandler struct {
	uploader UploadServiceInterface
	maxBytes int64
	metrics  UploadMetricsRecorder
}

// NewUploadHandler はUploadHandlerを生成する。metricsはnil可。
func NewUploadHandler(uploader UploadServiceInterface, maxBytes int64, metrics UploadMetricsRecorder) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = storage.DefaultMaxUploadBytes
	}
	return &UploadHandler{
		uploader: uploader,
		maxBytes: maxBytes,
		metrics:  metrics,
	}
}

// Upload はmultipart/form-dataのfileフィールドを受け取り保存する。
// POST {admin}/uploads/:bucket
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if !storage.ValidBucket(bucket) {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationFailedError("不明なアップロード先です"))
		return
	}

	// multipart解析前にリクエスト全体のサイズを制限する
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1024*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationFailedError("fileフィールドが必要です"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	url, err := h.uploader.Upload(r.Context(), bucket, header.Filename, contentType, header.Size, file)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordUpload(bucket)
	}

	writeJSONResponse(w, http.StatusCreated, map[string]string{"url": url})
}
