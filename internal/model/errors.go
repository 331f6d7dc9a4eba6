// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, content, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodePermissionDenied    = "PERMISSION_DENIED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeDuplicateSlug       = "DUPLICATE_SLUG"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeBackendUnavailable  = "BACKEND_UNAVAILABLE"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeEmailNotConfirmed   = "EMAIL_NOT_CONFIRMED"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInvalidCommission   = "INVALID_COMMISSION"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeFileTooLarge        = "FILE_TOO_LARGE"
	ErrCodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewPermissionDeniedError は権限拒否エラーを生成する。
// ポリシー判定が操作を拒否した場合に使用する。
func NewPermissionDeniedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodePermissionDenied,
		Message:  fmt.Sprintf("この操作を行う権限がありません: %s", reason),
		Category: "auth",
		Action:   "担当範囲を確認してください。権限が必要な場合は管理者に連絡してください。",
	}
}

// NewNotFoundError は対象が見つからない場合のエラーを生成する。
// 想定内の状態であり、深刻なエラーとしてログに記録しない。
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("対象が見つかりません: %s", resource),
		Category: "content",
		Action:   "IDまたはURLを確認してください。",
	}
}

// NewDuplicateSlugError はスラッグ重複エラーを生成する。
// 一般的な失敗と区別し、呼び出し側が別のスラッグ入力を促せるようにする。
func NewDuplicateSlugError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSlug,
		Message:  fmt.Sprintf("このスラッグは既に使用されています: %s", slug),
		Category: "validation",
		Action:   "別のスラッグを指定してください。",
	}
}

// NewValidationFailedError は必須項目の未入力エラーを生成する。
// リクエスト発行前のクライアント側チェックで使用する。
func NewValidationFailedError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に不備があります: %s", detail),
		Category: "validation",
		Action:   "必須項目を入力してから再度お試しください。",
	}
}

// NewBackendUnavailableError はバックエンド未設定・接続不可エラーを生成する。
func NewBackendUnavailableError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeBackendUnavailable,
		Message:  fmt.Sprintf("バックエンドに接続できません: %s", detail),
		Category: "system",
		Action:   "設定を確認するか、しばらく待ってから再度お試しください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailNotConfirmedError はメール未確認エラーを生成する。
// 他の認証失敗と区別して返す。
func NewEmailNotConfirmedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotConfirmed,
		Message:  "メールアドレスが未確認です。",
		Category: "auth",
		Action:   "確認メールのリンクを開くか、管理者にアカウントの確認を依頼してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidCommissionError は無効な委員会タグエラーを生成する。
func NewInvalidCommissionError(commission string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCommission,
		Message:  fmt.Sprintf("無効な委員会タグです: %s", commission),
		Category: "validation",
		Action:   "委員会には ir、mp、sd のいずれかを指定してください。",
	}
}

// NewInvalidStatusError は無効な状態値エラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効な状態です: %s", status),
		Category: "validation",
		Action:   "指定可能な状態の一覧を確認してください。",
	}
}

// NewFileTooLargeError はアップロードサイズ超過エラーを生成する。
func NewFileTooLargeError(maxBytes int64) *APIError {
	return &APIError{
		Code:     ErrCodeFileTooLarge,
		Message:  fmt.Sprintf("ファイルサイズが上限（%dMB）を超えています。", maxBytes/(1024*1024)),
		Category: "validation",
		Action:   "画像を圧縮してから再度アップロードしてください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細は返さずログに残す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "サーバー内部でエラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUnsupportedFileTypeError は非対応ファイル形式エラーを生成する。
func NewUnsupportedFileTypeError(contentType string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedFileType,
		Message:  fmt.Sprintf("対応していないファイル形式です: %s", contentType),
		Category: "validation",
		Action:   "PNG、JPEG、WebP等の画像ファイルを選択してください。",
	}
}
