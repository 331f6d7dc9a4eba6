// Package model はドメインモデルを定義する。
package model

import "time"

// Account は認証用のアカウントを表す。
// メールアドレスとパスワードハッシュを保持する。
// ロールや担当範囲はProfileが持ち、Accountは認証情報のみを扱う。
type Account struct {
	ID               string
	Email            string
	PasswordHash     string
	DisplayName      string
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Session はログインセッションを表す。
type Session struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity は認証済みアカウントのスナップショットを表す。
// セッションストア経由で配布され、受け取り側はコピーのみを保持する。
type Identity struct {
	ID    string
	Email string
}
