// Package model はドメインモデルを定義する。
package model

// Role はアプリケーションレベルのロールを表す。
type Role string

const (
	// RoleEditor は編集者。自分が執筆した記事のみを管理できる。
	RoleEditor Role = "editor"
	// RoleSuperAdmin は管理者。担当範囲（Scope）に応じて委員会ニュースを管理できる。
	RoleSuperAdmin Role = "super_admin"
)

// Scope はsuper_adminの担当範囲を表す。
// editorではこのフィールドは使用されない。
type Scope string

const (
	// ScopeFull は全委員会ニュースと全記事を管理できる唯一の設定。
	ScopeFull Scope = "full"
)

// Commission は委員会タグを表す。3つの固定値のみが有効。
type Commission string

const (
	// CommissionIR は国際関係委員会。
	CommissionIR Commission = "ir"
	// CommissionMP は国内政治委員会。
	CommissionMP Commission = "mp"
	// CommissionSD は社会開発委員会。
	CommissionSD Commission = "sd"
)

// AllCommissions は固定の委員会タグ一覧を返す。
func AllCommissions() []Commission {
	return []Commission{CommissionIR, CommissionMP, CommissionSD}
}

// ValidCommission はcが有効な委員会タグかどうかを返す。
func ValidCommission(c Commission) bool {
	switch c {
	case CommissionIR, CommissionMP, CommissionSD:
		return true
	}
	return false
}

// Profile はアプリケーションレベルのプロフィールを表す。
// IDはAccount.IDと一致する。行の作成は管理者が帯域外で行い、
// アプリケーション自身は作成しない。認証済みでもProfileが存在しない
// 「ロール未割当」状態は正常系として扱う。
type Profile struct {
	ID       string
	Username string
	Role     Role
	Scope    Scope
}
