// Package model はドメインモデルを定義する。
package model

import "time"

// ContactStatus は問い合わせの対応状態を表す。
// 分類は運用上の目安であり、状態遷移に制約はない
// （archivedからnewへ戻すことも許可される）。
type ContactStatus string

const (
	// ContactStatusNew は未対応の問い合わせ。
	ContactStatusNew ContactStatus = "new"
	// ContactStatusRead は確認済みの問い合わせ。
	ContactStatusRead ContactStatus = "read"
	// ContactStatusReplied は返信済みの問い合わせ。
	ContactStatusReplied ContactStatus = "replied"
	// ContactStatusArchived はアーカイブ済みの問い合わせ。
	ContactStatusArchived ContactStatus = "archived"
)

// ValidContactStatus はsが有効な対応状態かどうかを返す。
func ValidContactStatus(s ContactStatus) bool {
	switch s {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived:
		return true
	}
	return false
}

// ContactSubmission は公開フォームからの問い合わせを表す。
// 匿名の公開送信で作成され、状態の更新はfullスコープの管理者のみが行える。
type ContactSubmission struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Subject      string
	Message      string
	Interest     string
	Organization string
	LinkedIn     string
	Status       ContactStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
