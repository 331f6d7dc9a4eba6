// Package model はドメインモデルを定義する。
package model

import "time"

// ContentStatus はコンテンツの公開状態を表す。
type ContentStatus string

const (
	// ContentStatusDraft は下書き状態。
	ContentStatusDraft ContentStatus = "draft"
	// ContentStatusPublished は公開状態。
	ContentStatusPublished ContentStatus = "published"
	// ContentStatusArchived はアーカイブ状態。
	ContentStatusArchived ContentStatus = "archived"
)

// ValidContentStatus はsが有効な公開状態かどうかを返す。
func ValidContentStatus(s ContentStatus) bool {
	switch s {
	case ContentStatusDraft, ContentStatusPublished, ContentStatusArchived:
		return true
	}
	return false
}

// NewsItem は委員会ニュース（短報）を表す。
// 必ず1つの委員会タグを持つ。
type NewsItem struct {
	ID              string
	Commission      Commission
	Title           string
	Content         string // サニタイズ済みHTML
	ImageURL        string
	AuthorID        string
	AuthorName      string
	Category        string
	MetaTitle       string
	MetaDescription string
	ReadTimeMinutes int
	ViewsCount      int
	IsFeatured      bool
	Status          ContentStatus
	PublishedAt     *time.Time // 初回公開日時。以後の編集で変更されない
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Article は長編記事を表す。委員会タグは持たず、執筆者に帰属する。
type Article struct {
	ID               string
	Title            string
	Slug             string
	Content          string // サニタイズ済みHTML
	Excerpt          string
	CoverImageURL    string
	FeaturedImageURL string
	AuthorID         string
	AuthorName       string
	AuthorBio        string
	EditorName       string
	Category         string
	MetaTitle        string
	MetaDescription  string
	MetaKeywords     string
	ReadTimeMinutes  int
	ViewsCount       int
	IsFeatured       bool
	Status           ContentStatus
	PublishedAt      *time.Time // 初回公開日時。以後の編集で変更されない
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ArticleCategory は記事カテゴリを表す。
type ArticleCategory struct {
	ID           string
	Name         string
	Slug         string
	Description  string
	Color        string
	Icon         string
	DisplayOrder int
	CreatedAt    time.Time
}
