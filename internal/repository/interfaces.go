// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/youssef/agora/internal/model"
)

// ErrDuplicateSlug は記事スラッグの一意制約違反を表すセンチネルエラー。
// サービス層でAPIErrorのDUPLICATE_SLUGに変換される。
var ErrDuplicateSlug = errors.New("duplicate slug")

// ErrDuplicateEmail はアカウントのメールアドレス一意制約違反を表すセンチネルエラー。
var ErrDuplicateEmail = errors.New("duplicate email")

// AccountRepository は認証アカウントの永続化インターフェース。
type AccountRepository interface {
	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// FindByEmail はメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// Create はアカウントを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, account *model.Account) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// ProfileRepository はプロフィール（ロール＋担当範囲）の永続化インターフェース。
// 行の作成は管理者が帯域外で行うため、Createは提供しない。
type ProfileRepository interface {
	// FindByID はアカウントIDでプロフィールを取得する。
	// 見つからない場合はnilを返す（ロール未割当は正常系）。
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// NewsRepository は委員会ニュースの永続化インターフェース。
type NewsRepository interface {
	// FindByID は指定IDのニュースを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.NewsItem, error)

	// ListByCommissions は指定の委員会タグ集合に属するニュースを
	// created_at降順で返す。空集合を渡してはならない（呼び出し側で弾く）。
	ListByCommissions(ctx context.Context, commissions []model.Commission) ([]*model.NewsItem, error)

	// ListPublished は公開済みニュースをpublished_at降順で返す。
	// commissionが空文字の場合は全委員会が対象。limit<=0は既定値に丸める。
	ListPublished(ctx context.Context, commission model.Commission, limit int) ([]*model.NewsItem, error)

	// Create はニュースを作成する。
	Create(ctx context.Context, item *model.NewsItem) error

	// Update はニュースを上書き更新する。
	Update(ctx context.Context, item *model.NewsItem) error

	// DeleteByID は指定IDのニュースを削除する。
	DeleteByID(ctx context.Context, id string) error

	// IncrementViews は閲覧数を1加算する。
	IncrementViews(ctx context.Context, id string) error
}

// ArticleRepository は長編記事の永続化インターフェース。
type ArticleRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// FindBySlug はスラッグで記事を検索する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Article, error)

	// ListAll は全記事をcreated_at降順で返す。
	ListAll(ctx context.Context) ([]*model.Article, error)

	// ListByAuthor は指定執筆者の記事をcreated_at降順で返す。
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Article, error)

	// ListPublished は公開済み記事をpublished_at降順で返す。
	// categoryが空文字の場合は全カテゴリが対象。featuredOnlyで注目記事のみに絞る。
	ListPublished(ctx context.Context, category string, featuredOnly bool, limit int) ([]*model.Article, error)

	// Create は記事を作成する。スラッグ重複時はErrDuplicateSlugを返す。
	Create(ctx context.Context, article *model.Article) error

	// Update は記事を上書き更新する。スラッグ重複時はErrDuplicateSlugを返す。
	Update(ctx context.Context, article *model.Article) error

	// DeleteByID は指定IDの記事を削除する。
	DeleteByID(ctx context.Context, id string) error

	// IncrementViews は閲覧数を1加算する。
	IncrementViews(ctx context.Context, id string) error
}

// CategoryRepository は記事カテゴリの永続化インターフェース。
type CategoryRepository interface {
	// ListAll は全カテゴリをdisplay_order昇順で返す。
	ListAll(ctx context.Context) ([]*model.ArticleCategory, error)
}

// ContactRepository は問い合わせの永続化インターフェース。
type ContactRepository interface {
	// Create は問い合わせを作成する。公開フォームからの匿名送信で使用する。
	Create(ctx context.Context, submission *model.ContactSubmission) error

	// FindByID は指定IDの問い合わせを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ContactSubmission, error)

	// ListAll は全問い合わせをcreated_at降順で返す。
	ListAll(ctx context.Context) ([]*model.ContactSubmission, error)

	// UpdateStatus は対応状態を更新する。遷移の制約は設けない。
	UpdateStatus(ctx context.Context, id string, status model.ContactStatus, updatedAt time.Time) error
}
