package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/youssef/agora/internal/model"
)

// articleColumns は記事テーブルのSELECT列。
const articleColumns = `id, title, slug, content, excerpt, cover_image_url, featured_image_url,
	author_id, author_name, author_bio, editor_name, category,
	meta_title, meta_description, meta_keywords, read_time_minutes,
	views_count, is_featured, status, published_at, created_at, updated_at`

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

func scanArticle(scanner interface{ Scan(...any) error }) (*model.Article, error) {
	a := &model.Article{}
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Content, &a.Excerpt, &a.CoverImageURL, &a.FeaturedImageURL,
		&a.AuthorID, &a.AuthorName, &a.AuthorBio, &a.EditorName, &a.Category,
		&a.MetaTitle, &a.MetaDescription, &a.MetaKeywords, &a.ReadTimeMinutes,
		&a.ViewsCount, &a.IsFeatured, &a.Status, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by ID: %w", err)
	}
	return article, nil
}

// FindBySlug はスラッグで記事を検索する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by slug: %w", err)
	}
	return article, nil
}

// ListAll は全記事をcreated_at降順で返す。
func (r *PostgresArticleRepo) ListAll(ctx context.Context) ([]*model.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// ListByAuthor は指定執筆者の記事をcreated_at降順で返す。
func (r *PostgresArticleRepo) ListByAuthor(ctx context.Context, authorID string) ([]*model.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE author_id = $1
		 ORDER BY created_at DESC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles by author: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// ListPublished は公開済み記事をpublished_at降順で返す。
func (r *PostgresArticleRepo) ListPublished(ctx context.Context, category string, featuredOnly bool, limit int) ([]*model.Article, error) {
	if limit <= 0 {
		limit = defaultPublishedLimit
	}

	query := `SELECT ` + articleColumns + ` FROM articles WHERE status = 'published'`
	args := []any{}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if featuredOnly {
		query += ` AND is_featured = true`
	}
	query += fmt.Sprintf(` ORDER BY published_at DESC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list published articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

func collectArticles(rows *sql.Rows) ([]*model.Article, error) {
	var articles []*model.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

// Create は記事を作成する。スラッグ重複時はErrDuplicateSlugを返す。
func (r *PostgresArticleRepo) Create(ctx context.Context, a *model.Article) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (id, title, slug, content, excerpt, cover_image_url, featured_image_url,
		 author_id, author_name, author_bio, editor_name, category,
		 meta_title, meta_description, meta_keywords, read_time_minutes,
		 views_count, is_featured, status, published_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		a.ID, a.Title, a.Slug, a.Content, a.Excerpt, a.CoverImageURL, a.FeaturedImageURL,
		a.AuthorID, a.AuthorName, a.AuthorBio, a.EditorName, a.Category,
		a.MetaTitle, a.MetaDescription, a.MetaKeywords, a.ReadTimeMinutes,
		a.ViewsCount, a.IsFeatured, a.Status, a.PublishedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

// Update は記事を上書き更新する。スラッグ重複時はErrDuplicateSlugを返す。
func (r *PostgresArticleRepo) Update(ctx context.Context, a *model.Article) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles SET
		 title = $2, slug = $3, content = $4, excerpt = $5, cover_image_url = $6,
		 featured_image_url = $7, author_name = $8, author_bio = $9, editor_name = $10,
		 category = $11, meta_title = $12, meta_description = $13, meta_keywords = $14,
		 read_time_minutes = $15, is_featured = $16, status = $17, published_at = $18,
		 updated_at = $19
		 WHERE id = $1`,
		a.ID, a.Title, a.Slug, a.Content, a.Excerpt, a.CoverImageURL,
		a.FeaturedImageURL, a.AuthorName, a.AuthorBio, a.EditorName,
		a.Category, a.MetaTitle, a.MetaDescription, a.MetaKeywords,
		a.ReadTimeMinutes, a.IsFeatured, a.Status, a.PublishedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update article: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの記事を削除する。
func (r *PostgresArticleRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM articles WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

// IncrementViews は閲覧数を1加算する。
func (r *PostgresArticleRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles SET views_count = views_count + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment article views: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
