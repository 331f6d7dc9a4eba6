package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/youssef/agora/internal/model"
)

// defaultPublishedLimit は公開一覧の既定取得件数。
const defaultPublishedLimit = 50

// newsColumns はニューステーブルのSELECT列。
const newsColumns = `id, commission_id, title, content, image_url, author_id, author_name,
	category, meta_title, meta_description, read_time_minutes, views_count,
	is_featured, status, published_at, created_at, updated_at`

// PostgresNewsRepo はPostgreSQLを使用した委員会ニュースリポジトリ。
type PostgresNewsRepo struct {
	db *sql.DB
}

// NewPostgresNewsRepo はPostgresNewsRepoを生成する。
func NewPostgresNewsRepo(db *sql.DB) *PostgresNewsRepo {
	return &PostgresNewsRepo{db: db}
}

func scanNewsItem(scanner interface{ Scan(...any) error }) (*model.NewsItem, error) {
	item := &model.NewsItem{}
	err := scanner.Scan(
		&item.ID, &item.Commission, &item.Title, &item.Content, &item.ImageURL,
		&item.AuthorID, &item.AuthorName, &item.Category, &item.MetaTitle,
		&item.MetaDescription, &item.ReadTimeMinutes, &item.ViewsCount,
		&item.IsFeatured, &item.Status, &item.PublishedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID は指定IDのニュースを取得する。見つからない場合はnilを返す。
func (r *PostgresNewsRepo) FindByID(ctx context.Context, id string) (*model.NewsItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+newsColumns+` FROM news_items WHERE id = $1`, id)

	item, err := scanNewsItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find news item by ID: %w", err)
	}
	return item, nil
}

// ListByCommissions は指定の委員会タグ集合に属するニュースをcreated_at降順で返す。
func (r *PostgresNewsRepo) ListByCommissions(ctx context.Context, commissions []model.Commission) ([]*model.NewsItem, error) {
	tags := make([]string, len(commissions))
	for i, c := range commissions {
		tags[i] = string(c)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+newsColumns+` FROM news_items
		 WHERE commission_id = ANY($1)
		 ORDER BY created_at DESC`,
		pq.Array(tags),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list news items: %w", err)
	}
	defer rows.Close()

	return collectNewsItems(rows)
}

// ListPublished は公開済みニュースをpublished_at降順で返す。
func (r *PostgresNewsRepo) ListPublished(ctx context.Context, commission model.Commission, limit int) ([]*model.NewsItem, error) {
	if limit <= 0 {
		limit = defaultPublishedLimit
	}

	query := `SELECT ` + newsColumns + ` FROM news_items
		 WHERE status = 'published'`
	args := []any{}
	if commission != "" {
		query += ` AND commission_id = $1`
		args = append(args, string(commission))
	}
	query += fmt.Sprintf(` ORDER BY published_at DESC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list published news items: %w", err)
	}
	defer rows.Close()

	return collectNewsItems(rows)
}

func collectNewsItems(rows *sql.Rows) ([]*model.NewsItem, error) {
	var items []*model.NewsItem
	for rows.Next() {
		item, err := scanNewsItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news items: %w", err)
	}
	return items, nil
}

// Create はニュースを作成する。
func (r *PostgresNewsRepo) Create(ctx context.Context, item *model.NewsItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO news_items (id, commission_id, title, content, image_url, author_id, author_name,
		 category, meta_title, meta_description, read_time_minutes, views_count,
		 is_featured, status, published_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		item.ID, item.Commission, item.Title, item.Content, item.ImageURL,
		item.AuthorID, item.AuthorName, item.Category, item.MetaTitle,
		item.MetaDescription, item.ReadTimeMinutes, item.ViewsCount,
		item.IsFeatured, item.Status, item.PublishedAt, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert news item: %w", err)
	}
	return nil
}

// Update はニュースを上書き更新する。
func (r *PostgresNewsRepo) Update(ctx context.Context, item *model.NewsItem) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE news_items SET
		 commission_id = $2, title = $3, content = $4, image_url = $5, author_name = $6,
		 category = $7, meta_title = $8, meta_description = $9, read_time_minutes = $10,
		 is_featured = $11, status = $12, published_at = $13, updated_at = $14
		 WHERE id = $1`,
		item.ID, item.Commission, item.Title, item.Content, item.ImageURL, item.AuthorName,
		item.Category, item.MetaTitle, item.MetaDescription, item.ReadTimeMinutes,
		item.IsFeatured, item.Status, item.PublishedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update news item: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのニュースを削除する。
func (r *PostgresNewsRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM news_items WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete news item: %w", err)
	}
	return nil
}

// IncrementViews は閲覧数を1加算する。
func (r *PostgresNewsRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE news_items SET views_count = views_count + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment news views: %w", err)
	}
	return nil
}

// compile-time interface check
var _ NewsRepository = (*PostgresNewsRepo)(nil)
