package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/youssef/agora/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用した記事カテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

// ListAll は全カテゴリをdisplay_order昇順で返す。
func (r *PostgresCategoryRepo) ListAll(ctx context.Context) ([]*model.ArticleCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug, description, color, icon, display_order, created_at
		 FROM article_categories
		 ORDER BY display_order ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list article categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.ArticleCategory
	for rows.Next() {
		c := &model.ArticleCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color,
			&c.Icon, &c.DisplayOrder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article categories: %w", err)
	}
	return categories, nil
}

// compile-time interface check
var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
