package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/youssef/agora/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByID はアカウントIDでプロフィールを取得する。
// 見つからない場合はnilを返す。ロール未割当の認証済みアカウントは
// 正常系であり、エラーとして扱わない。
func (r *PostgresProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	profile := &model.Profile{}
	var username, scope sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, role, commission_scope FROM profiles WHERE id = $1`,
		id,
	).Scan(&profile.ID, &username, &profile.Role, &scope)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by ID: %w", err)
	}

	profile.Username = username.String
	profile.Scope = model.Scope(scope.String)

	return profile, nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
