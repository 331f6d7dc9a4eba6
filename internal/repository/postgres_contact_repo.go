package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/youssef/agora/internal/model"
)

// contactColumns は問い合わせテーブルのSELECT列。
const contactColumns = `id, name, email, phone, subject, message, interest,
	organization, linkedin, status, created_at, updated_at`

// PostgresContactRepo はPostgreSQLを使用した問い合わせリポジトリ。
type PostgresContactRepo struct {
	db *sql.DB
}

// NewPostgresContactRepo はPostgresContactRepoを生成する。
func NewPostgresContactRepo(db *sql.DB) *PostgresContactRepo {
	return &PostgresContactRepo{db: db}
}

func scanContact(scanner interface{ Scan(...any) error }) (*model.ContactSubmission, error) {
	s := &model.ContactSubmission{}
	err := scanner.Scan(
		&s.ID, &s.Name, &s.Email, &s.Phone, &s.Subject, &s.Message,
		&s.Interest, &s.Organization, &s.LinkedIn, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create は問い合わせを作成する。
func (r *PostgresContactRepo) Create(ctx context.Context, s *model.ContactSubmission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_submissions (id, name, email, phone, subject, message, interest,
		 organization, linkedin, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.Name, s.Email, s.Phone, s.Subject, s.Message, s.Interest,
		s.Organization, s.LinkedIn, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact submission: %w", err)
	}
	return nil
}

// FindByID は指定IDの問い合わせを取得する。見つからない場合はnilを返す。
func (r *PostgresContactRepo) FindByID(ctx context.Context, id string) (*model.ContactSubmission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contact_submissions WHERE id = $1`, id)

	submission, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact submission by ID: %w", err)
	}
	return submission, nil
}

// ListAll は全問い合わせをcreated_at降順で返す。
func (r *PostgresContactRepo) ListAll(ctx context.Context) ([]*model.ContactSubmission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contact_submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*model.ContactSubmission
	for rows.Next() {
		submission, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact submission: %w", err)
		}
		submissions = append(submissions, submission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contact submissions: %w", err)
	}
	return submissions, nil
}

// UpdateStatus は対応状態を更新する。遷移の制約は設けない。
func (r *PostgresContactRepo) UpdateStatus(ctx context.Context, id string, status model.ContactStatus, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contact_submissions SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("contact submission not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ ContactRepository = (*PostgresContactRepo)(nil)
