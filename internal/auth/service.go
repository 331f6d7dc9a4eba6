// Package auth はメールアドレスとパスワードによる認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/youssef/agora/internal/model"
	"github.com/youssef/agora/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
	// AutoConfirmEmail がtrueの場合、サインアップ時にメール確認済みとして扱う。
	// 開発環境および確認メール基盤を持たないデプロイ向け。
	AutoConfirmEmail bool
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// SignUp は新規アカウントを作成する。
// メールアドレスは小文字に正規化して保存する。
// 同一メールアドレスのアカウントが既に存在する場合はEMAIL_TAKENエラーを返す。
// サインアップ直後にセッションは発行しない。メール確認（または自動確認）後に
// SignInでログインする。
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*model.Account, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, model.NewValidationFailedError("メールアドレスの形式が正しくありません")
	}
	if len(password) < 8 {
		return nil, model.NewValidationFailedError("パスワードは8文字以上で入力してください")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &model.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.config.AutoConfirmEmail {
		account.EmailConfirmedAt = &now
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if err == repository.ErrDuplicateEmail {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account created",
		slog.String("account_id", account.ID),
		slog.Bool("email_confirmed", account.EmailConfirmedAt != nil),
	)
	return account, nil
}

// SignIn はメールアドレスとパスワードを検証し、セッションを発行する。
// アカウントが存在しない場合とパスワード不一致の場合は、どちらも
// INVALID_CREDENTIALSを返す（存在有無を外部から区別できないようにする）。
// メール未確認のアカウントにはEMAIL_NOT_CONFIRMEDを返す。
// この判定はメール確認日時の有無による構造的な判定であり、
// エラーメッセージの文字列照合には依存しない。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, *model.Identity, error) {
	email = normalizeEmail(email)

	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		slog.Info("login failed", slog.String("account_id", account.ID))
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if account.EmailConfirmedAt == nil {
		return nil, nil, model.NewEmailNotConfirmedError()
	}

	session, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("login succeeded", slog.String("account_id", account.ID))

	identity := &model.Identity{
		ID:    account.ID,
		Email: account.Email,
	}
	return session, identity, nil
}

// SignOut はセッションを破棄する。
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetIdentity はセッションIDから現在ログイン中のアカウントのIdentityを返す。
// セッションが存在しない、または期限切れの場合はnilを返す（エラーではない）。
func (s *Service) GetIdentity(ctx context.Context, sessionID string) (*model.Identity, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	account, err := s.accountRepo.FindByID(ctx, session.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, nil
	}

	return &model.Identity{
		ID:    account.ID,
		Email: account.Email,
	}, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, accountID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		AccountID: accountID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// normalizeEmail はメールアドレスを比較可能な形に正規化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
