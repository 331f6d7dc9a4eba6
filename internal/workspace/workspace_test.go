package workspace

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/youssef/agora/internal/content"
	"github.com/youssef/agora/internal/model"
	"github.com/youssef/agora/internal/profile"
	"github.com/youssef/agora/internal/repository"
	"github.com/youssef/agora/internal/session"
)

// --- モック定義 ---

type mockAuthService struct {
	signInFn  func(ctx context.Context, email, password string) (*model.Session, *model.Identity, error)
	signOutFn func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*model.Session, *model.Identity, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return &model.Session{ID: "session-1"}, &model.Identity{ID: "account-1", Email: email}, nil
}

func (m *mockAuthService) SignOut(ctx context.Context, sessionID string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, sessionID)
	}
	return nil
}

type mockContentService struct {
	listNewsFn      func(ctx context.Context, p *model.Profile) ([]*model.NewsItem, error)
	listArticlesFn  func(ctx context.Context, p *model.Profile) ([]*model.Article, error)
	listContactsFn  func(ctx context.Context, p *model.Profile) ([]*model.ContactSubmission, error)
	createNewsFn    func(ctx context.Context, p *model.Profile, input content.NewsInput) (*model.NewsItem, error)
	updateNewsFn    func(ctx context.Context, p *model.Profile, id string, input content.NewsInput) (*model.NewsItem, error)
	createArticleFn func(ctx context.Context, p *model.Profile, input content.ArticleInput) (*model.Article, error)
	updateArticleFn func(ctx context.Context, p *model.Profile, id string, input content.ArticleInput) (*model.Article, error)
}

func (m *mockContentService) ListNews(ctx context.Context, p *model.Profile) ([]*model.NewsItem, error) {
	if m.listNewsFn != nil {
		return m.listNewsFn(ctx, p)
	}
	return []*model.NewsItem{}, nil
}

func (m *mockContentService) ListArticles(ctx context.Context, p *model.Profile) ([]*model.Article, error) {
	if m.listArticlesFn != nil {
		return m.listArticlesFn(ctx, p)
	}
	return []*model.Article{}, nil
}

func (m *mockContentService) ListContactSubmissions(ctx context.Context, p *model.Profile) ([]*model.ContactSubmission, error) {
	if m.listContactsFn != nil {
		return m.listContactsFn(ctx, p)
	}
	return []*model.ContactSubmission{}, nil
}

func (m *mockContentService) CreateNews(ctx context.Context, p *model.Profile, input content.NewsInput) (*model.NewsItem, error) {
	if m.createNewsFn != nil {
		return m.createNewsFn(ctx, p, input)
	}
	return &model.NewsItem{ID: "new-news"}, nil
}

func (m *mockContentService) UpdateNews(ctx context.Context, p *model.Profile, id string, input content.NewsInput) (*model.NewsItem, error) {
	if m.updateNewsFn != nil {
		return m.updateNewsFn(ctx, p, id, input)
	}
	return &model.NewsItem{ID: id}, nil
}

func (m *mockContentService) CreateArticle(ctx context.Context, p *model.Profile, input content.ArticleInput) (*model.Article, error) {
	if m.createArticleFn != nil {
		return m.createArticleFn(ctx, p, input)
	}
	return &model.Article{ID: "new-article"}, nil
}

func (m *mockContentService) UpdateArticle(ctx context.Context, p *model.Profile, id string, input content.ArticleInput) (*model.Article, error) {
	if m.updateArticleFn != nil {
		return m.updateArticleFn(ctx, p, id, input)
	}
	return &model.Article{ID: id}, nil
}

type mockProfileRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Profile, error)
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

var _ AuthService = (*mockAuthService)(nil)
var _ ContentService = (*mockContentService)(nil)
var _ repository.ProfileRepository = (*mockProfileRepo)(nil)

// newTestWorkspace はストア・リゾルバを配線済みのWorkspaceを生成する。
func newTestWorkspace(auth *mockAuthService, contentSvc *mockContentService, profileRepo *mockProfileRepo) (*Workspace, *profile.Resolver) {
	if auth == nil {
		auth = &mockAuthService{}
	}
	if contentSvc == nil {
		contentSvc = &mockContentService{}
	}
	if profileRepo == nil {
		profileRepo = &mockProfileRepo{}
	}
	store := session.NewStore()
	resolver := profile.NewResolver(profileRepo)
	store.Subscribe(resolver.OnIdentityChanged)
	return New(auth, contentSvc, store, resolver), resolver
}

// --- テスト ---

func TestWorkspace_InitialStateIsLoggedOut(t *testing.T) {
	w, _ := newTestWorkspace(nil, nil, nil)

	snap := w.Snapshot()
	if snap.Auth != AuthLoggedOut {
		t.Errorf("expected logged_out, got %s", snap.Auth)
	}
	if snap.ActiveTab != TabNews {
		t.Errorf("expected default tab news, got %s", snap.ActiveTab)
	}
}

func TestWorkspace_SignInWithProfile(t *testing.T) {
	profileRepo := &mockProfileRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Profile, error) {
			return &model.Profile{ID: id, Role: model.RoleSuperAdmin, Scope: model.ScopeFull}, nil
		},
	}
	w, resolver := newTestWorkspace(nil, nil, profileRepo)

	if err := w.SignIn(context.Background(), "admin@example.com", "password123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolver.Wait()

	snap := w.Snapshot()
	if snap.Auth != AuthLoggedInWithProfile {
		t.Errorf("expected logged_in_with_profile, got %s", snap.Auth)
	}
	if snap.Profile == nil || snap.Profile.Role != model.RoleSuperAdmin {
		t.Errorf("unexpected profile: %+v", snap.Profile)
	}
}

// プロフィール行がないアカウントはログイン済み・ロール未割当になる。
func TestWorkspace_SignInWithoutProfile(t *testing.T) {
	w, resolver := newTestWorkspace(nil, nil, nil)

	if err := w.SignIn(context.Background(), "new@example.com", "password123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolver.Wait()

	snap := w.Snapshot()
	if snap.Auth != AuthLoggedInNoProfile {
		t.Errorf("expected logged_in_no_profile, got %s", snap.Auth)
	}
	if snap.Profile != nil {
		t.Errorf("expected nil profile, got %+v", snap.Profile)
	}
}

func TestWorkspace_SignInFailureReturnsToLoggedOut(t *testing.T) {
	auth := &mockAuthService{
		signInFn: func(_ context.Context, _, _ string) (*model.Session, *model.Identity, error) {
			return nil, nil, model.NewInvalidCredentialsError()
		},
	}
	w, _ := newTestWorkspace(auth, nil, nil)

	err := w.SignIn(context.Background(), "user@example.com", "wrong")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
	}

	snap := w.Snapshot()
	if snap.Auth != AuthLoggedOut {
		t.Errorf("expected logged_out after failure, got %s", snap.Auth)
	}
}

func TestWorkspace_DoubleSignInRejected(t *testing.T) {
	w, resolver := newTestWorkspace(nil, nil, nil)

	if err := w.SignIn(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolver.Wait()

	if err := w.SignIn(context.Background(), "other@example.com", "password123"); err == nil {
		t.Error("expected error for second sign in")
	}
}

// ロール割当を待つユーザーの「再確認」フロー。
// 最初はプロフィールなし、割当後のRecheckProfileで昇格する。
func TestWorkspace_RecheckProfileAfterAssignment(t *testing.T) {
	assigned := false
	profileRepo := &mockProfileRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Profile, error) {
			if !assigned {
				return nil, nil
			}
			return &model.Profile{ID: id, Role: model.RoleEditor}, nil
		},
	}
	w, resolver := newTestWorkspace(nil, nil, profileRepo)

	if err := w.SignIn(context.Background(), "pending@example.com", "password123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolver.Wait()
	if got := w.Snapshot().Auth; got != AuthLoggedInNoProfile {
		t.Fatalf("expected no profile before assignment, got %s", got)
	}

	// 管理者がプロフィール行を作成した後の再確認
	assigned = true
	w.RecheckProfile()
	resolver.Wait()

	snap := w.Snapshot()
	if snap.Auth != AuthLoggedInWithProfile {
		t.Errorf("expected with_profile after recheck, got %s", snap.Auth)
	}
	if snap.Profile == nil || snap.Profile.Role != model.RoleEditor {
		t.Errorf("unexpected profile: %+v", snap.Profile)
	}
}

func TestWorkspace_SignOutResetsState(t *testing.T) {
	var signedOutSession string
	auth := &mockAuthService{
		signOutFn: func(_ context.Context, sessionID string) error {
			signedOutSession = sessionID
			return nil
		},
	}
	w, resolver := newTestWorkspace(auth, nil, nil)

	if err := w.SignIn(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolver.Wait()
	if err := w.OpenNewsEditor(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.SignOut(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolver.Wait()

	if signedOutSession != "session-1" {
		t.Errorf("expected session-1 to be revoked, got %q", signedOutSession)
	}
	snap := w.Snapshot()
	if snap.Auth != AuthLoggedOut {
		t.Errorf("expected logged_out, got %s", snap.Auth)
	}
	if snap.Editor != EditorNone {
		t.Error("expected editor to be discarded on sign out")
	}
	if snap.Identity != nil {
		t.Errorf("expected nil identity, got %+v", snap.Identity)
	}
}

// --- 編集フロー ---

func TestWorkspace_EditorMutualExclusion(t *testing.T) {
	w, _ := newTestWorkspace(nil, nil, nil)

	if err := w.OpenNewsEditor("n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 別の編集フローは開けない
	if err := w.OpenArticleEditor(""); !errors.Is(err, ErrEditorActive) {
		t.Errorf("expected ErrEditorActive, got %v", err)
	}
	if err := w.OpenNewsEditor("n2"); !errors.Is(err, ErrEditorActive) {
		t.Errorf("expected ErrEditorActive for second news editor, got %v", err)
	}

	// 取消後は開ける
	if err := w.CancelEditor(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.OpenArticleEditor(""); err != nil {
		t.Errorf("expected editor to open after cancel, got %v", err)
	}
}

func TestWorkspace_CancelWithoutEditor(t *testing.T) {
	w, _ := newTestWorkspace(nil, nil, nil)

	if err := w.CancelEditor(); !errors.Is(err, ErrNoEditor) {
		t.Errorf("expected ErrNoEditor, got %v", err)
	}
}

func TestWorkspace_SaveNewsCreatesWhenNoItemID(t *testing.T) {
	created := false
	contentSvc := &mockContentService{
		createNewsFn: func(_ context.Context, _ *model.Profile, _ content.NewsInput) (*model.NewsItem, error) {
			created = true
			return &model.NewsItem{ID: "n-new"}, nil
		},
	}
	w, _ := newTestWorkspace(nil, contentSvc, nil)

	if err := w.OpenNewsEditor(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item, err := w.SaveNews(context.Background(), content.NewsInput{Title: "t", Content: "c", Commission: model.CommissionIR})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created || item.ID != "n-new" {
		t.Error("expected create path")
	}

	// 成功後は編集フローが閉じる
	if snap := w.Snapshot(); snap.Editor != EditorNone {
		t.Errorf("expected editor closed after save, got %v", snap.Editor)
	}
}

func TestWorkspace_SaveNewsUpdatesWhenItemID(t *testing.T) {
	var updatedID string
	contentSvc := &mockContentService{
		updateNewsFn: func(_ context.Context, _ *model.Profile, id string, _ content.NewsInput) (*model.NewsItem, error) {
			updatedID = id
			return &model.NewsItem{ID: id}, nil
		},
	}
	w, _ := newTestWorkspace(nil, contentSvc, nil)

	if err := w.OpenNewsEditor("n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.SaveNews(context.Background(), content.NewsInput{Title: "t", Content: "c", Commission: model.CommissionIR}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updatedID != "n1" {
		t.Errorf("expected update of n1, got %q", updatedID)
	}
}

// 保存失敗時は編集フローが保持され、入力が失われない。
func TestWorkspace_SaveFailureRetainsEditor(t *testing.T) {
	contentSvc := &mockContentService{
		createArticleFn: func(_ context.Context, _ *model.Profile, _ content.ArticleInput) (*model.Article, error) {
			return nil, model.NewDuplicateSlugError("taken-slug")
		},
	}
	w, _ := newTestWorkspace(nil, contentSvc, nil)

	if err := w.OpenArticleEditor(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := w.SaveArticle(context.Background(), content.ArticleInput{Title: "t", Content: "c"})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateSlug {
		t.Fatalf("expected DUPLICATE_SLUG, got %v", err)
	}

	snap := w.Snapshot()
	if snap.Editor != EditorArticle {
		t.Error("expected editor retained after failure")
	}
	if snap.EditorPhase != PhaseEditing {
		t.Errorf("expected editing phase, got %v", snap.EditorPhase)
	}

	// リトライできる
	contentSvc.createArticleFn = func(_ context.Context, _ *model.Profile, _ content.ArticleInput) (*model.Article, error) {
		return &model.Article{ID: "a1"}, nil
	}
	if _, err := w.SaveArticle(context.Background(), content.ArticleInput{Title: "t", Slug: "fresh-slug", Content: "c"}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if snap := w.Snapshot(); snap.Editor != EditorNone {
		t.Error("expected editor closed after successful retry")
	}
}

func TestWorkspace_SaveWithoutEditor(t *testing.T) {
	w, _ := newTestWorkspace(nil, nil, nil)

	if _, err := w.SaveNews(context.Background(), content.NewsInput{}); !errors.Is(err, ErrNoEditor) {
		t.Errorf("expected ErrNoEditor, got %v", err)
	}
	if _, err := w.SaveArticle(context.Background(), content.ArticleInput{}); !errors.Is(err, ErrNoEditor) {
		t.Errorf("expected ErrNoEditor, got %v", err)
	}
}

// ニュース編集フローが開いている状態でSaveArticleは失敗する。
func TestWorkspace_SaveWrongEditorKind(t *testing.T) {
	w, _ := newTestWorkspace(nil, nil, nil)

	if err := w.OpenNewsEditor(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.SaveArticle(context.Background(), content.ArticleInput{}); !errors.Is(err, ErrNoEditor) {
		t.Errorf("expected ErrNoEditor, got %v", err)
	}
}

// --- タブと一覧 ---

func TestWorkspace_SetActiveTab(t *testing.T) {
	w, _ := newTestWorkspace(nil, nil, nil)

	w.SetActiveTab(TabContacts)
	if got := w.Snapshot().ActiveTab; got != TabContacts {
		t.Errorf("expected contacts tab, got %s", got)
	}

	// 不明なタブは無視される
	w.SetActiveTab("settings")
	if got := w.Snapshot().ActiveTab; got != TabContacts {
		t.Errorf("expected tab unchanged, got %s", got)
	}
}

// 一覧取得は部分的な到着を許容する。
// あるスロットの失敗は他のスロットの結果に影響しない。
func TestWorkspace_RefreshPartialArrival(t *testing.T) {
	profileRepo := &mockProfileRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Profile, error) {
			return &model.Profile{ID: id, Role: model.RoleSuperAdmin, Scope: model.ScopeFull}, nil
		},
	}
	contentSvc := &mockContentService{
		listNewsFn: func(_ context.Context, _ *model.Profile) ([]*model.NewsItem, error) {
			return nil, errors.New("news backend down")
		},
		listArticlesFn: func(_ context.Context, _ *model.Profile) ([]*model.Article, error) {
			return []*model.Article{{ID: "a1"}}, nil
		},
		listContactsFn: func(_ context.Context, _ *model.Profile) ([]*model.ContactSubmission, error) {
			return []*model.ContactSubmission{{ID: "c1"}}, nil
		},
	}
	w, resolver := newTestWorkspace(nil, contentSvc, profileRepo)

	if err := w.SignIn(context.Background(), "admin@example.com", "password123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolver.Wait()

	w.Refresh(context.Background())
	w.Wait()

	snap := w.Snapshot()
	if len(snap.Articles) != 1 {
		t.Errorf("expected articles despite news failure, got %v", snap.Articles)
	}
	if len(snap.Contacts) != 1 {
		t.Errorf("expected contacts despite news failure, got %v", snap.Contacts)
	}
	if snap.News != nil {
		t.Errorf("expected no news data after failure, got %v", snap.News)
	}
}

// 遅延した古い世代の一覧結果が新しい結果を上書きしないことを検証する。
func TestWorkspace_RefreshStaleResultDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var first atomic.Bool
	contentSvc := &mockContentService{
		listNewsFn: func(_ context.Context, _ *model.Profile) ([]*model.NewsItem, error) {
			if first.CompareAndSwap(false, true) {
				close(entered)
				<-release
				return []*model.NewsItem{{ID: "stale"}}, nil
			}
			return []*model.NewsItem{{ID: "fresh"}}, nil
		},
	}
	w, _ := newTestWorkspace(nil, contentSvc, nil)

	// 1回目のニュース取得が保留中に2回目のRefreshが完了する
	w.Refresh(context.Background())
	<-entered
	w.Refresh(context.Background())

	close(release)
	w.Wait()

	snap := w.Snapshot()
	if len(snap.News) != 1 || snap.News[0].ID != "fresh" {
		t.Errorf("stale refresh overwrote newer data: %v", snap.News)
	}
}
