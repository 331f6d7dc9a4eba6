// Package workspace は管理画面のセッション横断状態を管理する。
//
// ログイン状態、アクティブタブ、編集フロー、一覧データを1つの
// 状態機械として保持する。編集フローは同時に1つしか開けない。
// 一覧の更新はスロットごとの世代番号で管理し、遅延した古い結果が
// 新しい結果を上書きしない（後勝ち）。
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/youssef/agora/internal/content"
	"github.com/youssef/agora/internal/model"
	"github.com/youssef/agora/internal/profile"
	"github.com/youssef/agora/internal/session"
)

// ErrEditorActive は編集フローが既に開いている状態で別の編集を
// 開こうとした場合に返される。
var ErrEditorActive = errors.New("an editor is already open")

// ErrNoEditor は編集フローが開いていない状態で保存・取消を
// 呼び出した場合に返される。
var ErrNoEditor = errors.New("no editor is open")

// AuthState は認証フローの状態を表す。
type AuthState int

const (
	// AuthLoggedOut は未ログイン状態。
	AuthLoggedOut AuthState = iota
	// AuthAuthenticating は認証要求の応答待ち。
	AuthAuthenticating
	// AuthLoggedInNoProfile はログイン済みだがプロフィール未割当
	// （または解決中・解決失敗）の状態。
	AuthLoggedInNoProfile
	// AuthLoggedInWithProfile はログイン済みでプロフィールが解決された状態。
	AuthLoggedInWithProfile
)

// String はAuthStateの文字列表現を返す。
func (s AuthState) String() string {
	switch s {
	case AuthLoggedOut:
		return "logged_out"
	case AuthAuthenticating:
		return "authenticating"
	case AuthLoggedInNoProfile:
		return "logged_in_no_profile"
	case AuthLoggedInWithProfile:
		return "logged_in_with_profile"
	default:
		return "unknown"
	}
}

// Tab は管理画面のアクティブタブを表す。
type Tab string

const (
	TabNews     Tab = "news"
	TabArticles Tab = "articles"
	TabContacts Tab = "contacts"
)

// EditorKind は開いている編集フローの種別を表す。
type EditorKind int

const (
	// EditorNone は編集フローが開いていない状態。
	EditorNone EditorKind = iota
	// EditorNews はニュース編集フロー。
	EditorNews
	// EditorArticle は記事編集フロー。
	EditorArticle
)

// EditorPhase は編集フロー内の段階を表す。
type EditorPhase int

const (
	// PhaseBrowsing は一覧閲覧中（編集フローなし）。
	PhaseBrowsing EditorPhase = iota
	// PhaseEditing は編集中。
	PhaseEditing
	// PhaseSaving は保存要求の応答待ち。
	PhaseSaving
)

// AuthService は認証操作のインターフェース。
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*model.Session, *model.Identity, error)
	SignOut(ctx context.Context, sessionID string) error
}

// ContentService はコンテンツ操作のインターフェース。
type ContentService interface {
	ListNews(ctx context.Context, p *model.Profile) ([]*model.NewsItem, error)
	ListArticles(ctx context.Context, p *model.Profile) ([]*model.Article, error)
	ListContactSubmissions(ctx context.Context, p *model.Profile) ([]*model.ContactSubmission, error)
	CreateNews(ctx context.Context, p *model.Profile, input content.NewsInput) (*model.NewsItem, error)
	UpdateNews(ctx context.Context, p *model.Profile, id string, input content.NewsInput) (*model.NewsItem, error)
	CreateArticle(ctx context.Context, p *model.Profile, input content.ArticleInput) (*model.Article, error)
	UpdateArticle(ctx context.Context, p *model.Profile, id string, input content.ArticleInput) (*model.Article, error)
}

// editorState は開いている編集フローの状態。
type editorState struct {
	kind   EditorKind
	itemID string // 空なら新規作成
	phase  EditorPhase
}

// listSlot は一覧データのスロット。世代番号で古い結果を破棄する。
type listSlot[T any] struct {
	generation uint64
	items      []T
	err        error
}

// Snapshot はワークスペース状態のある時点のコピー。
type Snapshot struct {
	Auth        AuthState
	Identity    *model.Identity
	Profile     *model.Profile
	ActiveTab   Tab
	Editor      EditorKind
	EditorPhase EditorPhase
	EditingID   string
	News        []*model.NewsItem
	Articles    []*model.Article
	Contacts    []*model.ContactSubmission
}

// Workspace は管理画面の状態機械。
type Workspace struct {
	auth     AuthService
	content  ContentService
	sessions *session.Store
	resolver *profile.Resolver

	mu             sync.Mutex
	authenticating bool
	sessionID      string
	activeTab      Tab
	editor         editorState
	news           listSlot[*model.NewsItem]
	articles       listSlot[*model.Article]
	contacts       listSlot[*model.ContactSubmission]
	inflight       sync.WaitGroup
}

// New はWorkspaceを生成する。
// セッションストアとリゾルバは呼び出し側で配線済み
// （store.Subscribe(resolver.OnIdentityChanged)）であること。
func New(auth AuthService, contentSvc ContentService, sessions *session.Store, resolver *profile.Resolver) *Workspace {
	return &Workspace{
		auth:      auth,
		content:   contentSvc,
		sessions:  sessions,
		resolver:  resolver,
		activeTab: TabNews,
	}
}

// SignIn は認証を行い、成功時にセッションストアへIdentityを設定する。
// 失敗時はLoggedOutへ戻り、エラーをそのまま返す。
func (w *Workspace) SignIn(ctx context.Context, email, password string) error {
	w.mu.Lock()
	if w.sessionID != "" || w.authenticating {
		w.mu.Unlock()
		return fmt.Errorf("already signed in or authenticating")
	}
	w.authenticating = true
	w.mu.Unlock()

	sess, identity, err := w.auth.SignIn(ctx, email, password)

	w.mu.Lock()
	w.authenticating = false
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.sessionID = sess.ID
	w.mu.Unlock()

	// リゾルバはストア経由で通知を受けてプロフィール解決を開始する
	w.sessions.Set(identity)
	return nil
}

// SignOut はセッションを破棄し、ワークスペースを初期状態へ戻す。
// 編集中の内容と一覧データもすべて破棄される。
func (w *Workspace) SignOut(ctx context.Context) error {
	w.mu.Lock()
	sessionID := w.sessionID
	w.sessionID = ""
	w.editor = editorState{}
	w.news = listSlot[*model.NewsItem]{generation: w.news.generation + 1}
	w.articles = listSlot[*model.Article]{generation: w.articles.generation + 1}
	w.contacts = listSlot[*model.ContactSubmission]{generation: w.contacts.generation + 1}
	w.activeTab = TabNews
	w.mu.Unlock()

	w.sessions.Set(nil)

	if sessionID == "" {
		return nil
	}
	if err := w.auth.SignOut(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// RecheckProfile はプロフィール解決をやり直す。
// ロール割当を待っているユーザー向けの「再確認」操作。
func (w *Workspace) RecheckProfile() {
	w.resolver.Recheck()
}

// SetActiveTab はアクティブタブを切り替える。編集フローには影響しない。
func (w *Workspace) SetActiveTab(tab Tab) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch tab {
	case TabNews, TabArticles, TabContacts:
		w.activeTab = tab
	}
}

// OpenNewsEditor はニュース編集フローを開く。itemIDが空なら新規作成。
// 別の編集フローが開いている場合はErrEditorActiveを返す。
func (w *Workspace) OpenNewsEditor(itemID string) error {
	return w.openEditor(EditorNews, itemID)
}

// OpenArticleEditor は記事編集フローを開く。itemIDが空なら新規作成。
// 別の編集フローが開いている場合はErrEditorActiveを返す。
func (w *Workspace) OpenArticleEditor(itemID string) error {
	return w.openEditor(EditorArticle, itemID)
}

func (w *Workspace) openEditor(kind EditorKind, itemID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editor.kind != EditorNone {
		return ErrEditorActive
	}
	w.editor = editorState{kind: kind, itemID: itemID, phase: PhaseEditing}
	return nil
}

// CancelEditor は編集フローを破棄して一覧へ戻る。保存中は取り消せない。
func (w *Workspace) CancelEditor() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editor.kind == EditorNone {
		return ErrNoEditor
	}
	if w.editor.phase == PhaseSaving {
		return fmt.Errorf("cannot cancel while saving")
	}
	w.editor = editorState{}
	return nil
}

// SaveNews は開いているニュース編集フローの内容を保存する。
// 成功時は編集フローを閉じて一覧へ戻る。失敗時は編集フローを
// 保持したままエラーを返し、入力は失われない。
func (w *Workspace) SaveNews(ctx context.Context, input content.NewsInput) (*model.NewsItem, error) {
	itemID, err := w.beginSave(EditorNews)
	if err != nil {
		return nil, err
	}

	p := w.resolver.State().Profile

	var item *model.NewsItem
	if itemID == "" {
		item, err = w.content.CreateNews(ctx, p, input)
	} else {
		item, err = w.content.UpdateNews(ctx, p, itemID, input)
	}

	w.finishSave(err == nil)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SaveArticle は開いている記事編集フローの内容を保存する。
// 成功時は編集フローを閉じて一覧へ戻る。失敗時は編集フローを保持する。
func (w *Workspace) SaveArticle(ctx context.Context, input content.ArticleInput) (*model.Article, error) {
	itemID, err := w.beginSave(EditorArticle)
	if err != nil {
		return nil, err
	}

	p := w.resolver.State().Profile

	var article *model.Article
	if itemID == "" {
		article, err = w.content.CreateArticle(ctx, p, input)
	} else {
		article, err = w.content.UpdateArticle(ctx, p, itemID, input)
	}

	w.finishSave(err == nil)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// beginSave は編集フローをSavingへ進める。
func (w *Workspace) beginSave(kind EditorKind) (itemID string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editor.kind != kind {
		return "", ErrNoEditor
	}
	if w.editor.phase == PhaseSaving {
		return "", fmt.Errorf("save already in progress")
	}
	w.editor.phase = PhaseSaving
	return w.editor.itemID, nil
}

// finishSave は保存結果に応じて編集フローを閉じるか編集中へ戻す。
func (w *Workspace) finishSave(ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ok {
		w.editor = editorState{}
	} else {
		w.editor.phase = PhaseEditing
	}
}

// Refresh は一覧データを並行して再取得する。
// スロットごとに独立した世代番号を持ち、部分的な到着を許容する。
// あるスロットの取得失敗は他のスロットへ影響しない。
// 権限のないスロット（editorのニュース等）はサービス層が
// 空一覧を返すため、ここでは権限を判定しない。
func (w *Workspace) Refresh(ctx context.Context) {
	p := w.resolver.State().Profile

	w.mu.Lock()
	w.news.generation++
	newsGen := w.news.generation
	w.articles.generation++
	articlesGen := w.articles.generation
	w.contacts.generation++
	contactsGen := w.contacts.generation
	w.mu.Unlock()

	w.inflight.Add(3)

	go func() {
		defer w.inflight.Done()
		items, err := w.content.ListNews(ctx, p)
		w.applyNews(newsGen, items, err)
	}()

	go func() {
		defer w.inflight.Done()
		// 権限がない場合はファサードが空一覧を返す
		articles, err := w.content.ListArticles(ctx, p)
		w.applyArticles(articlesGen, articles, err)
	}()

	go func() {
		defer w.inflight.Done()
		contacts, err := w.content.ListContactSubmissions(ctx, p)
		w.applyContacts(contactsGen, contacts, err)
	}()
}

// Wait は進行中の一覧取得がすべて完了するまで待つ。
func (w *Workspace) Wait() {
	w.inflight.Wait()
}

func (w *Workspace) applyNews(gen uint64, items []*model.NewsItem, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.news.generation {
		return
	}
	if err != nil {
		slog.Warn("news list refresh failed", slog.String("error", err.Error()))
		w.news.err = err
		return
	}
	w.news.items = items
	w.news.err = nil
}

func (w *Workspace) applyArticles(gen uint64, items []*model.Article, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.articles.generation {
		return
	}
	if err != nil {
		slog.Warn("article list refresh failed", slog.String("error", err.Error()))
		w.articles.err = err
		return
	}
	w.articles.items = items
	w.articles.err = nil
}

func (w *Workspace) applyContacts(gen uint64, items []*model.ContactSubmission, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.contacts.generation {
		return
	}
	if err != nil {
		slog.Warn("contact list refresh failed", slog.String("error", err.Error()))
		w.contacts.err = err
		return
	}
	w.contacts.items = items
	w.contacts.err = nil
}

// Snapshot は現在のワークスペース状態のコピーを返す。
func (w *Workspace) Snapshot() Snapshot {
	identity := w.sessions.Current()
	resolverSnap := w.resolver.State()

	w.mu.Lock()
	defer w.mu.Unlock()

	auth := AuthLoggedOut
	switch {
	case w.authenticating:
		auth = AuthAuthenticating
	case identity != nil && resolverSnap.State == profile.StateResolved:
		auth = AuthLoggedInWithProfile
	case identity != nil:
		auth = AuthLoggedInNoProfile
	}

	return Snapshot{
		Auth:        auth,
		Identity:    identity,
		Profile:     resolverSnap.Profile,
		ActiveTab:   w.activeTab,
		Editor:      w.editor.kind,
		EditorPhase: w.editor.phase,
		EditingID:   w.editor.itemID,
		News:        w.news.items,
		Articles:    w.articles.items,
		Contacts:    w.contacts.items,
	}
}
