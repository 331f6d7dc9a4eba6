// Package content はポリシーに基づくコンテンツ操作のファサードを提供する。
//
// 管理画面向けの操作はすべてプロフィールを受け取り、認可判定を
// internal/policyに委譲する。認可チェックをハンドラー側で行わず、
// 必ずこのファサードを経由させることで、どの呼び出し経路でも
// 同じ判定が適用される。
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/youssef/agora/internal/metrics"
	"github.com/youssef/agora/internal/model"
	"github.com/youssef/agora/internal/policy"
	"github.com/youssef/agora/internal/repository"
	"github.com/youssef/agora/internal/security"
)

// viewIncrementTimeout は閲覧数加算のバックグラウンド処理に許す時間。
const viewIncrementTimeout = 5 * time.Second

// NewsInput はニュースの作成・更新入力を表す。
type NewsInput struct {
	Commission      model.Commission
	Title           string
	Content         string
	ImageURL        string
	Category        string
	MetaTitle       string
	MetaDescription string
	ReadTimeMinutes int
	IsFeatured      bool
	Status          model.ContentStatus
}

// ArticleInput は記事の作成・更新入力を表す。
// Slugが空の場合はタイトルから導出する。
type ArticleInput struct {
	Title            string
	Slug             string
	Content          string
	Excerpt          string
	CoverImageURL    string
	FeaturedImageURL string
	AuthorBio        string
	EditorName       string
	Category         string
	MetaTitle        string
	MetaDescription  string
	MetaKeywords     string
	ReadTimeMinutes  int
	IsFeatured       bool
	Status           model.ContentStatus
}

// ContactInput は公開フォームからの問い合わせ入力を表す。
type ContactInput struct {
	Name         string
	Email        string
	Phone        string
	Subject      string
	Message      string
	Interest     string
	Organization string
	LinkedIn     string
}

// Service はコンテンツ操作のファサード。
type Service struct {
	newsRepo     repository.NewsRepository
	articleRepo  repository.ArticleRepository
	categoryRepo repository.CategoryRepository
	contactRepo  repository.ContactRepository
	sanitizer    security.ContentSanitizerService
	metrics      metrics.MetricsCollector

	// 閲覧数加算のバックグラウンド処理を追跡する。終了処理で待ち合わせる。
	viewWG sync.WaitGroup
}

// NewService はServiceを生成する。
func NewService(
	newsRepo repository.NewsRepository,
	articleRepo repository.ArticleRepository,
	categoryRepo repository.CategoryRepository,
	contactRepo repository.ContactRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		newsRepo:     newsRepo,
		articleRepo:  articleRepo,
		categoryRepo: categoryRepo,
		contactRepo:  contactRepo,
		sanitizer:    sanitizer,
		metrics:      collector,
	}
}

// Wait は進行中のバックグラウンド処理がすべて完了するまで待つ。
func (s *Service) Wait() {
	s.viewWG.Wait()
}

// --- ニュース（管理画面） ---

// ListNews はプロフィールが管理できる委員会のニュースを新しい順で返す。
// 管理可能な委員会が空の場合はクエリを発行せず空スライスを返す。
// これは拒否ではなく「見えるものがない」という正常系である。
func (s *Service) ListNews(ctx context.Context, p *model.Profile) ([]*model.NewsItem, error) {
	allowed := policy.ManageableCommissions(p)
	if allowed.Empty() {
		return []*model.NewsItem{}, nil
	}

	items, err := s.newsRepo.ListByCommissions(ctx, allowed.Slice())
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	return items, nil
}

// CreateNews はニュースを作成する。
// 作成先の委員会タグが管理可能な集合に含まれない場合はPERMISSION_DENIEDを返す。
func (s *Service) CreateNews(ctx context.Context, p *model.Profile, input NewsInput) (*model.NewsItem, error) {
	if err := validateNewsInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = model.ContentStatusDraft
	}
	if !model.ValidContentStatus(status) {
		return nil, model.NewInvalidStatusError(string(status))
	}

	if !policy.ManageableCommissions(p).Contains(input.Commission) {
		s.metrics.RecordPolicyDenial("news.create")
		return nil, model.NewPermissionDeniedError("この委員会のニュースを作成できません")
	}

	now := time.Now()
	item := &model.NewsItem{
		ID:              uuid.New().String(),
		Commission:      input.Commission,
		Title:           input.Title,
		Content:         s.sanitizer.Sanitize(input.Content),
		ImageURL:        input.ImageURL,
		AuthorID:        p.ID,
		AuthorName:      p.Username,
		Category:        input.Category,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		ReadTimeMinutes: input.ReadTimeMinutes,
		IsFeatured:      input.IsFeatured,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status == model.ContentStatusPublished {
		item.PublishedAt = &now
	}

	if err := s.newsRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}

	slog.Info("news created",
		slog.String("news_id", item.ID),
		slog.String("commission", string(item.Commission)),
		slog.String("author_id", item.AuthorID),
	)
	return item, nil
}

// UpdateNews はニュースを更新する。
// 認可は保存済みの行の委員会タグに対して判定する。リクエスト中の
// 申告値だけを見ると、権限外のアイテムを自分の委員会に付け替える
// 抜け道ができるため、保存済みの行と変更先の両方をチェックする。
// 初回公開日時は保持され、以後の編集や再公開で変更されない。
func (s *Service) UpdateNews(ctx context.Context, p *model.Profile, id string, input NewsInput) (*model.NewsItem, error) {
	stored, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find news: %w", err)
	}
	if stored == nil {
		return nil, model.NewNotFoundError(id)
	}

	if !policy.CanMutateNewsItem(p, stored) {
		s.metrics.RecordPolicyDenial("news.update")
		return nil, model.NewPermissionDeniedError("このニュースを変更できません")
	}

	if err := validateNewsInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = stored.Status
	}
	if !model.ValidContentStatus(status) {
		return nil, model.NewInvalidStatusError(string(status))
	}

	// 変更先の委員会も管理可能でなければならない
	if !policy.ManageableCommissions(p).Contains(input.Commission) {
		s.metrics.RecordPolicyDenial("news.update")
		return nil, model.NewPermissionDeniedError("この委員会へ変更できません")
	}

	now := time.Now()
	updated := &model.NewsItem{
		ID:              stored.ID,
		Commission:      input.Commission,
		Title:           input.Title,
		Content:         s.sanitizer.Sanitize(input.Content),
		ImageURL:        input.ImageURL,
		AuthorID:        stored.AuthorID,
		AuthorName:      stored.AuthorName,
		Category:        input.Category,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		ReadTimeMinutes: input.ReadTimeMinutes,
		ViewsCount:      stored.ViewsCount,
		IsFeatured:      input.IsFeatured,
		Status:          status,
		PublishedAt:     stored.PublishedAt,
		CreatedAt:       stored.CreatedAt,
		UpdatedAt:       now,
	}
	if updated.PublishedAt == nil && status == model.ContentStatusPublished {
		updated.PublishedAt = &now
	}

	if err := s.newsRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update news: %w", err)
	}

	slog.Info("news updated", slog.String("news_id", updated.ID))
	return updated, nil
}

// DeleteNews はニュースを削除する。認可は保存済みの行に対して判定する。
func (s *Service) DeleteNews(ctx context.Context, p *model.Profile, id string) error {
	stored, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find news: %w", err)
	}
	if stored == nil {
		return model.NewNotFoundError(id)
	}

	if !policy.CanMutateNewsItem(p, stored) {
		s.metrics.RecordPolicyDenial("news.delete")
		return model.NewPermissionDeniedError("このニュースを削除できません")
	}

	if err := s.newsRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}

	slog.Info("news deleted", slog.String("news_id", id))
	return nil
}

// --- 記事（管理画面） ---

// ListArticles はプロフィールが管理できる記事を新しい順で返す。
// fullアクセスは全記事、editorは自分が執筆した記事のみ。
// 管理権限がない場合はクエリを発行せず空スライスを返す。
// これは拒否ではなく「見えるものがない」という正常系である。
func (s *Service) ListArticles(ctx context.Context, p *model.Profile) ([]*model.Article, error) {
	if !policy.CanManageArticles(p) {
		return []*model.Article{}, nil
	}

	var (
		articles []*model.Article
		err      error
	)
	if policy.HasFullAccess(p) {
		articles, err = s.articleRepo.ListAll(ctx)
	} else {
		articles, err = s.articleRepo.ListByAuthor(ctx, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// CreateArticle は記事を作成する。
// スラッグが指定されていない場合はタイトルから導出する。
// スラッグが既存の記事と重複する場合はDUPLICATE_SLUGを返す。
func (s *Service) CreateArticle(ctx context.Context, p *model.Profile, input ArticleInput) (*model.Article, error) {
	if !policy.CanManageArticles(p) {
		s.metrics.RecordPolicyDenial("article.create")
		return nil, model.NewPermissionDeniedError("記事を作成する権限がありません")
	}

	if err := validateArticleInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = model.ContentStatusDraft
	}
	if !model.ValidContentStatus(status) {
		return nil, model.NewInvalidStatusError(string(status))
	}

	slug := input.Slug
	if slug == "" {
		slug = SanitizeSlug(input.Title)
	} else {
		slug = SanitizeSlug(slug)
	}
	if slug == "" {
		return nil, model.NewValidationFailedError("タイトルからスラッグを導出できません")
	}

	now := time.Now()
	article := &model.Article{
		ID:               uuid.New().String(),
		Title:            input.Title,
		Slug:             slug,
		Content:          s.sanitizer.Sanitize(input.Content),
		Excerpt:          input.Excerpt,
		CoverImageURL:    input.CoverImageURL,
		FeaturedImageURL: input.FeaturedImageURL,
		AuthorID:         p.ID,
		AuthorName:       p.Username,
		AuthorBio:        input.AuthorBio,
		EditorName:       input.EditorName,
		Category:         input.Category,
		MetaTitle:        input.MetaTitle,
		MetaDescription:  input.MetaDescription,
		MetaKeywords:     input.MetaKeywords,
		ReadTimeMinutes:  input.ReadTimeMinutes,
		IsFeatured:       input.IsFeatured,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if status == model.ContentStatusPublished {
		article.PublishedAt = &now
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, model.NewDuplicateSlugError(slug)
		}
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	slog.Info("article created",
		slog.String("article_id", article.ID),
		slog.String("slug", article.Slug),
		slog.String("author_id", article.AuthorID),
	)
	return article, nil
}

// UpdateArticle は記事を更新する。
// 認可は保存済みの行に対して判定する。執筆者の帰属は変更されない。
// 初回公開日時は保持され、以後の編集や再公開で変更されない。
func (s *Service) UpdateArticle(ctx context.Context, p *model.Profile, id string, input ArticleInput) (*model.Article, error) {
	stored, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	if stored == nil {
		return nil, model.NewNotFoundError(id)
	}

	if !policy.CanMutateArticle(p, stored) {
		s.metrics.RecordPolicyDenial("article.update")
		return nil, model.NewPermissionDeniedError("この記事を変更できません")
	}

	if err := validateArticleInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = stored.Status
	}
	if !model.ValidContentStatus(status) {
		return nil, model.NewInvalidStatusError(string(status))
	}

	slug := input.Slug
	if slug == "" {
		slug = SanitizeSlug(input.Title)
	} else {
		slug = SanitizeSlug(slug)
	}
	if slug == "" {
		return nil, model.NewValidationFailedError("タイトルからスラッグを導出できません")
	}

	now := time.Now()
	updated := &model.Article{
		ID:               stored.ID,
		Title:            input.Title,
		Slug:             slug,
		Content:          s.sanitizer.Sanitize(input.Content),
		Excerpt:          input.Excerpt,
		CoverImageURL:    input.CoverImageURL,
		FeaturedImageURL: input.FeaturedImageURL,
		AuthorID:         stored.AuthorID,
		AuthorName:       stored.AuthorName,
		AuthorBio:        input.AuthorBio,
		EditorName:       input.EditorName,
		Category:         input.Category,
		MetaTitle:        input.MetaTitle,
		MetaDescription:  input.MetaDescription,
		MetaKeywords:     input.MetaKeywords,
		ReadTimeMinutes:  input.ReadTimeMinutes,
		ViewsCount:       stored.ViewsCount,
		IsFeatured:       input.IsFeatured,
		Status:           status,
		PublishedAt:      stored.PublishedAt,
		CreatedAt:        stored.CreatedAt,
		UpdatedAt:        now,
	}
	if updated.PublishedAt == nil && status == model.ContentStatusPublished {
		updated.PublishedAt = &now
	}

	if err := s.articleRepo.Update(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, model.NewDuplicateSlugError(slug)
		}
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	slog.Info("article updated", slog.String("article_id", updated.ID))
	return updated, nil
}

// DeleteArticle は記事を削除する。認可は保存済みの行に対して判定する。
func (s *Service) DeleteArticle(ctx context.Context, p *model.Profile, id string) error {
	stored, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find article: %w", err)
	}
	if stored == nil {
		return model.NewNotFoundError(id)
	}

	if !policy.CanMutateArticle(p, stored) {
		s.metrics.RecordPolicyDenial("article.delete")
		return model.NewPermissionDeniedError("この記事を削除できません")
	}

	if err := s.articleRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	slog.Info("article deleted", slog.String("article_id", id))
	return nil
}

// --- 問い合わせ ---

// ListContactSubmissions は全問い合わせを新しい順で返す。
// fullアクセスのみ中身が見える。権限がない場合はクエリを発行せず
// 空スライスを返す（ListNewsと同じく拒否ではなく正常系）。
func (s *Service) ListContactSubmissions(ctx context.Context, p *model.Profile) ([]*model.ContactSubmission, error) {
	if !policy.CanViewContactSubmissions(p) {
		return []*model.ContactSubmission{}, nil
	}

	submissions, err := s.contactRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}
	return submissions, nil
}

// UpdateContactStatus は問い合わせの対応状態を更新する。
// 状態は定義済みの値でなければならないが、遷移の順序に制約はない。
// 同じ状態への更新も成功として扱う（冪等）。
func (s *Service) UpdateContactStatus(ctx context.Context, p *model.Profile, id string, status model.ContactStatus) error {
	if !policy.CanViewContactSubmissions(p) {
		s.metrics.RecordPolicyDenial("contact.update_status")
		return model.NewPermissionDeniedError("問い合わせを更新する権限がありません")
	}

	if !model.ValidContactStatus(status) {
		return model.NewInvalidStatusError(string(status))
	}

	stored, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find contact submission: %w", err)
	}
	if stored == nil {
		return model.NewNotFoundError(id)
	}

	if err := s.contactRepo.UpdateStatus(ctx, id, status, time.Now()); err != nil {
		return fmt.Errorf("failed to update contact status: %w", err)
	}

	slog.Info("contact status updated",
		slog.String("contact_id", id),
		slog.String("status", string(status)),
	)
	return nil
}

// SubmitContact は公開フォームからの問い合わせを受け付ける。
// 認証不要。対応状態はnewで開始する。
func (s *Service) SubmitContact(ctx context.Context, input ContactInput) (*model.ContactSubmission, error) {
	if input.Name == "" || input.Email == "" || input.Subject == "" || input.Message == "" {
		return nil, model.NewValidationFailedError("氏名・メールアドレス・件名・本文は必須です")
	}

	now := time.Now()
	submission := &model.ContactSubmission{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Subject:      input.Subject,
		Message:      input.Message,
		Interest:     input.Interest,
		Organization: input.Organization,
		LinkedIn:     input.LinkedIn,
		Status:       model.ContactStatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.contactRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create contact submission: %w", err)
	}

	s.metrics.RecordContactSubmission()
	slog.Info("contact submitted", slog.String("contact_id", submission.ID))
	return submission, nil
}

// --- 公開読み取り ---

// PublishedNews は公開済みニュースを公開日時の新しい順で返す。
// commissionが空の場合は全委員会が対象。
func (s *Service) PublishedNews(ctx context.Context, commission model.Commission, limit int) ([]*model.NewsItem, error) {
	if commission != "" && !model.ValidCommission(commission) {
		return nil, model.NewInvalidCommissionError(string(commission))
	}

	items, err := s.newsRepo.ListPublished(ctx, commission, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list published news: %w", err)
	}
	return items, nil
}

// GetPublishedNewsItem は公開済みニュース1件を返す。
// 下書きやアーカイブはNOT_FOUNDとして扱い、存在の有無を外部に漏らさない。
// 閲覧数の加算は非同期のベストエフォートで行い、失敗しても読み取りは成功する。
func (s *Service) GetPublishedNewsItem(ctx context.Context, id string) (*model.NewsItem, error) {
	item, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find news: %w", err)
	}
	if item == nil || item.Status != model.ContentStatusPublished {
		return nil, model.NewNotFoundError(id)
	}

	s.metrics.RecordDetailView("news")
	s.incrementViewsAsync("news", item.ID, s.newsRepo.IncrementViews)
	return item, nil
}

// PublishedArticles は公開済み記事を公開日時の新しい順で返す。
func (s *Service) PublishedArticles(ctx context.Context, category string, featuredOnly bool, limit int) ([]*model.Article, error) {
	articles, err := s.articleRepo.ListPublished(ctx, category, featuredOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list published articles: %w", err)
	}
	return articles, nil
}

// GetPublishedArticleBySlug はスラッグで公開済み記事1件を返す。
// 下書きやアーカイブはNOT_FOUNDとして扱う。
// 閲覧数の加算は非同期のベストエフォートで行う。
func (s *Service) GetPublishedArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	article, err := s.articleRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	if article == nil || article.Status != model.ContentStatusPublished {
		return nil, model.NewNotFoundError(slug)
	}

	s.metrics.RecordDetailView("article")
	s.incrementViewsAsync("article", article.ID, s.articleRepo.IncrementViews)
	return article, nil
}

// ListCategories は全記事カテゴリを表示順で返す。
func (s *Service) ListCategories(ctx context.Context) ([]*model.ArticleCategory, error) {
	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// incrementViewsAsync は閲覧数を非同期で加算する。
// リクエストのcontextから切り離して実行するため、レスポンス返却後も
// 処理が継続する。失敗はログとメトリクスに記録するのみで呼び出し元へ
// 伝播しない。
func (s *Service) incrementViewsAsync(kind, id string, increment func(ctx context.Context, id string) error) {
	s.viewWG.Add(1)
	go func() {
		defer s.viewWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), viewIncrementTimeout)
		defer cancel()

		if err := increment(ctx, id); err != nil {
			s.metrics.RecordViewIncrementFailure(kind)
			slog.Warn("view increment failed",
				slog.String("kind", kind),
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// validateNewsInput はニュース入力の必須項目と委員会タグを検証する。
func validateNewsInput(input NewsInput) error {
	if input.Title == "" || input.Content == "" {
		return model.NewValidationFailedError("タイトルと本文は必須です")
	}
	if !model.ValidCommission(input.Commission) {
		return model.NewInvalidCommissionError(string(input.Commission))
	}
	return nil
}

// validateArticleInput は記事入力の必須項目を検証する。
func validateArticleInput(input ArticleInput) error {
	if input.Title == "" || input.Content == "" {
		return model.NewValidationFailedError("タイトルと本文は必須です")
	}
	return nil
}
