package handler

import (
	"context"
	"io"

	"github.com/youssef/agora/internal/content"
	"github.com/youssef/agora/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signUpFn      func(ctx context.Context, email, password, displayName string) (*model.Account, error)
	signInFn      func(ctx context.Context, email, password string) (*model.Session, *model.Identity, error)
	signOutFn     func(ctx context.Context, sessionID string) error
	getIdentityFn func(ctx context.Context, sessionID string) (*model.Identity, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password, displayName string) (*model.Account, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, password, displayName)
	}
	return &model.Account{ID: "account-1", Email: email}, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*model.Session, *model.Identity, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return &model.Session{ID: "session-1", AccountID: "account-1"},
		&model.Identity{ID: "account-1", Email: email}, nil
}

func (m *mockAuthService) SignOut(ctx context.Context, sessionID string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetIdentity(ctx context.Context, sessionID string) (*model.Identity, error) {
	if m.getIdentityFn != nil {
		return m.getIdentityFn(ctx, sessionID)
	}
	return nil, nil
}

type mockProfileLoader struct {
	findByIDFn func(ctx context.Context, accountID string) (*model.Profile, error)
}

func (m *mockProfileLoader) FindByID(ctx context.Context, accountID string) (*model.Profile, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, accountID)
	}
	return nil, nil
}

type mockAdminContentService struct {
	listNewsFn       func(ctx context.Context, p *model.Profile) ([]*model.NewsItem, error)
	createNewsFn     func(ctx context.Context, p *model.Profile, input content.NewsInput) (*model.NewsItem, error)
	updateNewsFn     func(ctx context.Context, p *model.Profile, id string, input content.NewsInput) (*model.NewsItem, error)
	deleteNewsFn     func(ctx context.Context, p *model.Profile, id string) error
	listArticlesFn   func(ctx context.Context, p *model.Profile) ([]*model.Article, error)
	createArticleFn  func(ctx context.Context, p *model.Profile, input content.ArticleInput) (*model.Article, error)
	updateArticleFn  func(ctx context.Context, p *model.Profile, id string, input content.ArticleInput) (*model.Article, error)
	deleteArticleFn  func(ctx context.Context, p *model.Profile, id string) error
	listContactsFn   func(ctx context.Context, p *model.Profile) ([]*model.ContactSubmission, error)
	updateContactsFn func(ctx context.Context, p *model.Profile, id string, status model.ContactStatus) error
}

func (m *mockAdminContentService) ListNews(ctx context.Context, p *model.Profile) ([]*model.NewsItem, error) {
	if m.listNewsFn != nil {
		return m.listNewsFn(ctx, p)
	}
	return []*model.NewsItem{}, nil
}

func (m *mockAdminContentService) CreateNews(ctx context.Context, p *model.Profile, input content.NewsInput) (*model.NewsItem, error) {
	if m.createNewsFn != nil {
		return m.createNewsFn(ctx, p, input)
	}
	return &model.NewsItem{ID: "n1", Title: input.Title, Commission: input.Commission}, nil
}

func (m *mockAdminContentService) UpdateNews(ctx context.Context, p *model.Profile, id string, input content.NewsInput) (*model.NewsItem, error) {
	if m.updateNewsFn != nil {
		return m.updateNewsFn(ctx, p, id, input)
	}
	return &model.NewsItem{ID: id, Title: input.Title, Commission: input.Commission}, nil
}

func (m *mockAdminContentService) DeleteNews(ctx context.Context, p *model.Profile, id string) error {
	if m.deleteNewsFn != nil {
		return m.deleteNewsFn(ctx, p, id)
	}
	return nil
}

func (m *mockAdminContentService) ListArticles(ctx context.Context, p *model.Profile) ([]*model.Article, error) {
	if m.listArticlesFn != nil {
		return m.listArticlesFn(ctx, p)
	}
	return []*model.Article{}, nil
}

func (m *mockAdminContentService) CreateArticle(ctx context.Context, p *model.Profile, input content.ArticleInput) (*model.Article, error) {
	if m.createArticleFn != nil {
		return m.createArticleFn(ctx, p, input)
	}
	return &model.Article{ID: "a1", Title: input.Title, Slug: input.Slug}, nil
}

func (m *mockAdminContentService) UpdateArticle(ctx context.Context, p *model.Profile, id string, input content.ArticleInput) (*model.Article, error) {
	if m.updateArticleFn != nil {
		return m.updateArticleFn(ctx, p, id, input)
	}
	return &model.Article{ID: id, Title: input.Title, Slug: input.Slug}, nil
}

func (m *mockAdminContentService) DeleteArticle(ctx context.Context, p *model.Profile, id string) error {
	if m.deleteArticleFn != nil {
		return m.deleteArticleFn(ctx, p, id)
	}
	return nil
}

func (m *mockAdminContentService) ListContactSubmissions(ctx context.Context, p *model.Profile) ([]*model.ContactSubmission, error) {
	if m.listContactsFn != nil {
		return m.listContactsFn(ctx, p)
	}
	return []*model.ContactSubmission{}, nil
}

func (m *mockAdminContentService) UpdateContactStatus(ctx context.Context, p *model.Profile, id string, status model.ContactStatus) error {
	if m.updateContactsFn != nil {
		return m.updateContactsFn(ctx, p, id, status)
	}
	return nil
}

type mockPublicContentService struct {
	publishedNewsFn     func(ctx context.Context, commission model.Commission, limit int) ([]*model.NewsItem, error)
	getNewsItemFn       func(ctx context.Context, id string) (*model.NewsItem, error)
	publishedArticlesFn func(ctx context.Context, category string, featuredOnly bool, limit int) ([]*model.Article, error)
	getArticleFn        func(ctx context.Context, slug string) (*model.Article, error)
	listCategoriesFn    func(ctx context.Context) ([]*model.ArticleCategory, error)
	submitContactFn     func(ctx context.Context, input content.ContactInput) (*model.ContactSubmission, error)
}

func (m *mockPublicContentService) PublishedNews(ctx context.Context, commission model.Commission, limit int) ([]*model.NewsItem, error) {
	if m.publishedNewsFn != nil {
		return m.publishedNewsFn(ctx, commission, limit)
	}
	return []*model.NewsItem{}, nil
}

func (m *mockPublicContentService) GetPublishedNewsItem(ctx context.Context, id string) (*model.NewsItem, error) {
	if m.getNewsItemFn != nil {
		return m.getNewsItemFn(ctx, id)
	}
	return nil, model.NewNotFoundError("ニュース")
}

func (m *mockPublicContentService) PublishedArticles(ctx context.Context, category string, featuredOnly bool, limit int) ([]*model.Article, error) {
	if m.publishedArticlesFn != nil {
		return m.publishedArticlesFn(ctx, category, featuredOnly, limit)
	}
	return []*model.Article{}, nil
}

func (m *mockPublicContentService) GetPublishedArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	if m.getArticleFn != nil {
		return m.getArticleFn(ctx, slug)
	}
	return nil, model.NewNotFoundError("記事")
}

func (m *mockPublicContentService) ListCategories(ctx context.Context) ([]*model.ArticleCategory, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(ctx)
	}
	return []*model.ArticleCategory{}, nil
}

func (m *mockPublicContentService) SubmitContact(ctx context.Context, input content.ContactInput) (*model.ContactSubmission, error) {
	if m.submitContactFn != nil {
		return m.submitContactFn(ctx, input)
	}
	return &model.ContactSubmission{ID: "c1", Status: model.ContactStatusNew}, nil
}

type mockUploader struct {
	uploadFn func(ctx context.Context, bucket, filename, contentType string, size int64, body io.Reader) (string, error)
}

func (m *mockUploader) Upload(ctx context.Context, bucket, filename, contentType string, size int64, body io.Reader) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, bucket, filename, contentType, size, body)
	}
	return "http://minio:9000/" + bucket + "/generated.png", nil
}
