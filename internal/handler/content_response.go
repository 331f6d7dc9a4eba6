package handler

import (
	"time"

	"github.com/youssef/agora/internal/model"
)

// newsResponse はニュースのAPIレスポンス。
type newsResponse struct {
	ID              string     `json:"id"`
	Commission      string     `json:"commission"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	ImageURL        string     `json:"image_url,omitempty"`
	AuthorID        string     `json:"author_id,omitempty"`
	AuthorName      string     `json:"author_name,omitempty"`
	Category        string     `json:"category,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	ReadTimeMinutes int        `json:"read_time_minutes,omitempty"`
	ViewsCount      int        `json:"views_count"`
	IsFeatured      bool       `json:"is_featured"`
	Status          string     `json:"status"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// articleResponse は記事のAPIレスポンス。
type articleResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Content          string     `json:"content"`
	Excerpt          string     `json:"excerpt,omitempty"`
	CoverImageURL    string     `json:"cover_image_url,omitempty"`
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	AuthorID         string     `json:"author_id,omitempty"`
	AuthorName       string     `json:"author_name,omitempty"`
	AuthorBio        string     `json:"author_bio,omitempty"`
	EditorName       string     `json:"editor_name,omitempty"`
	Category         string     `json:"category,omitempty"`
	MetaTitle        string     `json:"meta_title,omitempty"`
	MetaDescription  string     `json:"meta_description,omitempty"`
	MetaKeywords     string     `json:"meta_keywords,omitempty"`
	ReadTimeMinutes  int        `json:"read_time_minutes,omitempty"`
	ViewsCount       int        `json:"views_count"`
	IsFeatured       bool       `json:"is_featured"`
	Status           string     `json:"status"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// categoryResponse は記事カテゴリのAPIレスポンス。
type categoryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	Color        string `json:"color,omitempty"`
	Icon         string `json:"icon,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

// contactResponse は問い合わせのAPIレスポンス。
type contactResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Subject      string    `json:"subject"`
	Message      string    `json:"message"`
	Interest     string    `json:"interest,omitempty"`
	Organization string    `json:"organization,omitempty"`
	LinkedIn     string    `json:"linkedin,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toNewsResponse(item *model.NewsItem) newsResponse {
	return newsResponse{
		ID:              item.ID,
		Commission:      string(item.Commission),
		Title:           item.Title,
		Content:         item.Content,
		ImageURL:        item.ImageURL,
		AuthorID:        item.AuthorID,
		AuthorName:      item.AuthorName,
		Category:        item.Category,
		MetaTitle:       item.MetaTitle,
		MetaDescription: item.MetaDescription,
		ReadTimeMinutes: item.ReadTimeMinutes,
		ViewsCount:      item.ViewsCount,
		IsFeatured:      item.IsFeatured,
		Status:          string(item.Status),
		PublishedAt:     item.PublishedAt,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func toNewsResponseList(items []*model.NewsItem) []newsResponse {
	out := make([]newsResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toNewsResponse(item))
	}
	return out
}

func toArticleResponse(article *model.Article) articleResponse {
	return articleResponse{
		ID:               article.ID,
		Title:            article.Title,
		Slug:             article.Slug,
		Content:          article.Content,
		Excerpt:          article.Excerpt,
		CoverImageURL:    article.CoverImageURL,
		FeaturedImageURL: article.FeaturedImageURL,
		AuthorID:         article.AuthorID,
		AuthorName:       article.AuthorName,
		AuthorBio:        article.AuthorBio,
		EditorName:       article.EditorName,
		Category:         article.Category,
		MetaTitle:        article.MetaTitle,
		MetaDescription:  article.MetaDescription,
		MetaKeywords:     article.MetaKeywords,
		ReadTimeMinutes:  article.ReadTimeMinutes,
		ViewsCount:       article.ViewsCount,
		IsFeatured:       article.IsFeatured,
		Status:           string(article.Status),
		PublishedAt:      article.PublishedAt,
		CreatedAt:        article.CreatedAt,
		UpdatedAt:        article.UpdatedAt,
	}
}

func toArticleResponseList(articles []*model.Article) []articleResponse {
	out := make([]articleResponse, 0, len(articles))
	for _, article := range articles {
		out = append(out, toArticleResponse(article))
	}
	return out
}

func toCategoryResponseList(categories []*model.ArticleCategory) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{
			ID:           c.ID,
			Name:         c.Name,
			Slug:         c.Slug,
			Description:  c.Description,
			Color:        c.Color,
			Icon:         c.Icon,
			DisplayOrder: c.DisplayOrder,
		})
	}
	return out
}

func toContactResponse(sub *model.ContactSubmission) contactResponse {
	return contactResponse{
		ID:           sub.ID,
		Name:         sub.Name,
		Email:        sub.Email,
		Phone:        sub.Phone,
		Subject:      sub.Subject,
		Message:      sub.Message,
		Interest:     sub.Interest,
		Organization: sub.Organization,
		LinkedIn:     sub.LinkedIn,
		Status:       string(sub.Status),
		CreatedAt:    sub.CreatedAt,
		UpdatedAt:    sub.UpdatedAt,
	}
}

func toContactResponseList(subs []*model.ContactSubmission) []contactResponse {
	out := make([]contactResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toContactResponse(sub))
	}
	return out
}
