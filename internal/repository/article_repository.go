package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

type ArticleRepo struct{ DB *gorm.DB }

func NewArticleRepo(db *gorm.DB) *ArticleRepo { return &ArticleRepo{DB: db} }

// Create inserts an article; created_at is stamped in UTC by gorm.
func (r *ArticleRepo) Create(ctx context.Context, a *model.Article) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *ArticleRepo) GetByID(ctx context.Context, id uint64) (*model.Article, error) {
	var a model.Article
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err, ErrArticleNotFound)
	}
	return &a, nil
}

func (r *ArticleRepo) List(ctx context.Context, p Page) ([]model.Article, error) {
	articles := []model.Article{}
	err := r.DB.WithContext(ctx).Scopes(p.scope).Find(&articles).Error
	return articles, err
}

// Update overwrites title and content and returns the stored article.
func (r *ArticleRepo) Update(ctx context.Context, id uint64, in model.ArticleInput) (*model.Article, error) {
	var out *model.Article
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Article
		if err := tx.First(&a, id).Error; err != nil {
			return translate(err, ErrArticleNotFound)
		}
		a.Title, a.Content = in.Title, in.Content
		if err := tx.Model(&a).Select("title", "content").Updates(&a).Error; err != nil {
			return err
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *ArticleRepo) Delete(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Delete(&model.Article{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}
