package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type commentGormRepository struct {
	db *gorm.DB
}

func NewCommentGormRepository(db *gorm.DB) repo.CommentRepository {
	return &commentGormRepository{db: db}
}

func (r *commentGormRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return nil
}

// created_at昇順（古い→新しい）で全件
func (r *commentGormRepository) ListByActivity(ctx context.Context, activityID string) ([]model.Comment, error) {
	var comments []model.Comment

	err := r.db.WithContext(ctx).
		Preload("Author.Photos").
		Where("activity_id = ?", activityID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error

	if err != nil {
		return nil, err
	}

	return comments, nil
}
