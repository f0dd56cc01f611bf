package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type followingGormRepository struct {
	db *gorm.DB
}

func NewFollowingGormRepository(db *gorm.DB) repo.FollowingRepository {
	return &followingGormRepository{db: db}
}

func (r *followingGormRepository) Create(ctx context.Context, f *model.UserFollowing) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return err
	}
	return nil
}

func (r *followingGormRepository) Delete(ctx context.Context, observerID string, targetID string) error {
	if err := r.db.WithContext(ctx).
		Where("observer_id = ? AND target_id = ?", observerID, targetID).
		Delete(&model.UserFollowing{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *followingGormRepository) Exists(ctx context.Context, observerID string, targetID string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.UserFollowing{}).
		Where("observer_id = ? AND target_id = ?", observerID, targetID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *followingGormRepository) ListFollowers(ctx context.Context, targetID string) ([]model.User, error) {
	var users []model.User

	err := r.db.WithContext(ctx).
		Preload("Photos").
		Joins("JOIN user_followings uf ON uf.observer_id = users.id").
		Where("uf.target_id = ?", targetID).
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *followingGormRepository) ListFollowings(ctx context.Context, observerID string) ([]model.User, error) {
	var users []model.User

	err := r.db.WithContext(ctx).
		Preload("Photos").
		Joins("JOIN user_followings uf ON uf.target_id = users.id").
		Where("uf.observer_id = ?", observerID).
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *followingGormRepository) CountFollowers(ctx context.Context, targetID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.UserFollowing{}).
		Where("target_id = ?", targetID).
		Count(&count).Error

	return count, err
}

func (r *followingGormRepository) CountFollowings(ctx context.Context, observerID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.UserFollowing{}).
		Where("observer_id = ?", observerID).
		Count(&count).Error

	return count, err
}
