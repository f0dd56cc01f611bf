package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type activityGormRepository struct {
	db *gorm.DB
}

func NewActivityGormRepository(db *gorm.DB) repo.ActivityRepository {
	return &activityGormRepository{db: db}
}

func (r *activityGormRepository) Create(ctx context.Context, activity *model.Activity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return err
	}
	return nil
}

// Attendees（User・Photos込み）を読み込んで1件取得
func (r *activityGormRepository) FindByID(ctx context.Context, activityID string) (*model.Activity, error) {
	var a model.Activity

	err := r.db.WithContext(ctx).
		Preload("Attendees.User.Photos").
		Where("id = ?", activityID).
		First(&a).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrActivityNotFound
		}
		return nil, err
	}

	return &a, nil
}

// 日付昇順で全件
func (r *activityGormRepository) List(ctx context.Context) ([]model.Activity, error) {
	var list []model.Activity

	err := r.db.WithContext(ctx).
		Preload("Attendees.User.Photos").
		Order("date ASC").
		Find(&list).Error

	if err != nil {
		return nil, err
	}

	return list, nil
}

func (r *activityGormRepository) Update(ctx context.Context, activity *model.Activity) error {
	if err := r.db.WithContext(ctx).
		Omit("Attendees").
		Save(activity).Error; err != nil {
		return err
	}
	return nil
}

func (r *activityGormRepository) Delete(ctx context.Context, activityID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", activityID).
		Delete(&model.Activity{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrActivityNotFound
	}

	return nil
}

func (r *activityGormRepository) AddAttendee(ctx context.Context, attendee *model.ActivityAttendee) error {
	if err := r.db.WithContext(ctx).Create(attendee).Error; err != nil {
		return err
	}
	return nil
}

func (r *activityGormRepository) RemoveAttendee(ctx context.Context, activityID string, userID string) error {
	if err := r.db.WithContext(ctx).
		Where("activity_id = ? AND user_id = ?", activityID, userID).
		Delete(&model.ActivityAttendee{}).Error; err != nil {
		return err
	}
	return nil
}
