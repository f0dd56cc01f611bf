package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrActivityNotFound = errors.New("activity not found")

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	// Attendees（User込み）を読み込んで1件取得
	FindByID(ctx context.Context, activityID string) (*model.Activity, error)
	// 日付昇順で全件（ページングは扱わない）
	List(ctx context.Context) ([]model.Activity, error)
	Update(ctx context.Context, activity *model.Activity) error
	Delete(ctx context.Context, activityID string) error

	// 参加レコードの追加・削除
	AddAttendee(ctx context.Context, attendee *model.ActivityAttendee) error
	RemoveAttendee(ctx context.Context, activityID string, userID string) error
}
