package repository

import (
	"app/internal/domain/model"
	"context"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	// created_at昇順（古い→新しい）。realtimeの初期同期がこの順で流す
	ListByActivity(ctx context.Context, activityID string) ([]model.Comment, error)
}
