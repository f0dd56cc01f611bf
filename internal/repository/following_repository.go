package repository

import (
	"app/internal/domain/model"
	"context"
)

type FollowingRepository interface {
	Create(ctx context.Context, f *model.UserFollowing) error
	Delete(ctx context.Context, observerID string, targetID string) error
	Exists(ctx context.Context, observerID string, targetID string) (bool, error)
	// targetをフォローしている人
	ListFollowers(ctx context.Context, targetID string) ([]model.User, error)
	// observerがフォローしている人
	ListFollowings(ctx context.Context, observerID string) ([]model.User, error)
	CountFollowers(ctx context.Context, targetID string) (int64, error)
	CountFollowings(ctx context.Context, observerID string) (int64, error)
}
