package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	// 新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する（Photos込み）
	FindByID(ctx context.Context, userID string) (*model.User, error)
	// メールからユーザーを1件取得する（Photos込み）
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// usernameからユーザーを1件取得する（Photos込み）
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// ユーザー情報の更新（メール確認フラグ・プロフィールなど）
	Update(ctx context.Context, user *model.User) error
}
