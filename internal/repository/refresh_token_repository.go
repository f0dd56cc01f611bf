package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// リフレッシュトークン台帳の追記・検索・無効化
// Appendは1行INSERT（同一ユーザーの同時ログインでも互いを潰さない）
type RefreshTokenRepository interface {
	Append(ctx context.Context, token *model.RefreshToken) error
	// user_id + token_hashで1件検索。activeかどうかは呼び出し側で判定する
	FindByUserAndHash(ctx context.Context, userID string, tokenHash string) (*model.RefreshToken, error)
	// revoked_atをセットして無効化（冪等）。replacedByIDはrotate時の後継ID（空なら記録しない）
	Revoke(ctx context.Context, tokenID string, revokedAt time.Time, replacedByID string) error
	// ユーザーの台帳を新しい順に返す
	ListByUser(ctx context.Context, userID string) ([]model.RefreshToken, error)
}
