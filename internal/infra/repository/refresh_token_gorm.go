package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type refreshTokenGormRepository struct {
	db *gorm.DB // DB接続（GORM）
}

// GORM実装
func NewRefreshTokenRepository(db *gorm.DB) repo.RefreshTokenRepository {
	return &refreshTokenGormRepository{db: db}
}

// 台帳に1件追記する。
// 1行INSERTなので同一ユーザーへの同時Appendでも互いを上書きしない
// （台帳をloadしてappendしてsaveする形は禁止）
func (r *refreshTokenGormRepository) Append(ctx context.Context, token *model.RefreshToken) error {
	// タイムアウトやキャンセルをDB処理に伝える
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return err
	}
	return nil
}

// user_id + token_hashで1件検索します。
// activeかどうかの判定は呼び出し側（expired/revokedは盗難シグナルとして別扱いしたい）
func (r *refreshTokenGormRepository) FindByUserAndHash(ctx context.Context, userID string, tokenHash string) (*model.RefreshToken, error) {
	var token model.RefreshToken

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token_hash = ?", userID, tokenHash).
		First(&token).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrRefreshTokenNotFound
		}
		return nil, err
	}

	return &token, nil
}

// revoked_atをセットして無効化。
// WHERE revoked_at IS NULLで既にrevoke済みなら何もしない（冪等）
func (r *refreshTokenGormRepository) Revoke(ctx context.Context, tokenID string, revokedAt time.Time, replacedByID string) error {
	updates := map[string]interface{}{"revoked_at": &revokedAt}
	if replacedByID != "" {
		updates["replaced_by_id"] = replacedByID
	}

	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", tokenID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	// 0件更新は「既にrevoke済み」なので成功扱い
	return nil
}

// ユーザーの台帳を新しい順に返す
func (r *refreshTokenGormRepository) ListByUser(ctx context.Context, userID string) ([]model.RefreshToken, error) {
	var tokens []model.RefreshToken

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tokens).Error

	if err != nil {
		return nil, err
	}

	return tokens, nil
}
