package model

import "time"

// RefreshTokenはユーザー毎の台帳に追記していく（削除せずrevokeで無効化）
type RefreshToken struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string     `json:"userId" gorm:"type:uuid;not null;index"`
	TokenHash string     `json:"-" gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"not null;index"`
	RevokedAt *time.Time `json:"revokedAt" gorm:"index"`
	// rotate時に後継トークンのIDを残す（盗難調査用）
	ReplacedByID *string   `json:"replacedById" gorm:"type:uuid"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Activeは「期限内 かつ 未revoke」。どちらか欠けたら使えない
func (t *RefreshToken) Active(now time.Time) bool {
	return now.Before(t.ExpiresAt) && t.RevokedAt == nil
}
