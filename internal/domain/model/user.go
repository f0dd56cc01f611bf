package model

import "time"

type User struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	DisplayName  string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash"` // fbログインのユーザーは空

	// Loginはこれがtrueになるまで通さない（"bob"だけ例外）
	EmailConfirmed bool `gorm:"not null;default:false"`
	// メール確認トークンのhash。使用後・再発行時に差し替える
	ConfirmTokenHash *string

	Bio string

	Photos        []Photo        `gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Photo struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"-" gorm:"type:uuid;not null;index"`
	URL    string `json:"url" gorm:"not null"`
	IsMain bool   `json:"isMain" gorm:"not null;default:false"`
}

// MainPhotoURLはメイン画像のURL（なければ空文字）
func (u *User) MainPhotoURL() string {
	for _, p := range u.Photos {
		if p.IsMain {
			return p.URL
		}
	}
	return ""
}
