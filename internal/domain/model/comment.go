package model

import "time"

type Comment struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Body       string    `json:"body" gorm:"not null"`
	ActivityID string    `json:"activityId" gorm:"type:uuid;not null;index"`
	AuthorID   string    `json:"-" gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time `json:"createdAt"`

	Author User `json:"-" gorm:"foreignKey:AuthorID"`
}
