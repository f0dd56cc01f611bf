package model

import "time"

type Activity struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Date        time.Time `json:"date" gorm:"not null;index"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
	IsCancelled bool      `json:"isCancelled" gorm:"not null;default:false"`

	Attendees []ActivityAttendee `json:"attendees" gorm:"foreignKey:ActivityID"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ActivityAttendeeは参加の中間テーブル（主催者はIsHost=true）
type ActivityAttendee struct {
	ActivityID string `json:"-" gorm:"type:uuid;primaryKey"`
	UserID     string `json:"-" gorm:"type:uuid;primaryKey"`
	IsHost     bool   `json:"isHost" gorm:"not null;default:false"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// HostIDは主催者のユーザーID（見つからなければ空文字）
func (a *Activity) HostID() string {
	for _, at := range a.Attendees {
		if at.IsHost {
			return at.UserID
		}
	}
	return ""
}
