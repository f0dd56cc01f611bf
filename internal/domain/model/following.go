package model

// UserFollowingはフォロー関係（observerがtargetをフォローする）
type UserFollowing struct {
	ObserverID string `gorm:"type:uuid;primaryKey"`
	TargetID   string `gorm:"type:uuid;primaryKey"`

	Observer User `gorm:"foreignKey:ObserverID"`
	Target   User `gorm:"foreignKey:TargetID"`
}
