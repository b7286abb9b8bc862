package models

import "time"

// Like represents a user's like on a thanks.
// The combination of UserID and ThanksID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_thanks" json:"userId"`
	ThanksID  uint      `gorm:"not null;uniqueIndex:idx_like_user_thanks;index" json:"thanksId"`
	CreatedAt time.Time `json:"createdAt"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Thanks *Thanks `gorm:"foreignKey:ThanksID;constraint:OnDelete:CASCADE" json:"-"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
