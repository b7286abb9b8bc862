package models

import "time"

// UserFollow is a user-follows-user edge.
type UserFollow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_user_follow_pair" json:"followerId"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_user_follow_pair;index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`

	Follower  *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following *User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
}

// FollowCompany is a user-follows-company edge.
type FollowCompany struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_company_follow_pair" json:"userId"`
	CompanyID uint      `gorm:"not null;uniqueIndex:idx_company_follow_pair;index" json:"companyId"`
	CreatedAt time.Time `json:"createdAt"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Company *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (FollowCompany) TableName() string {
	return "follow_companies"
}
