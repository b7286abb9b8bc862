package models

import "time"

// Comment is a reply on a thanks. New comments wait for moderation.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	ThanksID   uint      `gorm:"not null;index" json:"thanksId"`
	IsApproved bool      `gorm:"not null;default:false;index" json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Thanks *Thanks `gorm:"foreignKey:ThanksID;constraint:OnDelete:CASCADE" json:"-"`
}

// CommentView is a comment with its author's public fields.
type CommentView struct {
	ID         uint        `json:"id"`
	Text       string      `json:"text"`
	ThanksID   uint        `json:"thanksId"`
	IsApproved bool        `json:"isApproved"`
	User       *PublicUser `json:"user"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (c *Comment) View() *CommentView {
	return &CommentView{
		ID:         c.ID,
		Text:       c.Text,
		ThanksID:   c.ThanksID,
		IsApproved: c.IsApproved,
		User:       c.User.Public(),
		CreatedAt:  c.CreatedAt,
	}
}
