// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. Password is nil for accounts that
// were created through an external identity provider.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Name       string    `gorm:"not null" json:"name"`
	Image      string    `json:"image"`
	Bio        string    `gorm:"type:text" json:"bio"`
	Phone      string    `json:"phone"`
	Location   string    `json:"location"`
	Website    string    `json:"website"`
	Password   *string   `json:"-"`
	IsAdmin    bool      `gorm:"default:false;not null" json:"isAdmin"`
	UserType   string    `json:"userType,omitempty"`
	Profession string    `json:"profession,omitempty"`
	WorkArea   string    `json:"workArea,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PublicUser is the subset of user fields embedded in feed items and comments.
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Public strips private fields.
func (u *User) Public() *PublicUser {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &PublicUser{ID: u.ID, Name: u.Name, Image: u.Image}
}
