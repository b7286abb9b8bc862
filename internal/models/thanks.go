package models

import (
	"errors"
	"time"
)

// MediaType is the kind of media attached to a thanks.
type MediaType string

const (
	MediaNone  MediaType = ""
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ParseMediaType accepts "image" or "video".
func ParseMediaType(s string) (MediaType, bool) {
	switch MediaType(s) {
	case MediaImage, MediaVideo:
		return MediaType(s), true
	}
	return MediaNone, false
}

// TargetKind discriminates the recipient of a thanks.
type TargetKind string

const (
	TargetCompany TargetKind = "company"
	TargetUser    TargetKind = "user"
)

// Target is the recipient of a thanks: exactly one company or one user.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   uint       `json:"id"`
}

func CompanyTarget(id uint) Target { return Target{Kind: TargetCompany, ID: id} }

func UserTarget(id uint) Target { return Target{Kind: TargetUser, ID: id} }

var ErrInvalidTarget = errors.New("thanks must target exactly one company or user")

// Valid reports whether the target names a known kind and a non-zero id.
func (t Target) Valid() bool {
	return (t.Kind == TargetCompany || t.Kind == TargetUser) && t.ID != 0
}

// Thanks is a message of gratitude. The recipient columns are only written
// through SetTarget; the table carries a check constraint so that exactly
// one of them is set.
type Thanks struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	MediaURL     string    `json:"mediaUrl,omitempty"`
	MediaType    MediaType `gorm:"size:10" json:"mediaType,omitempty"`
	LikeCount    int       `gorm:"not null;default:0;index" json:"likeCount"`
	IsApproved   bool      `gorm:"not null;default:false;index" json:"isApproved"`
	AuthorID     uint      `gorm:"not null;index" json:"authorId"`
	CompanyID    *uint     `gorm:"index;check:chk_thanks_target,(company_id IS NULL) <> (target_user_id IS NULL)" json:"companyId,omitempty"`
	TargetUserID *uint     `gorm:"index" json:"targetUserId,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Author     *User    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Company    *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"-"`
	TargetUser *User    `gorm:"foreignKey:TargetUserID;constraint:OnDelete:CASCADE" json:"-"`
}

// SetTarget writes the recipient columns from t.
func (t *Thanks) SetTarget(target Target) error {
	if !target.Valid() {
		return ErrInvalidTarget
	}
	id := target.ID
	switch target.Kind {
	case TargetCompany:
		t.CompanyID, t.TargetUserID = &id, nil
	case TargetUser:
		t.CompanyID, t.TargetUserID = nil, &id
	}
	return nil
}

// Target reads back the recipient.
func (t *Thanks) Target() (Target, error) {
	switch {
	case t.CompanyID != nil && t.TargetUserID == nil:
		return CompanyTarget(*t.CompanyID), nil
	case t.TargetUserID != nil && t.CompanyID == nil:
		return UserTarget(*t.TargetUserID), nil
	}
	return Target{}, ErrInvalidTarget
}

// ThanksCounts is the "_count" block of a feed item.
type ThanksCounts struct {
	Likes    int   `json:"likes"`
	Comments int64 `json:"comments"`
}

// ThanksView is the public rendering of a thanks in feeds and detail pages.
type ThanksView struct {
	ID         uint            `json:"id"`
	Text       string          `json:"text"`
	MediaURL   string          `json:"mediaUrl,omitempty"`
	MediaType  MediaType       `json:"mediaType,omitempty"`
	LikeCount  int             `json:"likeCount"`
	IsApproved bool            `json:"isApproved"`
	Target     Target          `json:"target"`
	Author     *PublicUser     `json:"author"`
	Company    *CompanySummary `json:"company,omitempty"`
	TargetUser *PublicUser     `json:"targetUser,omitempty"`
	Count      ThanksCounts    `json:"_count"`
	LikedByMe  bool            `json:"likedByMe"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// View renders t with its preloaded relations. commentCount is supplied by
// the caller since it is aggregated separately.
func (t *Thanks) View(commentCount int64, likedByMe bool) *ThanksView {
	target, _ := t.Target()
	return &ThanksView{
		ID:         t.ID,
		Text:       t.Text,
		MediaURL:   t.MediaURL,
		MediaType:  t.MediaType,
		LikeCount:  t.LikeCount,
		IsApproved: t.IsApproved,
		Target:     target,
		Author:     t.Author.Public(),
		Company:    t.Company.Summary(),
		TargetUser: t.TargetUser.Public(),
		Count:      ThanksCounts{Likes: t.LikeCount, Comments: commentCount},
		LikedByMe:  likedByMe,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
