package models

import "time"

// ReportStatus tracks an admin's handling of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

// Report is a user's complaint about a thanks. A user may report a given
// thanks only once.
type Report struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_report_user_thanks" json:"userId"`
	ThanksID  uint         `gorm:"not null;uniqueIndex:idx_report_user_thanks;index" json:"thanksId"`
	Reason    string       `gorm:"type:text;not null" json:"reason"`
	Status    ReportStatus `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Thanks *Thanks `gorm:"foreignKey:ThanksID;constraint:OnDelete:CASCADE" json:"thanks,omitempty"`
}
