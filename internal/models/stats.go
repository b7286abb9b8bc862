package models

import "time"

// AdminStats are the dashboard counters.
type AdminStats struct {
	Users            int64 `json:"users"`
	Companies        int64 `json:"companies"`
	Thanks           int64 `json:"thanks"`
	Comments         int64 `json:"comments"`
	PendingReports   int64 `json:"pendingReports"`
	PendingThanks    int64 `json:"pendingThanks"`
	PendingComments  int64 `json:"pendingComments"`
	PendingCompanies int64 `json:"pendingCompanies"`
}

// TopCompany is a row of the most-thanked companies list.
type TopCompany struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	LogoURL        string    `json:"logoUrl"`
	ThanksCount    int64     `json:"thanksCount"`
	TotalLikes     int64     `json:"totalLikes"`
	LastThanksDate time.Time `json:"lastThanksDate"`
}

// TopUser is a row of the most-appreciated users list.
type TopUser struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	TotalLikes  int64  `json:"totalLikes"`
	ThanksCount int64  `json:"thanksCount"`
}

// UserProfile is the public profile page payload.
type UserProfile struct {
	PublicUser
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	ThanksGiven    int64     `json:"thanksGiven"`
	ThanksReceived int64     `json:"thanksReceived"`
	Followers      int64     `json:"followers"`
	Following      int64     `json:"following"`
	CreatedAt      time.Time `json:"createdAt"`
}
