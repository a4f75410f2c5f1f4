package model

import "time"

const (
	SubscriptionFree    = "free"
	SubscriptionPremium = "premium"
)

// User is an account that owns documents.
type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	Username              string     `json:"username"`
	HashedPassword        string     `json:"-"`
	IsActive              bool       `json:"is_active"`
	IsPremium             bool       `json:"is_premium"`
	IsVerified            bool       `json:"is_verified"`
	FullName              string     `json:"full_name,omitempty"`
	Language              string     `json:"language"`
	Timezone              string     `json:"timezone"`
	SubscriptionType      string     `json:"subscription_type"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	MonthlyUploads        int        `json:"monthly_uploads"`
	TotalUploads          int        `json:"total_uploads"`
	LastUploadAt          *time.Time `json:"last_upload_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	LastLoginAt           *time.Time `json:"last_login_at,omitempty"`
}

// IsPremiumActive reports whether the premium subscription is in effect at now.
func (u *User) IsPremiumActive(now time.Time) bool {
	if !u.IsPremium {
		return false
	}
	return u.SubscriptionExpiresAt == nil || u.SubscriptionExpiresAt.After(now)
}

// CanUpload applies the monthly quota; premium users are unlimited.
func (u *User) CanUpload(now time.Time, freeMonthlyLimit int) bool {
	if !u.IsActive {
		return false
	}
	if u.IsPremiumActive(now) {
		return true
	}
	return u.UploadsThisMonth(now) < freeMonthlyLimit
}

// UploadsThisMonth is MonthlyUploads, or zero when the last upload happened
// in an earlier calendar month.
func (u *User) UploadsThisMonth(now time.Time) int {
	if u.LastUploadAt == nil {
		return u.MonthlyUploads
	}
	ly, lm, _ := u.LastUploadAt.In(now.Location()).Date()
	ny, nm, _ := now.Date()
	if ly != ny || lm != nm {
		return 0
	}
	return u.MonthlyUploads
}
