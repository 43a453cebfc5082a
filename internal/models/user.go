package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default values for new UserSettings rows
const (
	DefaultExpiryAlertDays = 3
)

// User is the local account row for one social identity
type User struct {
	ID              string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Provider        string     `gorm:"size:32;not null;index:idx_users_social,unique" json:"provider"`
	SocialID        string     `gorm:"size:191;not null;index:idx_users_social,unique" json:"social_id"`
	Nickname        string     `gorm:"size:100" json:"nickname"`
	Email           string     `gorm:"size:255" json:"email"`
	ProfileImage    string     `gorm:"size:1024" json:"profile_image"`
	TermsAgreed     bool       `gorm:"not null" json:"terms_agreed"`
	TermsAgreedAt   *time.Time `json:"terms_agreed_at"`
	ProfileComplete bool       `gorm:"not null" json:"profile_complete"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Settings *UserSettings `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"settings,omitempty"`
}

// UserSettings holds per-user preferences, one row per user
type UserSettings struct {
	UserID              string    `gorm:"type:varchar(36);primaryKey" json:"-"`
	NotificationEnabled bool      `gorm:"not null" json:"notification_enabled"`
	ExpiryAlertDays     int       `gorm:"not null" json:"expiry_alert_days"`
	AutoExportEnabled   bool      `gorm:"not null" json:"auto_export_enabled"`
	ExternalLink        string    `gorm:"size:1024" json:"external_link"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultUserSettings returns the settings a new account starts with
func DefaultUserSettings(userID string) UserSettings {
	return UserSettings{
		UserID:              userID,
		NotificationEnabled: true,
		ExpiryAlertDays:     DefaultExpiryAlertDays,
	}
}

// BeforeCreate assigns a uuid when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for UserSettings
func (UserSettings) TableName() string {
	return "user_settings"
}
