package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cooking outcome statuses
const (
	StatusSuccess = "SUCCESS"
	StatusRegret  = "REGRET"
	StatusFail    = "FAIL"
)

// IsCookingStatus reports whether s is a valid cooking outcome
func IsCookingStatus(s string) bool {
	switch s {
	case StatusSuccess, StatusRegret, StatusFail:
		return true
	}
	return false
}

// CookingLog records the outcome of one cooking attempt of a recipe
type CookingLog struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	RecipeID   string    `gorm:"type:varchar(36);not null;index" json:"recipe_id"`
	Status     string    `gorm:"size:16;not null" json:"status"`
	LessonNote string    `gorm:"type:text" json:"lesson_note"`
	Companion  string    `gorm:"size:255" json:"companion"`
	CookedAt   time.Time `gorm:"not null;index" json:"cooked_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a uuid and a cooked-at time when unset
func (l *CookingLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CookedAt.IsZero() {
		l.CookedAt = time.Now().UTC()
	}
	return nil
}

// TableName overrides the table name for CookingLog
func (CookingLog) TableName() string {
	return "cooking_logs"
}
