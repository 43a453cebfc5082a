package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredientMaster is a canonical catalog entry used for autocomplete and defaults
type IngredientMaster struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string `gorm:"size:191;not null;uniqueIndex" json:"name"`
	Category      string `gorm:"size:64" json:"category"`
	Icon          string `gorm:"size:64" json:"icon"`
	DefaultUnit   string `gorm:"size:32" json:"default_unit"`
	BaseShelfLife int    `gorm:"not null" json:"base_shelf_life"`
}

// FridgeItem is one inventory row, linked to a catalog entry or custom-named
type FridgeItem struct {
	ID         string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	MasterID   *uint64       `gorm:"index" json:"master_id"`
	CustomName string        `gorm:"size:255" json:"custom_name"`
	Quantity   *float64      `json:"quantity"`
	Unit       string        `gorm:"size:32" json:"unit"`
	ExpiryDate *CalendarDate `gorm:"type:date;index" json:"expiry_date"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	Master *IngredientMaster `gorm:"foreignKey:MasterID;constraint:OnDelete:SET NULL" json:"-"`
}

// DisplayName is the catalog name when linked, otherwise the custom name
func (f *FridgeItem) DisplayName() string {
	if f.Master != nil && f.Master.Name != "" {
		return f.Master.Name
	}
	return f.CustomName
}

// BeforeCreate assigns a uuid when none is set
func (f *FridgeItem) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for IngredientMaster
func (IngredientMaster) TableName() string {
	return "ingredient_master"
}

// TableName overrides the table name for FridgeItem
func (FridgeItem) TableName() string {
	return "fridge_items"
}
