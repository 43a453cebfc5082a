package services

import (
	"errors"
	"time"

	"github.com/localnerve/recipe-journal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsPatch carries optional settings changes; nil fields are left as is
type SettingsPatch struct {
	NotificationEnabled *bool   `json:"notification_enabled"`
	ExpiryAlertDays     *int    `json:"expiry_alert_days" validate:"omitempty,min=0,max=365"`
	AutoExportEnabled   *bool   `json:"auto_export_enabled"`
	ExternalLink        *string `json:"external_link" validate:"omitempty,max=1024"`
}

// ProfilePatch carries optional profile changes
type ProfilePatch struct {
	Nickname     *string        `json:"nickname" validate:"omitempty,min=1,max=100"`
	ProfileImage *string        `json:"profile_image" validate:"omitempty,max=1024"`
	Settings     *SettingsPatch `json:"settings"`
}

// GetUser loads a user with settings, falling back to default settings
func GetUser(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	if err := db.Preload("Settings").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if user.Settings == nil {
		defaults := models.DefaultUserSettings(user.ID)
		user.Settings = &defaults
	}
	return &user, nil
}

// GetSettings loads the settings row, or the defaults when none exists
func GetSettings(db *gorm.DB, userID string) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := db.First(&settings, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := models.DefaultUserSettings(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func upsertSettings(tx *gorm.DB, userID string, patch *SettingsPatch) (*models.UserSettings, error) {
	settings, err := GetSettings(tx, userID)
	if err != nil {
		return nil, err
	}
	if patch != nil {
		if patch.NotificationEnabled != nil {
			settings.NotificationEnabled = *patch.NotificationEnabled
		}
		if patch.ExpiryAlertDays != nil {
			settings.ExpiryAlertDays = *patch.ExpiryAlertDays
		}
		if patch.AutoExportEnabled != nil {
			settings.AutoExportEnabled = *patch.AutoExportEnabled
		}
		if patch.ExternalLink != nil {
			settings.ExternalLink = *patch.ExternalLink
		}
	}
	settings.UserID = userID

	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpsertSettings applies patch to the user's settings, creating the row if needed
func UpsertSettings(db *gorm.DB, userID string, patch *SettingsPatch) (*models.UserSettings, error) {
	var result *models.UserSettings
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = upsertSettings(tx, userID, patch)
		return err
	})
	return result, err
}

// UpdateProfile applies profile and optional settings changes in one transaction
func UpdateProfile(db *gorm.DB, userID string, patch ProfilePatch) (*models.User, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if patch.Nickname != nil {
			updates["nickname"] = *patch.Nickname
		}
		if patch.ProfileImage != nil {
			updates["profile_image"] = *patch.ProfileImage
		}
		if len(updates) > 0 {
			res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		if patch.Settings != nil {
			if _, err := upsertSettings(tx, userID, patch.Settings); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetUser(db, userID)
}

// CompleteSignup records the nickname and terms agreement and marks the profile complete
func CompleteSignup(db *gorm.DB, userID, nickname string, now time.Time) (*models.User, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"nickname":         nickname,
			"terms_agreed":     true,
			"terms_agreed_at":  now.UTC(),
			"profile_complete": true,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		_, err := upsertSettings(tx, userID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return GetUser(db, userID)
}

// DeleteUser removes the user and everything the user owns in one transaction
func DeleteUser(db *gorm.DB, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		recipeIDs := tx.Model(&models.Recipe{}).Select("id").Where("user_id = ?", userID)

		steps := []func() error{
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.CookingLog{}).Error },
			func() error { return tx.Where("recipe_id IN (?)", recipeIDs).Delete(&models.CookingLog{}).Error },
			func() error { return tx.Where("recipe_id IN (?)", recipeIDs).Delete(&models.RecipeIngredient{}).Error },
			func() error { return tx.Where("recipe_id IN (?)", recipeIDs).Delete(&models.RecipeStep{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.Recipe{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.FridgeItem{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.UserSettings{}).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", userID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
