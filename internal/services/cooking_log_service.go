package services

import (
	"context"
	"errors"
	"time"

	"github.com/localnerve/recipe-journal/internal/models"
	"gorm.io/gorm"
)

// CookingLogInput is a validated cooking log create payload
type CookingLogInput struct {
	RecipeID   string
	Status     string
	LessonNote string
	Companion  string
	CookedAt   *time.Time
}

// CookingLogPatch carries optional cooking log changes
type CookingLogPatch struct {
	Status     *string
	LessonNote *string
	Companion  *string
	CookedAt   *time.Time
}

// CookingLogView is a cooking log annotated with its recipe
type CookingLogView struct {
	ID                 string    `json:"id"`
	RecipeID           string    `json:"recipe_id"`
	RecipeTitle        string    `json:"recipe_title"`
	RecipeThumbnailURL string    `json:"recipe_thumbnail_url"`
	Status             string    `json:"status"`
	LessonNote         string    `json:"lesson_note"`
	Companion          string    `json:"companion"`
	CookedAt           time.Time `json:"cooked_at"`
	CreatedAt          time.Time `json:"created_at"`
}

func viewLog(l *models.CookingLog) CookingLogView {
	v := CookingLogView{
		ID:         l.ID,
		RecipeID:   l.RecipeID,
		Status:     l.Status,
		LessonNote: l.LessonNote,
		Companion:  l.Companion,
		CookedAt:   l.CookedAt,
		CreatedAt:  l.CreatedAt,
	}
	if l.Recipe != nil {
		v.RecipeTitle = l.Recipe.Title
		v.RecipeThumbnailURL = l.Recipe.ThumbnailURL
	}
	return v
}

// CreateCookingLog records an outcome for a recipe the caller owns
func CreateCookingLog(db *gorm.DB, userID string, in CookingLogInput) (*models.CookingLog, error) {
	if _, err := loadOwnedRecipe(db, userID, in.RecipeID); err != nil {
		return nil, err
	}

	log := models.CookingLog{
		UserID:     userID,
		RecipeID:   in.RecipeID,
		Status:     in.Status,
		LessonNote: in.LessonNote,
		Companion:  in.Companion,
	}
	if in.CookedAt != nil {
		log.CookedAt = in.CookedAt.UTC()
	}
	if err := db.Create(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// ListCookingLogs returns the caller's logs newest first, optionally for one recipe
func ListCookingLogs(ctx context.Context, db *gorm.DB, userID, recipeID string) ([]CookingLogView, error) {
	q := db.WithContext(ctx).Preload("Recipe").Where("user_id = ?", userID)
	if recipeID != "" {
		q = q.Where("recipe_id = ?", recipeID)
	}

	var logs []models.CookingLog
	if err := q.Order("cooked_at DESC, created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	result := make([]CookingLogView, 0, len(logs))
	for i := range logs {
		result = append(result, viewLog(&logs[i]))
	}
	return result, nil
}

func loadOwnedLog(db *gorm.DB, userID, logID string) (*models.CookingLog, error) {
	var log models.CookingLog
	if err := db.First(&log, "id = ?", logID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := checkOwner(log.UserID, userID); err != nil {
		return nil, err
	}
	return &log, nil
}

// UpdateCookingLog applies patch to a log the caller owns
func UpdateCookingLog(db *gorm.DB, userID, logID string, patch CookingLogPatch) (*models.CookingLog, error) {
	var updated *models.CookingLog
	err := db.Transaction(func(tx *gorm.DB) error {
		log, err := loadOwnedLog(tx, userID, logID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if patch.LessonNote != nil {
			updates["lesson_note"] = *patch.LessonNote
		}
		if patch.Companion != nil {
			updates["companion"] = *patch.Companion
		}
		if patch.CookedAt != nil {
			updates["cooked_at"] = patch.CookedAt.UTC()
		}
		if len(updates) > 0 {
			if err := tx.Model(log).Updates(updates).Error; err != nil {
				return err
			}
		}
		updated = log
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCookingLog removes a log the caller owns
func DeleteCookingLog(db *gorm.DB, userID, logID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		log, err := loadOwnedLog(tx, userID, logID)
		if err != nil {
			return err
		}
		return tx.Delete(log).Error
	})
}
