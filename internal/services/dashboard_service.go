package services

import (
	"context"

	"github.com/localnerve/recipe-journal/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// ExpiringWindowDays is how far ahead the dashboard looks for expiring items
const ExpiringWindowDays = 7

// ExpiringItem is a fridge item due within the dashboard window
type ExpiringItem struct {
	FridgeItemView
	Alert bool `json:"alert"`
}

// Dashboard is the home-screen aggregate
type Dashboard struct {
	MonthlyCount       int64           `json:"monthly_count"`
	PreviousMonthCount int64           `json:"previous_month_count"`
	MonthlySuccess     int64           `json:"monthly_success_count"`
	MonthlySuccessRate *int            `json:"monthly_success_rate"`
	ExpiringItems      []ExpiringItem  `json:"expiring_items"`
	RecentLog          *CookingLogView `json:"recent_log"`
}

// GetDashboard runs the independent dashboard reads concurrently and joins them
func GetDashboard(ctx context.Context, db *gorm.DB, cal Calendar, userID string) (*Dashboard, error) {
	monthStart, prevStart, nextStart := cal.MonthBounds()
	today := cal.Today()
	horizon := today.AddDays(ExpiringWindowDays)

	var (
		monthly, previous, success int64
		expiring                   []models.FridgeItem
		recent                     []models.CookingLog
		settings                   *models.UserSettings
	)

	g, gctx := errgroup.WithContext(ctx)
	q := func() *gorm.DB {
		return db.WithContext(gctx)
	}

	g.Go(func() error {
		return q().Model(&models.CookingLog{}).
			Clauses(hints.Comment("select", "dashboard_monthly")).
			Where("user_id = ? AND cooked_at >= ? AND cooked_at < ?", userID, monthStart, nextStart).
			Count(&monthly).Error
	})
	g.Go(func() error {
		return q().Model(&models.CookingLog{}).
			Clauses(hints.Comment("select", "dashboard_previous")).
			Where("user_id = ? AND cooked_at >= ? AND cooked_at < ?", userID, prevStart, monthStart).
			Count(&previous).Error
	})
	g.Go(func() error {
		return q().Model(&models.CookingLog{}).
			Clauses(hints.Comment("select", "dashboard_success")).
			Where("user_id = ? AND status = ? AND cooked_at >= ? AND cooked_at < ?",
				userID, models.StatusSuccess, monthStart, nextStart).
			Count(&success).Error
	})
	g.Go(func() error {
		return q().Preload("Master").
			Clauses(hints.Comment("select", "dashboard_expiring")).
			Where("user_id = ? AND expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?",
				userID, today, horizon).
			Order(expiryOrder).
			Find(&expiring).Error
	})
	g.Go(func() error {
		return q().Preload("Recipe").
			Clauses(hints.Comment("select", "dashboard_recent")).
			Where("user_id = ?", userID).
			Order("cooked_at DESC, created_at DESC").
			Limit(1).
			Find(&recent).Error
	})
	g.Go(func() error {
		var err error
		settings, err = GetSettings(q(), userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	dash := &Dashboard{
		MonthlyCount:       monthly,
		PreviousMonthCount: previous,
		MonthlySuccess:     success,
		MonthlySuccessRate: successRate(success, monthly),
		ExpiringItems:      make([]ExpiringItem, 0, len(expiring)),
	}
	for i := range expiring {
		view := viewFridgeItem(cal, &expiring[i])
		alert := view.DDay != nil && *view.DDay <= settings.ExpiryAlertDays
		dash.ExpiringItems = append(dash.ExpiringItems, ExpiringItem{FridgeItemView: view, Alert: alert})
	}
	if len(recent) > 0 {
		v := viewLog(&recent[0])
		dash.RecentLog = &v
	}
	return dash, nil
}
