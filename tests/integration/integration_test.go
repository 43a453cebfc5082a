package integration_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/localnerve/recipe-journal/internal/database"
	"github.com/localnerve/recipe-journal/internal/models"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)

// TestWithPostgreSQL runs the services against a real PostgreSQL container
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_PORT", "5432")
	if image := os.Getenv("POSTGRES_IMAGE"); image != "" {
		t.Setenv("DB_IMAGE", image)
	}

	runIntegration(t)
}

// TestWithMariaDB runs the services against a real MariaDB container
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Setenv("DB_TYPE", "mariadb")
	t.Setenv("DB_PORT", "3306")
	if image := os.Getenv("MARIADB_IMAGE"); image != "" {
		t.Setenv("DB_IMAGE", image)
	}

	runIntegration(t)
}

func runIntegration(t *testing.T) {
	ctx := context.Background()

	dc, err := helpers.StartDatabase(ctx, t, "")
	require.NoError(t, err)
	defer func() {
		if err := dc.Container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	db, err := database.Connect(dc.AppConfig(), zap.NewNop())
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.AutoMigrate(db))
	seeded, err := database.SeedIngredientMaster(db)
	require.NoError(t, err)
	require.Greater(t, seeded, 0)

	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	cal := services.Calendar{Location: seoul, Now: func() time.Time { return fixedNow }}

	t.Run("RecipeRoundTrip", func(t *testing.T) {
		testRecipeRoundTrip(t, db)
	})

	t.Run("FridgeExpiryDates", func(t *testing.T) {
		testFridgeExpiryDates(t, db, cal)
	})

	t.Run("DashboardAggregates", func(t *testing.T) {
		testDashboardAggregates(t, db, cal)
	})

	t.Run("DeleteUserCascades", func(t *testing.T) {
		testDeleteUserCascades(t, db)
	})
}

func resolveUser(t *testing.T, db *gorm.DB, socialID string) *models.User {
	t.Helper()
	user, err := services.ResolveUser(db, &services.SessionIdentity{
		Provider: "google",
		SocialID: socialID,
		Nickname: socialID,
	})
	require.NoError(t, err)
	return user
}

func testRecipeRoundTrip(t *testing.T, db *gorm.DB) {
	user := resolveUser(t, db, "recipe-owner")

	recipe, err := services.CreateRecipe(db, user.ID, services.RecipeInput{
		Title:      "된장찌개",
		Servings:   2,
		Difficulty: models.DifficultyMedium,
		Ingredients: []services.IngredientInput{
			{Name: "된장", Amount: helpers.Float(2), Unit: "큰술"},
			{Name: "두부", Amount: helpers.Float(150), Unit: "g"},
			{Name: "소금", Unit: "약간"},
		},
		Steps: []services.StepInput{
			{StepOrder: 2, Instruction: "두부를 넣고 끓인다", TimerSeconds: 300},
			{StepOrder: 1, Instruction: "된장을 푼다"},
		},
	})
	require.NoError(t, err)

	detail, err := services.GetRecipe(context.Background(), db, user.ID, recipe.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.BaseServings)
	assert.Equal(t, 3, detail.Servings)
	require.Len(t, detail.Ingredients, 3)
	assert.Equal(t, "된장", detail.Ingredients[0].Name)
	require.NotNil(t, detail.Ingredients[1].Amount)
	assert.InDelta(t, 225, *detail.Ingredients[1].Amount, 0.0001)
	assert.Nil(t, detail.Ingredients[2].Amount)
	require.Len(t, detail.Steps, 2)
	assert.Equal(t, "된장을 푼다", detail.Steps[0].Instruction)
	assert.Equal(t, 300, detail.Steps[1].TimerSeconds)

	require.NoError(t, services.UpdateRecipe(db, user.ID, recipe.ID, services.RecipeInput{
		Title:       "된장찌개 (개정)",
		Servings:    4,
		Difficulty:  models.DifficultyEasy,
		Ingredients: []services.IngredientInput{{Name: "된장", Amount: helpers.Float(4), Unit: "큰술"}},
		Steps:       []services.StepInput{{StepOrder: 1, Instruction: "끓인다"}},
	}))

	detail, err = services.GetRecipe(context.Background(), db, user.ID, recipe.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "된장찌개 (개정)", detail.Title)
	assert.Len(t, detail.Ingredients, 1)
	assert.Len(t, detail.Steps, 1)

	other := resolveUser(t, db, "someone-else")
	_, err = services.GetRecipe(context.Background(), db, other.ID, recipe.ID, 0)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func testFridgeExpiryDates(t *testing.T, db *gorm.DB, cal services.Calendar) {
	user := resolveUser(t, db, "fridge-owner")

	item, err := services.AddFridgeItem(db, cal, user.ID, services.FridgeInput{Name: "대파"})
	require.NoError(t, err)
	require.NotNil(t, item.ExpiryDate)
	assert.Equal(t, "2026-03-22", item.ExpiryDate.String())

	explicit, err := models.ParseCalendarDate("2026-03-14")
	require.NoError(t, err)
	_, err = services.AddFridgeItem(db, cal, user.ID, services.FridgeInput{
		Name:       "우유",
		Quantity:   helpers.Float(1),
		Unit:       "팩",
		ExpiryDate: &explicit,
	})
	require.NoError(t, err)

	views, err := services.ListFridgeItems(context.Background(), db, cal, user.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "우유", views[0].Name)
	require.NotNil(t, views[0].DDay)
	assert.Equal(t, -1, *views[0].DDay)
	require.NotNil(t, views[1].DDay)
	assert.Equal(t, 7, *views[1].DDay)
}

func testDashboardAggregates(t *testing.T, db *gorm.DB, cal services.Calendar) {
	user := resolveUser(t, db, "dashboard-owner")
	recipe := helpers.CreateTestRecipe(t, db, user.ID, 2)

	helpers.CreateTestLog(t, db, user.ID, recipe.ID, models.StatusSuccess, fixedNow.Add(-48*time.Hour))
	helpers.CreateTestLog(t, db, user.ID, recipe.ID, models.StatusFail, fixedNow.Add(-24*time.Hour))
	helpers.CreateTestLog(t, db, user.ID, recipe.ID, models.StatusSuccess, fixedNow.AddDate(0, -1, 0))

	soon := cal.Today().AddDays(2)
	helpers.CreateTestFridgeItem(t, db, user.ID, &soon)

	dash, err := services.GetDashboard(context.Background(), db, cal, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dash.MonthlyCount)
	assert.Equal(t, int64(1), dash.PreviousMonthCount)
	assert.Equal(t, int64(1), dash.MonthlySuccess)
	require.NotNil(t, dash.MonthlySuccessRate)
	assert.Equal(t, 50, *dash.MonthlySuccessRate)
	require.Len(t, dash.ExpiringItems, 1)
	assert.True(t, dash.ExpiringItems[0].Alert)
	require.NotNil(t, dash.RecentLog)
	assert.Equal(t, models.StatusFail, dash.RecentLog.Status)
}

func testDeleteUserCascades(t *testing.T, db *gorm.DB) {
	user := resolveUser(t, db, "leaving-user")
	recipe := helpers.CreateTestRecipe(t, db, user.ID, 1)
	helpers.CreateTestLog(t, db, user.ID, recipe.ID, models.StatusSuccess, fixedNow)
	helpers.CreateTestFridgeItem(t, db, user.ID, nil)

	require.NoError(t, services.DeleteUser(db, user.ID))

	for _, model := range []interface{}{&models.Recipe{}, &models.CookingLog{}, &models.FridgeItem{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
	var steps int64
	require.NoError(t, db.Model(&models.RecipeStep{}).Where("recipe_id = ?", recipe.ID).Count(&steps).Error)
	assert.Zero(t, steps)
}
