package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/config"
	"github.com/localnerve/recipe-journal/internal/extraction"
	"github.com/localnerve/recipe-journal/internal/models"
	"github.com/localnerve/recipe-journal/internal/server"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/tests/helpers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)

type stubExtractor struct {
	recipe *extraction.Recipe
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, rawURL string) (*extraction.Recipe, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	r := *s.recipe
	r.SourceURL = rawURL
	return &r, nil
}

type testApp struct {
	app       *fiber.App
	db        *gorm.DB
	sessions  *helpers.FakeValidator
	extractor *stubExtractor
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	ta := &testApp{
		db:        helpers.NewTestDB(t),
		sessions:  helpers.NewFakeValidator(),
		extractor: &stubExtractor{recipe: &extraction.Recipe{Title: "Stew", Difficulty: "EASY", Servings: 2}},
	}
	ta.sessions.Add("alice", "google", "alice-id")
	ta.sessions.Add("bob", "kakao", "bob-id")

	ta.app = server.New(server.Deps{
		Config: &config.Config{
			Environment:      "test",
			AuthzCookieName:  helpers.TestCookieName,
			ExtractRateLimit: 3,
			Timezone:         "Asia/Seoul",
		},
		DB:        ta.db,
		Sessions:  ta.sessions,
		Extractor: ta.extractor,
		Calendar:  services.Calendar{Location: seoul, Now: func() time.Time { return fixedNow }},
		Registry:  prometheus.NewRegistry(),
	})
	return ta
}

func (ta *testApp) do(t *testing.T, method, path string, body interface{}, cookie string) *http.Response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		helpers.WithSession(req, cookie)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) createRecipe(t *testing.T, cookie string, body interface{}) string {
	t.Helper()
	resp := ta.do(t, http.MethodPost, "/api/recipes", body, cookie)
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var created struct {
		RecipeID string `json:"recipe_id"`
	}
	env := helpers.ParseEnvelope(t, resp, &created)
	require.True(t, env.Success)
	require.NotEmpty(t, created.RecipeID)
	return created.RecipeID
}

var stewBody = map[string]interface{}{
	"title":    "Kimchi Stew",
	"servings": 2,
	"ingredients": []map[string]interface{}{
		{"name": "kimchi", "amount": 300, "unit": "g"},
		{"name": "gochugaru", "amount": "1.5", "unit": "큰술"},
		{"name": "salt", "amount": nil, "unit": ""},
	},
	"steps": []map[string]interface{}{
		{"instruction": "Fry the kimchi"},
		{"instruction": "Simmer", "timer_seconds": 1200},
	},
}

func TestOwnerRoutesRequireSession(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{"/api/recipes", "/api/fridge", "/api/cooking-logs", "/api/dashboard", "/api/user/profile"} {
		resp := ta.do(t, http.MethodGet, path, nil, "")
		helpers.AssertStatus(t, resp, http.StatusUnauthorized)
		env := helpers.ParseEnvelope(t, resp, nil)
		assert.False(t, env.Success, path)
	}

	resp := ta.do(t, http.MethodGet, "/api/recipes", nil, "forged")
	helpers.AssertStatus(t, resp, http.StatusUnauthorized)
}

func TestAuthCheckAndSignup(t *testing.T) {
	ta := newTestApp(t)

	var status struct {
		Authenticated   bool         `json:"authenticated"`
		ProfileComplete bool         `json:"profile_complete"`
		User            *models.User `json:"user"`
	}
	resp := ta.do(t, http.MethodGet, "/api/auth/check", nil, "forged")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &status)
	assert.False(t, status.Authenticated)
	assert.Nil(t, status.User)

	resp = ta.do(t, http.MethodGet, "/api/auth/check", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &status)
	assert.True(t, status.Authenticated)
	assert.False(t, status.ProfileComplete)
	require.NotNil(t, status.User)
	assert.Equal(t, "alice-id", status.User.SocialID)

	resp = ta.do(t, http.MethodPost, "/api/auth/signup", map[string]interface{}{"nickname": " ", "terms_agreed": false}, "alice")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	env := helpers.ParseEnvelope(t, resp, nil)
	assert.Contains(t, env.Errors, "nickname is required")
	assert.Contains(t, env.Errors, "terms_agreed must be true")

	var user models.User
	resp = ta.do(t, http.MethodPost, "/api/auth/signup", map[string]interface{}{"nickname": "Alice", "terms_agreed": true}, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &user)
	assert.Equal(t, "Alice", user.Nickname)
	assert.True(t, user.TermsAgreed)
	assert.NotNil(t, user.TermsAgreedAt)

	resp = ta.do(t, http.MethodGet, "/api/auth/check", nil, "alice")
	helpers.ParseEnvelope(t, resp, &status)
	assert.True(t, status.ProfileComplete)
}

func TestRecipeLifecycle(t *testing.T) {
	ta := newTestApp(t)
	id := ta.createRecipe(t, "alice", stewBody)

	var detail services.RecipeDetail
	resp := ta.do(t, http.MethodGet, "/api/recipes/"+id+"?servings=3", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &detail)

	assert.Equal(t, 2, detail.BaseServings)
	assert.Equal(t, 3, detail.Servings)
	assert.Equal(t, models.DifficultyMedium, detail.Difficulty)
	require.Len(t, detail.Ingredients, 3)
	assert.Equal(t, 450.0, *detail.Ingredients[0].Amount)
	assert.Equal(t, 2.25, *detail.Ingredients[1].Amount)
	assert.Nil(t, detail.Ingredients[2].Amount)
	require.Len(t, detail.Steps, 2)
	assert.Equal(t, 1, detail.Steps[0].StepOrder)
	assert.Equal(t, 2, detail.Steps[1].StepOrder)
	assert.Equal(t, 1200, detail.Steps[1].TimerSeconds)
	assert.Nil(t, detail.LatestLog)

	resp = ta.do(t, http.MethodGet, "/api/recipes/"+id, nil, "alice")
	helpers.ParseEnvelope(t, resp, &detail)
	assert.Equal(t, 300.0, *detail.Ingredients[0].Amount)

	resp = ta.do(t, http.MethodGet, "/api/recipes/"+id+"?servings=0", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)

	var steps services.RecipeSteps
	resp = ta.do(t, http.MethodGet, "/api/recipes/"+id+"/steps", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &steps)
	assert.Equal(t, "Kimchi Stew", steps.Title)
	assert.Len(t, steps.Steps, 2)

	update := map[string]interface{}{
		"title":       "Kimchi Stew v2",
		"servings":    4,
		"difficulty":  "hard",
		"ingredients": map[string]interface{}{"name": "kimchi", "amount": 500, "unit": "g"},
		"steps":       []map[string]interface{}{{"step_order": 1, "instruction": "Boil"}},
	}
	resp = ta.do(t, http.MethodPut, "/api/recipes/"+id, update, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)

	resp = ta.do(t, http.MethodGet, "/api/recipes/"+id, nil, "alice")
	helpers.ParseEnvelope(t, resp, &detail)
	assert.Equal(t, "Kimchi Stew v2", detail.Title)
	assert.Equal(t, models.DifficultyHard, detail.Difficulty)
	assert.Len(t, detail.Ingredients, 1)
	assert.Len(t, detail.Steps, 1)

	resp = ta.do(t, http.MethodDelete, "/api/recipes/"+id, nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	resp = ta.do(t, http.MethodGet, "/api/recipes/"+id, nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusNotFound)
}

func TestRecipeValidation(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.do(t, http.MethodPost, "/api/recipes", map[string]interface{}{"title": "", "servings": 0}, "alice")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	env := helpers.ParseEnvelope(t, resp, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, env.Errors, "title is required")
	assert.Contains(t, env.Errors, "ingredients is required")
	assert.Contains(t, env.Errors, "steps is required")
	assert.Contains(t, env.Errors, "servings must be at least 1")

	bad := map[string]interface{}{
		"title":       "Soup",
		"difficulty":  "EXTREME",
		"ingredients": []map[string]interface{}{{"name": "", "amount": -1}},
		"steps":       []map[string]interface{}{{"instruction": "Stir", "timer_seconds": -5}},
	}
	resp = ta.do(t, http.MethodPost, "/api/recipes", bad, "alice")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	env = helpers.ParseEnvelope(t, resp, nil)
	assert.Contains(t, env.Errors, "difficulty must be one of [EASY MEDIUM HARD]")
	assert.Contains(t, env.Errors, "ingredients[0].name is required")
	assert.Contains(t, env.Errors, "ingredients[0].amount must not be negative")
	assert.Contains(t, env.Errors, "steps[0].timer_seconds must not be negative")

	resp = ta.do(t, http.MethodPost, "/api/recipes", `{"title": "Soup", "servings": "lots"}`, "alice")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	env = helpers.ParseEnvelope(t, resp, nil)
	assert.Equal(t, "Invalid request body", env.Message)
}

func TestRecipeOwnershipAndStats(t *testing.T) {
	ta := newTestApp(t)
	id := ta.createRecipe(t, "alice", stewBody)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp := ta.do(t, method, "/api/recipes/"+id, nil, "bob")
		helpers.AssertStatus(t, resp, http.StatusForbidden)
	}
	resp := ta.do(t, http.MethodPut, "/api/recipes/"+id, stewBody, "bob")
	helpers.AssertStatus(t, resp, http.StatusForbidden)

	resp = ta.do(t, http.MethodGet, "/api/recipes/does-not-exist", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusNotFound)

	for _, status := range []string{"SUCCESS", "fail", "SUCCESS"} {
		resp = ta.do(t, http.MethodPost, "/api/cooking-logs", map[string]interface{}{"recipe_id": id, "status": status}, "alice")
		helpers.AssertStatus(t, resp, http.StatusCreated)
	}

	var list []services.RecipeSummary
	resp = ta.do(t, http.MethodGet, "/api/recipes", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].Stats.TotalLogs)
	assert.Equal(t, int64(2), list[0].Stats.SuccessCount)
	require.NotNil(t, list[0].Stats.SuccessRate)
	assert.Equal(t, 67, *list[0].Stats.SuccessRate)
	assert.NotNil(t, list[0].LatestLog)

	resp = ta.do(t, http.MethodGet, "/api/recipes", nil, "bob")
	helpers.ParseEnvelope(t, resp, &list)
	assert.Empty(t, list)
}

func TestFridgeDefaultsFromCatalog(t *testing.T) {
	ta := newTestApp(t)
	helpers.CreateTestMaster(t, ta.db, "대파", "대", 7)

	resp := ta.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{"name": "대파"}, "alice")
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var created struct {
		ItemID string `json:"item_id"`
	}
	helpers.ParseEnvelope(t, resp, &created)
	require.NotEmpty(t, created.ItemID)

	resp = ta.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{"name": "homemade sauce", "quantity": "2", "unit": "병", "expiry_date": "2026-03-14"}, "alice")
	helpers.AssertStatus(t, resp, http.StatusCreated)

	var items []services.FridgeItemView
	resp = ta.do(t, http.MethodGet, "/api/fridge", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &items)
	require.Len(t, items, 2)

	assert.Equal(t, "homemade sauce", items[0].Name)
	require.NotNil(t, items[0].DDay)
	assert.Equal(t, -1, *items[0].DDay)
	assert.Equal(t, 2.0, *items[0].Quantity)

	assert.Equal(t, created.ItemID, items[1].ID)
	assert.Equal(t, "대파", items[1].Name)
	assert.Equal(t, "대", items[1].Unit)
	require.NotNil(t, items[1].ExpiryDate)
	assert.Equal(t, "2026-03-22", items[1].ExpiryDate.String())
	assert.Equal(t, 7, *items[1].DDay)
	assert.NotNil(t, items[1].MasterID)
}

func TestFridgeValidationAndOwnership(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{"quantity": -2}, "alice")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	env := helpers.ParseEnvelope(t, resp, nil)
	assert.Contains(t, env.Errors, "master_id or name is required")
	assert.Contains(t, env.Errors, "quantity must not be negative")

	resp = ta.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{"master_id": 9999}, "alice")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)

	resp = ta.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{"name": "tofu", "quantity": 1}, "alice")
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var created struct {
		ItemID string `json:"item_id"`
	}
	helpers.ParseEnvelope(t, resp, &created)

	resp = ta.do(t, http.MethodPut, "/api/fridge/"+created.ItemID, map[string]interface{}{"quantity": 5}, "bob")
	helpers.AssertStatus(t, resp, http.StatusForbidden)
	resp = ta.do(t, http.MethodDelete, "/api/fridge/"+created.ItemID, nil, "bob")
	helpers.AssertStatus(t, resp, http.StatusForbidden)

	var item models.FridgeItem
	require.NoError(t, ta.db.First(&item, "id = ?", created.ItemID).Error)
	assert.Equal(t, 1.0, *item.Quantity)

	resp = ta.do(t, http.MethodPut, "/api/fridge/"+created.ItemID, map[string]interface{}{"quantity": 5, "expiry_date": "2026-03-20"}, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	require.NoError(t, ta.db.First(&item, "id = ?", created.ItemID).Error)
	assert.Equal(t, 5.0, *item.Quantity)
	assert.Equal(t, "2026-03-20", item.ExpiryDate.String())

	resp = ta.do(t, http.MethodDelete, "/api/fridge/"+created.ItemID, nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	resp = ta.do(t, http.MethodDelete, "/api/fridge/"+created.ItemID, nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusNotFound)
}

func TestIngredientSearch(t *testing.T) {
	ta := newTestApp(t)
	helpers.CreateTestMaster(t, ta.db, "Green Onion", "대", 7)
	helpers.CreateTestMaster(t, ta.db, "Onion", "개", 30)
	helpers.CreateTestMaster(t, ta.db, "Garlic", "쪽", 14)

	var entries []models.IngredientMaster
	resp := ta.do(t, http.MethodGet, "/api/ingredients/master?q="+url.QueryEscape("oNiOn"), nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "Green Onion", entries[0].Name)
	assert.Equal(t, "Onion", entries[1].Name)
}

func TestCookingLogs(t *testing.T) {
	ta := newTestApp(t)
	aliceRecipe := ta.createRecipe(t, "alice", stewBody)
	bobRecipe := ta.createRecipe(t, "bob", stewBody)

	resp := ta.do(t, http.MethodPost, "/api/cooking-logs", map[string]interface{}{"recipe_id": bobRecipe, "status": "SUCCESS"}, "alice")
	helpers.AssertStatus(t, resp, http.StatusForbidden)

	resp = ta.do(t, http.MethodPost, "/api/cooking-logs", map[string]interface{}{"recipe_id": "missing", "status": "SUCCESS"}, "alice")
	helpers.AssertStatus(t, resp, http.StatusNotFound)

	resp = ta.do(t, http.MethodPost, "/api/cooking-logs", map[string]interface{}{"recipe_id": aliceRecipe, "status": "BURNT"}, "alice")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	env := helpers.ParseEnvelope(t, resp, nil)
	assert.Contains(t, env.Errors, "status must be one of [SUCCESS REGRET FAIL]")

	resp = ta.do(t, http.MethodPost, "/api/cooking-logs", map[string]interface{}{
		"recipe_id":   aliceRecipe,
		"status":      "REGRET",
		"lesson_note": "less salt",
		"cooked_at":   "2026-03-10T09:00:00Z",
	}, "alice")
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var created struct {
		LogID string `json:"log_id"`
	}
	helpers.ParseEnvelope(t, resp, &created)
	require.NotEmpty(t, created.LogID)

	var logs []services.CookingLogView
	resp = ta.do(t, http.MethodGet, "/api/cooking-logs?recipe_id="+aliceRecipe, nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "Kimchi Stew", logs[0].RecipeTitle)
	assert.Equal(t, "less salt", logs[0].LessonNote)

	resp = ta.do(t, http.MethodPut, "/api/cooking-logs/"+created.LogID, map[string]interface{}{"status": "success"}, "bob")
	helpers.AssertStatus(t, resp, http.StatusForbidden)
	resp = ta.do(t, http.MethodDelete, "/api/cooking-logs/"+created.LogID, nil, "bob")
	helpers.AssertStatus(t, resp, http.StatusForbidden)

	resp = ta.do(t, http.MethodPut, "/api/cooking-logs/"+created.LogID, map[string]interface{}{"status": "success"}, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)

	var history []services.LogSummary
	resp = ta.do(t, http.MethodGet, "/api/recipes/"+aliceRecipe+"/logs", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &history)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusSuccess, history[0].Status)

	resp = ta.do(t, http.MethodDelete, "/api/cooking-logs/"+created.LogID, nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
}

func TestDashboardEndpoint(t *testing.T) {
	ta := newTestApp(t)
	id := ta.createRecipe(t, "alice", stewBody)

	for _, log := range []map[string]interface{}{
		{"recipe_id": id, "status": "SUCCESS", "cooked_at": "2026-03-10T09:00:00Z"},
		{"recipe_id": id, "status": "FAIL", "cooked_at": "2026-03-12T09:00:00Z"},
		{"recipe_id": id, "status": "SUCCESS", "cooked_at": "2026-02-20T09:00:00Z"},
	} {
		resp := ta.do(t, http.MethodPost, "/api/cooking-logs", log, "alice")
		helpers.AssertStatus(t, resp, http.StatusCreated)
	}
	resp := ta.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{"name": "milk", "expiry_date": "2026-03-17"}, "alice")
	helpers.AssertStatus(t, resp, http.StatusCreated)

	var dashboard services.Dashboard
	resp = ta.do(t, http.MethodGet, "/api/dashboard", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &dashboard)

	assert.Equal(t, int64(2), dashboard.MonthlyCount)
	assert.Equal(t, int64(1), dashboard.PreviousMonthCount)
	require.NotNil(t, dashboard.MonthlySuccessRate)
	assert.Equal(t, 50, *dashboard.MonthlySuccessRate)
	require.Len(t, dashboard.ExpiringItems, 1)
	assert.Equal(t, 2, *dashboard.ExpiringItems[0].DDay)
	assert.True(t, dashboard.ExpiringItems[0].Alert)
	require.NotNil(t, dashboard.RecentLog)
	assert.Equal(t, models.StatusFail, dashboard.RecentLog.Status)
	assert.Equal(t, "Kimchi Stew", dashboard.RecentLog.RecipeTitle)

	var empty services.Dashboard
	resp = ta.do(t, http.MethodGet, "/api/dashboard", nil, "bob")
	helpers.ParseEnvelope(t, resp, &empty)
	assert.Zero(t, empty.MonthlyCount)
	assert.Nil(t, empty.MonthlySuccessRate)
	assert.Nil(t, empty.RecentLog)
}

func TestProfileSettingsAndAccountDeletion(t *testing.T) {
	ta := newTestApp(t)
	ta.createRecipe(t, "alice", stewBody)

	var settings models.UserSettings
	resp := ta.do(t, http.MethodGet, "/api/user/settings", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &settings)
	assert.Equal(t, models.DefaultExpiryAlertDays, settings.ExpiryAlertDays)
	assert.True(t, settings.NotificationEnabled)

	resp = ta.do(t, http.MethodPut, "/api/user/settings", map[string]interface{}{"expiry_alert_days": 400}, "alice")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)

	resp = ta.do(t, http.MethodPut, "/api/user/settings", map[string]interface{}{"expiry_alert_days": 5, "notification_enabled": false}, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &settings)
	assert.Equal(t, 5, settings.ExpiryAlertDays)
	assert.False(t, settings.NotificationEnabled)

	var profile models.User
	resp = ta.do(t, http.MethodPut, "/api/user/profile", map[string]interface{}{
		"nickname":      "Chef Alice",
		"profile_image": "https://img.example.com/a.png",
		"settings":      map[string]interface{}{"auto_export_enabled": true},
	}, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &profile)
	assert.Equal(t, "Chef Alice", profile.Nickname)
	require.NotNil(t, profile.Settings)
	assert.True(t, profile.Settings.AutoExportEnabled)
	assert.Equal(t, 5, profile.Settings.ExpiryAlertDays)

	resp = ta.do(t, http.MethodDelete, "/api/user", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusOK)

	var count int64
	require.NoError(t, ta.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, ta.db.Model(&models.User{}).Where("social_id = ?", "alice-id").Count(&count).Error)
	assert.Zero(t, count)
}

func TestExtractEndpoint(t *testing.T) {
	ta := newTestApp(t)

	var recipe extraction.Recipe
	resp := ta.do(t, http.MethodPost, "/api/recipes/extract", map[string]string{"url": "https://example.com/stew"}, "")
	helpers.AssertStatus(t, resp, http.StatusOK)
	helpers.ParseEnvelope(t, resp, &recipe)
	assert.Equal(t, "Stew", recipe.Title)
	assert.Equal(t, "https://example.com/stew", recipe.SourceURL)

	resp = ta.do(t, http.MethodPost, "/api/recipes/extract", map[string]string{"url": "  "}, "")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	env := helpers.ParseEnvelope(t, resp, nil)
	assert.Equal(t, "url is required", env.Error)

	ta.extractor.err = &extraction.Error{Kind: extraction.KindInput, Message: extraction.MsgNoTranscript}
	resp = ta.do(t, http.MethodPost, "/api/recipes/extract", map[string]string{"url": "https://youtu.be/x"}, "")
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	env = helpers.ParseEnvelope(t, resp, nil)
	assert.False(t, env.Success)
	assert.Equal(t, extraction.MsgNoTranscript, env.Error)
}

func TestExtractServerFailuresAndRateLimit(t *testing.T) {
	ta := newTestApp(t)
	ta.extractor.err = &extraction.Error{Kind: extraction.KindConfig, Message: extraction.MsgNotConfigured}

	resp := ta.do(t, http.MethodPost, "/api/recipes/extract", map[string]string{"url": "https://example.com/a"}, "")
	helpers.AssertStatus(t, resp, http.StatusInternalServerError)
	env := helpers.ParseEnvelope(t, resp, nil)
	assert.Equal(t, extraction.MsgNotConfigured, env.Error)

	ta.extractor.err = nil
	for i := 0; i < 2; i++ {
		resp = ta.do(t, http.MethodPost, "/api/recipes/extract", map[string]string{"url": "https://example.com/a"}, "")
		helpers.AssertStatus(t, resp, http.StatusOK)
	}
	resp = ta.do(t, http.MethodPost, "/api/recipes/extract", map[string]string{"url": "https://example.com/a"}, "")
	helpers.AssertStatus(t, resp, http.StatusTooManyRequests)
	assert.Equal(t, 3, ta.extractor.calls)
}

func TestUnknownRoute(t *testing.T) {
	ta := newTestApp(t)
	resp := ta.do(t, http.MethodGet, "/api/nothing-here", nil, "")
	helpers.AssertStatus(t, resp, http.StatusNotFound)
	env := helpers.ParseEnvelope(t, resp, nil)
	assert.False(t, env.Success)
}

func TestHealthAndMetrics(t *testing.T) {
	ta := newTestApp(t)

	// No Authorizer is configured in tests, so the service reports unhealthy
	resp := ta.do(t, http.MethodGet, "/health", nil, "")
	helpers.AssertStatus(t, resp, http.StatusServiceUnavailable)
	var health services.HealthCheckResult
	helpers.ParseJSON(t, resp, &health)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "ok", health.Database)
	assert.Equal(t, "unreachable", health.Authorizer)
	assert.Equal(t, "missing", health.LLM)

	resp = ta.do(t, http.MethodGet, "/api/recipes", nil, "")
	helpers.AssertStatus(t, resp, http.StatusUnauthorized)
	resp = ta.do(t, http.MethodGet, "/api/recipes/nope", nil, "alice")
	helpers.AssertStatus(t, resp, http.StatusNotFound)

	resp = ta.do(t, http.MethodGet, "/metrics", nil, "")
	helpers.AssertStatus(t, resp, http.StatusOK)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	metrics := string(body)
	assert.Contains(t, metrics, "requests_total")
	assert.Contains(t, metrics, `status_code="401"`)
	assert.Contains(t, metrics, `status_code="404"`)
}
