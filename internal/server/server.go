// server.go
//
// Recipe journal service with fridge tracking and URL recipe extraction
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of recipe-journal.
// recipe-journal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// recipe-journal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with recipe-journal.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package server assembles the Fiber application: middleware, metrics,
// API docs and every route.
package server

import (
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/recipe-journal/internal/config"
	"github.com/localnerve/recipe-journal/internal/handlers"
	"github.com/localnerve/recipe-journal/internal/middleware"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the application is built from
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	Sessions  services.SessionValidator
	Extractor handlers.Extractor
	Calendar  services.Calendar

	// Registry receives the HTTP metrics; the default registerer when nil
	Registry prometheus.Registerer
}

// New builds the application
func New(deps Deps) *fiber.App {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	cookie := deps.Config.AuthzCookieName

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: deps.Config.IsProduction(),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())

	// Prometheus metrics, outside the request logger so error statuses are
	// recorded after the error handler has written them
	prom := fiberprometheus.NewWithRegistry(registry, "recipe-journal", "http", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	app.Use(middleware.RequestLogger(log))
	app.Use(compress.New())

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	health := &handlers.HealthHandler{DB: deps.DB, Config: deps.Config}
	app.Get("/health", health.Health)

	recipes := &handlers.RecipeHandler{DB: deps.DB}
	extract := &handlers.ExtractHandler{Extractor: deps.Extractor}
	fridge := &handlers.FridgeHandler{DB: deps.DB, Calendar: deps.Calendar}
	logs := &handlers.CookingLogHandler{DB: deps.DB}
	dashboard := &handlers.DashboardHandler{DB: deps.DB, Calendar: deps.Calendar}
	users := &handlers.UserHandler{DB: deps.DB}
	auth := &handlers.AuthHandler{DB: deps.DB}

	authUser := middleware.AuthUser(deps.Sessions, deps.DB, cookie)

	api := app.Group("/api")

	// Public routes
	api.Post("/recipes/extract", middleware.RateLimit(deps.Config.ExtractRateLimit, time.Minute), extract.ExtractRecipe)
	api.Get("/auth/check", middleware.OptionalAuth(deps.Sessions, deps.DB, cookie), auth.Check)

	// Owner-scoped routes
	api.Post("/auth/signup", authUser, auth.Signup)

	api.Get("/recipes", authUser, recipes.ListRecipes)
	api.Post("/recipes", authUser, recipes.CreateRecipe)
	api.Get("/recipes/:id", authUser, recipes.GetRecipe)
	api.Put("/recipes/:id", authUser, recipes.UpdateRecipe)
	api.Delete("/recipes/:id", authUser, recipes.DeleteRecipe)
	api.Get("/recipes/:id/steps", authUser, recipes.GetRecipeSteps)
	api.Get("/recipes/:id/logs", authUser, recipes.GetRecipeLogs)

	api.Get("/fridge", authUser, fridge.ListFridge)
	api.Post("/fridge", authUser, fridge.AddFridgeItem)
	api.Put("/fridge/:id", authUser, fridge.UpdateFridgeItem)
	api.Delete("/fridge/:id", authUser, fridge.DeleteFridgeItem)
	api.Get("/ingredients/master", authUser, fridge.SearchIngredients)

	api.Get("/cooking-logs", authUser, logs.ListCookingLogs)
	api.Post("/cooking-logs", authUser, logs.CreateCookingLog)
	api.Put("/cooking-logs/:id", authUser, logs.UpdateCookingLog)
	api.Delete("/cooking-logs/:id", authUser, logs.DeleteCookingLog)

	api.Get("/dashboard", authUser, dashboard.GetDashboard)

	api.Get("/user/profile", authUser, users.GetProfile)
	api.Put("/user/profile", authUser, users.UpdateProfile)
	api.Get("/user/settings", authUser, users.GetSettings)
	api.Put("/user/settings", authUser, users.UpdateSettings)
	api.Delete("/user", authUser, users.DeleteAccount)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return &types.CustomError{
			Code:    fiber.StatusNotFound,
			Message: "Resource not found",
			Type:    types.ErrTypeNotFound,
			Detail:  c.OriginalURL(),
		}
	})

	return app
}
