// main.go
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

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/recipe-journal/internal/config"
	"github.com/localnerve/recipe-journal/internal/database"
	"github.com/localnerve/recipe-journal/internal/extraction"
	"github.com/localnerve/recipe-journal/internal/llm"
	"github.com/localnerve/recipe-journal/internal/logger"
	"github.com/localnerve/recipe-journal/internal/server"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/utils"
	"go.uber.org/zap"

	_ "github.com/localnerve/recipe-journal/docs/api" // Swagger docs
)

// @title Recipe Journal API
// @version 1.0.0
// @description Recipes, fridge inventory, cooking logs and URL recipe extraction
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/recipe-journal
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	// Connect to database
	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}

	if cfg.SeedCatalog {
		seeded, err := database.SeedIngredientMaster(db)
		if err != nil {
			zlog.Fatal("Failed to seed ingredient catalog", zap.Error(err))
		}
		if seeded > 0 {
			zlog.Info("Seeded ingredient catalog", zap.Int("count", seeded))
		}
	}

	httpClient := utils.NewHTTPClient(cfg.HTTPClientTimeout)
	llmClient := llm.NewClient(llm.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
	}, httpClient, zlog)
	if !llmClient.Configured() {
		zlog.Warn("LLM_API_KEY is not set, recipe extraction will fail")
	}

	pipeline := &extraction.Pipeline{
		Pages:       extraction.NewScraper(httpClient),
		Transcripts: extraction.NewYouTubeTranscripts(httpClient),
		Structurer:  &extraction.LLMStructurer{Client: llmClient},
		Logger:      zlog,
	}
	if cfg.RedisURL != "" {
		cache, err := extraction.NewRedisCache(cfg.RedisURL, cfg.ExtractCacheTTL)
		if err != nil {
			zlog.Fatal("Failed to configure extraction cache", zap.Error(err))
		}
		defer cache.Close()
		pipeline.Cache = cache
	}

	app := server.New(server.Deps{
		Config:    cfg,
		DB:        db,
		Logger:    zlog,
		Sessions:  services.NewAuthorizerValidator(cfg.AuthzURL, cfg.AuthzClientID),
		Extractor: pipeline,
		Calendar:  services.NewCalendar(cfg.Location()),
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		zlog.Info("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	zlog.Info("Starting server", zap.String("port", cfg.Port), zap.String("timezone", cfg.Timezone))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}

	zlog.Info("Server stopped")
}
