package services

import (
	"context"
	"fmt"

	"github.com/localnerve/recipe-journal/internal/config"
	"github.com/localnerve/recipe-journal/internal/extraction"
	"github.com/localnerve/recipe-journal/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	LLM          string            `json:"llm"`
	Cache        string            `json:"cache,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, detailKey string, err error) {
	r.Status = "unhealthy"
	r.Details[detailKey] = err.Error()
	msg := fmt.Sprintf("%s: %v", component, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	zap.L().Warn("health check failed", zap.String("component", component), zap.Error(err))
}

// HealthCheck checks the database, the Authorizer, the optional cache and
// whether a language-model credential is configured. A missing credential
// is reported but does not make the service unhealthy.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database connection", "database_error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("database ping", "database_ping_error", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check Authorizer connectivity
	if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
		result.Authorizer = "unreachable"
		result.fail("authorizer ping", "authorizer_error", err)
	} else {
		result.Authorizer = "ok"
		result.Details["authorizer_url"] = cfg.AuthzURL
	}

	if cfg.RedisURL != "" {
		if err := pingCache(ctx, cfg.RedisURL); err != nil {
			result.Cache = "unreachable"
			result.fail("cache ping", "cache_error", err)
		} else {
			result.Cache = "ok"
		}
	}

	// The model API is optional for everything but extraction, so it never fails the check
	switch {
	case !cfg.LLMConfigured():
		result.LLM = "missing"
	case utils.PingLLM(ctx, cfg.LLMBaseURL) != nil:
		result.LLM = "unreachable"
		result.Details["llm_model"] = cfg.LLMModel
	default:
		result.LLM = "configured"
		result.Details["llm_model"] = cfg.LLMModel
	}

	if result.Status == "healthy" {
		zap.L().Debug("health check passed")
	}

	return result
}

// pingCache sends a Redis PING through the extraction cache client
func pingCache(ctx context.Context, redisURL string) error {
	cache, err := extraction.NewRedisCache(redisURL, 0)
	if err != nil {
		return err
	}
	defer cache.Close()

	ctx, cancel := context.WithTimeout(ctx, utils.PingTimeout)
	defer cancel()
	return cache.Ping(ctx)
}
