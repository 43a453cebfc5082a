package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/recipe-journal/internal/config"
	"github.com/localnerve/recipe-journal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestSeedIngredientMasterOnlyWhenEmpty(t *testing.T) {
	db := openMemory(t)

	inserted, err := SeedIngredientMaster(db)
	require.NoError(t, err)
	assert.Greater(t, inserted, 0)

	var greenOnion models.IngredientMaster
	require.NoError(t, db.Where("name = ?", "대파").First(&greenOnion).Error)
	assert.Equal(t, 7, greenOnion.BaseShelfLife)
	assert.NotEmpty(t, greenOnion.DefaultUnit)

	again, err := SeedIngredientMaster(db)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestLoadCatalogUniqueNames(t *testing.T) {
	entries, err := LoadCatalog()
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.Name], "duplicate catalog entry %s", e.Name)
		seen[e.Name] = true
		assert.GreaterOrEqual(t, e.BaseShelfLife, 0)
	}
}

func TestDialectorSelection(t *testing.T) {
	cfg := &config.Config{DBType: "sqlite-pure", DBDatabase: ":memory:"}
	d, err := Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	cfg.DBType = "oracle"
	_, err = Dialector(cfg)
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "app", DBPassword: "secret", DBHost: "db", DBPort: "3306", DBDatabase: "recipes"}
	dsn := MySQLDSN(cfg)
	assert.Contains(t, dsn, "app:secret@tcp(db:3306)/recipes")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("SILENT"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}
