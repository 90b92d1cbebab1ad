package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/proposal-api/internal/infrastructure/database"
	"jan-server/services/proposal-api/internal/infrastructure/database/databasetest"
)

func TestAutoMigrateSchemasCreatesRegisteredTables(t *testing.T) {
	db := databasetest.Open(t)

	require.NotEmpty(t, database.SchemaRegistry)
	for _, table := range []string{"accounts", "account_usages", "proposals", "token_usages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestAutoMigrateSchemasReportsFailure(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:closed_db?mode=memory"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Error(t, database.AutoMigrateSchemas(db))
}
