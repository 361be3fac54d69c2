package database

import (
	"fmt"

	"tradejournal/src/model"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sirupsen/logrus"
)

// ReadOnlyDB is an optional replica connection used for statistics reads.
// The database user for this connection should have SELECT-only permissions.
var ReadOnlyDB *gorm.DB

// InitReadOnlyDB initializes the replica connection when DATABASE_URL_READONLY
// is set. It does not run any migrations.
func InitReadOnlyDB() error {
	config := GetConfig()
	if config.DatabaseURLReadOnly == "" {
		logrus.Info("[ReadOnlyDB] no replica configured, reads go to MainDB")
		return nil
	}

	dial, err := dialector(config.Driver, config.DatabaseURLReadOnly)
	if err != nil {
		return err
	}

	db, err := gorm.Open(dial,
		&gorm.Config{
			PrepareStmt:    true,
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to connect to ReadOnlyDB: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from ReadOnlyDB: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping ReadOnlyDB: %w", err)
	}

	// The replica must already carry the journal schema.
	var count int64
	if err := db.Model(&model.Trade{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to access trades on ReadOnlyDB: %w", err)
	}

	logrus.WithFields(map[string]interface{}{"count": count}).Info("[ReadOnlyDB] trades table reachable")

	ReadOnlyDB = db

	return nil
}

// ReadDB returns the replica when one is configured, MainDB otherwise.
func ReadDB() *gorm.DB {
	if ReadOnlyDB != nil {
		return ReadOnlyDB
	}
	return MainDB
}
