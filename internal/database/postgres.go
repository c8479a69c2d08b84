package database

import (
	"fmt"
	"time"

	"github.com/sdko-org/lawchat-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

// dailyStatsView aggregates chat logs by day and source. Derived data
// only; nothing in the write path depends on it.
const dailyStatsView = `
CREATE OR REPLACE VIEW chat_log_daily_stats AS
SELECT date_trunc('day', timestamp)          AS day,
       source                                AS source,
       count(*)                              AS count,
       avg(response_time_ms)                 AS avg_response_time_ms,
       count(answer)                         AS answered_count
FROM chat_logs
GROUP BY date_trunc('day', timestamp), source`

var sourceCheck = []string{
	`ALTER TABLE chat_logs DROP CONSTRAINT IF EXISTS chk_chat_logs_source`,
	`ALTER TABLE chat_logs ADD CONSTRAINT chk_chat_logs_source
CHECK (source IN ('ai', 'dataset', 'fallback', 'error'))`,
}

func NewPostgresDB(logger *logrus.Logger, cfg PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	log := logger.WithFields(logrus.Fields{
		"component": "database",
		"host":      cfg.Host,
		"database":  cfg.DBName,
	})

	var db *gorm.DB
	var err error
	const maxRetries = 5
	retryDelay := 2 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}

		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   err,
		}).Warn("Database connection failed")

		if attempt < maxRetries {
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	if err != nil {
		log.WithError(err).Error("Failed to connect to database after retries")
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := db.AutoMigrate(&models.ChatLog{}); err != nil {
		log.WithError(err).Error("Database migration failed")
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	for _, stmt := range sourceCheck {
		if err := db.Exec(stmt).Error; err != nil {
			log.WithError(err).Error("Source check constraint failed")
			return nil, fmt.Errorf("source check constraint failed: %w", err)
		}
	}

	if err := db.Exec(dailyStatsView).Error; err != nil {
		log.WithError(err).Error("Daily stats view creation failed")
		return nil, fmt.Errorf("daily stats view creation failed: %w", err)
	}

	log.Info("Database connection established")
	return db, nil
}
