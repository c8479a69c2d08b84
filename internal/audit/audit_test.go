package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sdko-org/lawchat-api/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ChatLog{}))
	return db
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func strPtr(s string) *string { return &s }

func TestRecordPersistsChatLog(t *testing.T) {
	db := testDB(t)
	auditLog := NewLogger(quietLogger(), db)

	now := time.Now().UTC()
	auditLog.Record(models.ChatLog{
		Question:       "ဥပဒေအရ ခိုးယူမှုအပြစ်ဒဏ်",
		Answer:         strPtr("X"),
		Source:         models.SourceAI,
		Timestamp:      now,
		AnsweredAt:     &now,
		ClientIP:       "10.0.0.1",
		ResponseTimeMS: 12,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, auditLog.Drain(ctx))

	var saved models.ChatLog
	require.NoError(t, db.First(&saved).Error)
	assert.Equal(t, models.SourceAI, saved.Source)
	assert.Equal(t, "10.0.0.1", saved.ClientIP)
	assert.NotNil(t, saved.Answer)
	assert.NotZero(t, saved.ID)
	assert.NotZero(t, saved.CreatedAt)
}

func TestRecordWithNullAnswer(t *testing.T) {
	db := testDB(t)
	auditLog := NewLogger(quietLogger(), db)

	auditLog.Record(models.ChatLog{
		Question:  "question",
		Answer:    nil,
		Source:    models.SourceError,
		Timestamp: time.Now(),
		ClientIP:  "10.0.0.1",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, auditLog.Drain(ctx))

	var saved models.ChatLog
	require.NoError(t, db.First(&saved).Error)
	assert.Nil(t, saved.Answer)
}

// A persistence outage must not panic or block the caller.
func TestRecordSurvivesStoreFailure(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.ChatLog{}))

	auditLog := NewLogger(quietLogger(), db)
	done := make(chan struct{})
	go func() {
		auditLog.Record(models.ChatLog{
			Question:  "question",
			Source:    models.SourceFallback,
			Timestamp: time.Now(),
			ClientIP:  "10.0.0.1",
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked the caller")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	assert.NoError(t, auditLog.Drain(ctx))
}

func TestDrainTimesOut(t *testing.T) {
	auditLog := NewLogger(quietLogger(), testDB(t))
	auditLog.wg.Add(1) // simulate a write that never finishes
	defer auditLog.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, auditLog.Drain(ctx))
}
