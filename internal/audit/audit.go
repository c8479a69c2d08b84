package audit

import (
	"context"
	"sync"
	"time"

	"github.com/sdko-org/lawchat-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Logger appends one ChatLog row per resolved request. Writes are
// best-effort: they run on their own goroutine with a detached context,
// so neither a slow store nor request cancellation can touch the
// response path. A failed write is logged and dropped.
type Logger struct {
	db           *gorm.DB
	log          *logrus.Entry
	writeTimeout time.Duration
	wg           sync.WaitGroup
}

func NewLogger(logger *logrus.Logger, db *gorm.DB) *Logger {
	return &Logger{
		db:           db,
		log:          logger.WithField("component", "audit_logger"),
		writeTimeout: 2 * time.Second,
	}
}

// Record submits the write and returns immediately.
func (l *Logger) Record(rec models.ChatLog) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), l.writeTimeout)
		defer cancel()

		if err := l.db.WithContext(ctx).Create(&rec).Error; err != nil {
			l.log.WithError(err).WithFields(logrus.Fields{
				"source":    rec.Source,
				"client_ip": rec.ClientIP,
			}).Warn("Failed to save chat log")
		}
	}()
}

// Drain waits for in-flight writes, up to ctx. Used at shutdown so
// already-submitted records get their bounded write attempt.
func (l *Logger) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
