package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks request budgets per client identifier: a token bucket
// with burst=cap refilling over the window, created lazily per client.
// State lives in process memory only; a restart resets all counters and
// horizontally scaled deployments would need a shared counting store.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	window  time.Duration
}

func New(requests int, window time.Duration) *Limiter {
	return &Limiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		window:  window,
	}
}

// Allow reports whether clientID may make a request now, consuming one
// token if so. The map lookup and the token check are atomic per
// client, so concurrent requests from one client cannot both slip past
// the cap.
func (l *Limiter) Allow(clientID string) bool {
	return l.allowAt(clientID, time.Now())
}

func (l *Limiter) allowAt(clientID string, now time.Time) bool {
	l.mu.Lock()
	c, exists := l.clients[clientID]
	if !exists {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[clientID] = c
	}
	c.lastSeen = now
	defer l.mu.Unlock()
	return c.limiter.AllowN(now, 1)
}

// Start sweeps idle client entries until ctx is cancelled. Entries
// unseen for three windows have a full bucket again, so dropping them
// changes nothing.
func (l *Limiter) Start(ctx context.Context, logger *logrus.Logger) {
	log := logger.WithField("component", "rate_limiter")
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := l.evictIdle(time.Now()); evicted > 0 {
				log.WithField("evicted", evicted).Debug("Evicted idle rate-limit clients")
			}
		case <-ctx.Done():
			log.Debug("Stopping rate-limiter sweep")
			return
		}
	}
}

func (l *Limiter) evictIdle(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for id, c := range l.clients {
		if now.Sub(c.lastSeen) > 3*l.window {
			delete(l.clients, id)
			evicted++
		}
	}
	return evicted
}
