package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/apierror"

	"github.com/gin-gonic/gin"
)

// rateEntry tracks request counts per IP within a sliding window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

type rateMap struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
}

func newRateMap() *rateMap {
	m := &rateMap{entries: make(map[string]*rateEntry)}
	go m.purgeLoop()
	return m
}

func (m *rateMap) entry(ip string) *rateEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[ip]
	if !ok {
		e = &rateEntry{}
		m.entries[ip] = e
	}
	return e
}

// purgeLoop drops expired entries so IPs that never return do not
// accumulate forever.
func (m *rateMap) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		m.mu.Lock()
		for ip, e := range m.entries {
			e.mu.Lock()
			if now.After(e.windowEnd) {
				delete(m.entries, ip)
			}
			e.mu.Unlock()
		}
		m.mu.Unlock()
	}
}

// RateLimiter returns a sliding-window per-IP rate limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	m := newRateMap()
	return func(c *gin.Context) {
		e := m.entry(c.ClientIP())

		e.mu.Lock()
		defer e.mu.Unlock()

		now := time.Now()
		if now.After(e.windowEnd) {
			e.count = 0
			e.windowEnd = now.Add(window)
		}

		e.count++
		if e.count > limit {
			c.Header("Retry-After", e.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return RateLimiter(20, time.Minute)
}
