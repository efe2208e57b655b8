package guard

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Cooldown rejects a key seen again within its window.
type Cooldown struct {
	window time.Duration
	now    func() time.Time

	entries sync.Map // map[string]time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewCooldown starts a cooldown with background cleanup. Call Stop() on shutdown.
func NewCooldown(window, cleanupInterval time.Duration) *Cooldown {
	c := &Cooldown{
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go c.cleanup(cleanupInterval)

	return c
}

// Stop terminates the background cleanup goroutine.
func (c *Cooldown) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Allow records key and reports whether it was not already seen within the window.
func (c *Cooldown) Allow(key string) bool {
	now := c.now()
	for {
		prev, loaded := c.entries.LoadOrStore(key, now)
		if !loaded {
			return true
		}
		if now.Sub(prev.(time.Time)) < c.window {
			return false
		}
		if c.entries.CompareAndSwap(key, prev, now) {
			return true
		}
	}
}

func (c *Cooldown) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := c.now()
			c.entries.Range(func(key, value any) bool {
				if now.Sub(value.(time.Time)) >= c.window {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

// Key builds "<scope>_<md5 of parts joined by |>" for a session.
func Key(sessionID, scope string, parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))

	return sessionID + ":" + scope + "_" + hex.EncodeToString(sum[:])
}
