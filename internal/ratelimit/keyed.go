package ratelimit

import (
	"sync"
	"time"

	"github.com/garyellow/agri-advisor-go/internal/metrics"
)

// DailyWindow is the rolling window of KeyedConfig.DailyLimit.
const DailyWindow = 24 * time.Hour

// KeyedConfig configures a KeyedLimiter.
type KeyedConfig struct {
	// Name labels the limiter's metrics ("client", "line_user").
	Name string

	Burst      float64 // bucket capacity
	RefillRate float64 // tokens per second

	// DailyLimit adds a rolling 24h quota per key. 0 disables it.
	DailyLimit int

	CleanupPeriod time.Duration

	Metrics *metrics.Metrics // optional
}

// KeyedLimiter keeps one token bucket per key. Keys whose bucket has
// refilled and whose daily quota is untouched are evicted periodically.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry
	config  KeyedConfig
	stopCh  chan struct{}
	once    sync.Once
}

// keyedEntry's mutex makes the two-layer check-then-consume atomic.
type keyedEntry struct {
	mu      sync.Mutex
	limiter *Limiter
	daily   *Quota
}

// NewKeyedLimiter starts the cleanup loop; call Stop when done.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow reports whether a request for key may proceed and, if so, charges
// both the bucket and the daily quota. The empty key is never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	entry := kl.entry(key)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.daily.Check() || !entry.limiter.Check() {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
		return false
	}
	entry.daily.Consume()
	entry.limiter.Consume()
	return true
}

// RetryAfter estimates how long key must wait before Allow can succeed:
// the longer of the bucket refill and the daily quota decay.
func (kl *KeyedLimiter) RetryAfter(key string) time.Duration {
	entry, ok := kl.lookup(key)
	if !ok {
		return 0
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return max(entry.daily.Wait(), entry.limiter.Delay())
}

func (kl *KeyedLimiter) lookup(key string) (*keyedEntry, bool) {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	entry, ok := kl.entries[key]
	return entry, ok
}

func (kl *KeyedLimiter) entry(key string) *keyedEntry {
	kl.mu.RLock()
	entry, ok := kl.entries[key]
	kl.mu.RUnlock()
	if ok {
		return entry
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if entry, ok = kl.entries[key]; ok {
		return entry
	}
	entry = &keyedEntry{
		limiter: New(kl.config.Burst, kl.config.RefillRate),
		daily:   NewQuota(kl.config.DailyLimit, DailyWindow),
	}
	kl.entries[key] = entry
	return entry
}

// Available returns the tokens left for key; unseen keys have Burst.
func (kl *KeyedLimiter) Available(key string) float64 {
	entry, ok := kl.lookup(key)
	if !ok {
		return kl.config.Burst
	}
	return entry.limiter.Available()
}

// DailyRemaining returns the daily quota left for key, or -1 when disabled.
func (kl *KeyedLimiter) DailyRemaining(key string) int {
	if kl.config.DailyLimit <= 0 {
		return -1
	}

	entry, ok := kl.lookup(key)
	if !ok {
		return kl.config.DailyLimit
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.daily.Remaining()
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.cleanup()
		}
	}
}

func (kl *KeyedLimiter) cleanup() {
	kl.mu.Lock()
	for key, entry := range kl.entries {
		entry.mu.Lock()
		idle := entry.limiter.IsFull() && entry.daily.Used() == 0
		entry.mu.Unlock()
		if idle {
			delete(kl.entries, key)
		}
	}
	active := len(kl.entries)
	kl.mu.Unlock()

	kl.config.Metrics.SetRateLimiterKeys(kl.config.Name, active)
}

// Stop ends the cleanup loop. Safe to call more than once.
func (kl *KeyedLimiter) Stop() {
	kl.once.Do(func() { close(kl.stopCh) })
}
