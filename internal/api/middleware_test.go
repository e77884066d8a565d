package api

import (
	"testing"
	"time"
)

func TestIPLimiterSweepDropsIdleEntries(t *testing.T) {
	l := newIPLimiter(100, time.Minute)
	l.getLimiter("10.0.0.1")
	l.getLimiter("10.0.0.2")

	l.mu.Lock()
	l.limiters["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	l.mu.Unlock()

	l.sweep(time.Now().Add(-limiterIdleTTL))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.limiters["10.0.0.1"]; exists {
		t.Error("idle entry survived the sweep")
	}
	if _, exists := l.limiters["10.0.0.2"]; !exists {
		t.Error("active entry was swept")
	}
}

func TestIPLimiterReusesBucketPerIP(t *testing.T) {
	l := newIPLimiter(100, time.Minute)
	a := l.getLimiter("10.0.0.1")
	b := l.getLimiter("10.0.0.1")
	if a != b {
		t.Error("same IP got two different buckets")
	}
	if c := l.getLimiter("10.0.0.2"); c == a {
		t.Error("different IPs share a bucket")
	}
}
