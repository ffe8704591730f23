package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if rl.Limit("key") {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	if !rl.Limit("key") {
		t.Error("4th attempt should be limited")
	}
	if rl.Limit("other") {
		t.Error("different key must not share the limit")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	if rl.Limit("key") {
		t.Fatal("first attempt should pass")
	}
	if !rl.Limit("key") {
		t.Fatal("second attempt should be limited")
	}

	time.Sleep(20 * time.Millisecond)
	if rl.Limit("key") {
		t.Error("attempt after window expiry should pass")
	}
}
