package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowWithinBurst(t *testing.T) {
	l := NewLimiter(1, 2)

	if !l.Allow("https://api.example.org/paper/1") {
		t.Error("first request should be allowed")
	}
	if !l.Allow("https://api.example.org/paper/2") {
		t.Error("second request should fit the burst")
	}
	if l.Allow("https://api.example.org/paper/3") {
		t.Error("third request should exceed the burst")
	}
}

func TestLimiterIsPerHost(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("https://a.example.org/x") {
		t.Error("host a should be allowed")
	}
	if !l.Allow("https://b.example.org/x") {
		t.Error("host b has its own budget")
	}
	if l.Allow("https://a.example.org/y") {
		t.Error("host a's budget is spent")
	}
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	if err := l.Wait(context.Background(), "https://api.example.org/x"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "https://api.example.org/x"); err == nil {
		t.Error("expected context error while throttled")
	}
}

func TestLimiterSetHostRate(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.SetHostRate("fast.example.org", 1000, 10)

	for i := 0; i < 5; i++ {
		if !l.Allow("https://fast.example.org/x") {
			t.Fatalf("request %d throttled despite the host override", i)
		}
	}
}

func TestLimiterRejectsBadURL(t *testing.T) {
	l := NewLimiter(1, 1)
	if l.Allow("://not-a-url") {
		t.Error("unparseable URL should not be allowed")
	}
}
