package worker

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// VendorNotifier delivers a dispatch notification to a vendor
type VendorNotifier interface {
	Notify(ctx context.Context, vendorPhone, vendorEmail, content string) error
}

// simulatedNotifier stands in for the real SMS/email gateway. It sleeps for
// a realistic delivery latency and fails a small fraction of the time so
// the retry path stays exercised.
type simulatedNotifier struct {
	successRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
}

// NewSimulatedNotifier creates a notifier with a 95% success rate and
// 50-200ms simulated latency
func NewSimulatedNotifier() VendorNotifier {
	return &simulatedNotifier{
		successRate: 0.95,
		minDelay:    50 * time.Millisecond,
		maxDelay:    200 * time.Millisecond,
	}
}

// Notify simulates delivering the notification
func (s *simulatedNotifier) Notify(ctx context.Context, vendorPhone, vendorEmail, content string) error {
	if vendorPhone == "" && vendorEmail == "" {
		return fmt.Errorf("vendor has no phone or email on file")
	}

	delay := s.minDelay + time.Duration(rand.Int63n(int64(s.maxDelay-s.minDelay)))
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if rand.Float64() > s.successRate {
		return fmt.Errorf("simulated gateway failure")
	}

	return nil
}
