package wizard

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitGuard_ConcurrentInvocations(t *testing.T) {
	var guard SubmitGuard
	var calls atomic.Int64

	save := func() error {
		calls.Add(1)
		time.Sleep(100 * time.Millisecond)
		return nil
	}

	const attempts = 10
	var wg sync.WaitGroup
	var ran atomic.Int64

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := guard.Do(save); ok {
				ran.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("save ran %d times, want exactly 1", got)
	}
	if got := ran.Load(); got != 1 {
		t.Errorf("Do reported ran=true %d times, want exactly 1", got)
	}
}

func TestSubmitGuard_RearmsAfterFailure(t *testing.T) {
	var guard SubmitGuard
	failure := errors.New("save failed")

	ran, err := guard.Do(func() error { return failure })
	if !ran {
		t.Fatal("first invocation should run")
	}
	if !errors.Is(err, failure) {
		t.Fatalf("got err %v, want the save failure", err)
	}

	// A failed save must not leave the guard latched
	ran, err = guard.Do(func() error { return nil })
	if !ran {
		t.Error("guard should re-arm after a failed save")
	}
	if err != nil {
		t.Errorf("unexpected error on retry: %v", err)
	}
}

func TestSubmitGuard_SkippedInvocationIsSilent(t *testing.T) {
	var guard SubmitGuard

	started := make(chan struct{})
	release := make(chan struct{})

	go guard.Do(func() error {
		close(started)
		<-release
		return nil
	})

	<-started

	ran, err := guard.Do(func() error {
		t.Error("second save must not run while first is in flight")
		return nil
	})
	if ran {
		t.Error("Do reported ran=true for a skipped invocation")
	}
	if err != nil {
		t.Errorf("skipped invocation returned error %v, want nil", err)
	}

	close(release)
}
