package retry

import "testing"

func TestDefaultAlwaysRetries(t *testing.T) {
	p := Default()
	for attempt := 1; attempt <= 50; attempt++ {
		if !p.Wait(attempt) {
			t.Fatalf("Default policy stopped retrying at attempt %d", attempt)
		}
	}
}

func TestMaxAttemptsStopsAtBound(t *testing.T) {
	p := MaxAttempts(3, 0)

	if !p.Wait(1) {
		t.Error("attempt 1 should retry")
	}
	if !p.Wait(2) {
		t.Error("attempt 2 should retry")
	}
	if p.Wait(3) {
		t.Error("attempt 3 should stop (reached the bound)")
	}
	if p.Wait(4) {
		t.Error("attempt 4 should stay stopped")
	}
}
