package persisterr

import (
	"errors"
	"sync"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(NotFound, "users/%s missing", "u1")
	if err.Code != NotFound {
		t.Errorf("Code = %v, want NotFound", err.Code)
	}
	want := "not-found: users/u1 missing"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorIs(t *testing.T) {
	err := New(Conflict, "tx already open")
	sentinel := New(Conflict, "")

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should match on Code")
	}

	other := New(Internal, "")
	if errors.Is(err, other) {
		t.Error("errors.Is should not match different codes")
	}
}

func TestSetLastClearPerGoroutine(t *testing.T) {
	Clear()
	if _, ok := Last(); ok {
		t.Fatal("expected no last error before Set")
	}

	Set(InvalidArgument, "bad rule tree")
	got, ok := Last()
	if !ok {
		t.Fatal("expected a last error after Set")
	}
	if got.Code != InvalidArgument {
		t.Errorf("Code = %v, want InvalidArgument", got.Code)
	}

	Clear()
	if _, ok := Last(); ok {
		t.Error("expected no last error after Clear")
	}
}

func TestLastIsolatedPerGoroutine(t *testing.T) {
	var wg sync.WaitGroup
	codes := []Code{NotFound, InvalidArgument, Serialization, Conflict, Internal}

	for _, code := range codes {
		wg.Add(1)
		go func(code Code) {
			defer wg.Done()
			Set(code, "goroutine-local")
			got, ok := Last()
			if !ok || got.Code != code {
				t.Errorf("goroutine with code %v saw %v (ok=%v)", code, got, ok)
			}
			Clear()
		}(code)
	}
	wg.Wait()
}
