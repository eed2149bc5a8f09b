package fxdebug

import "testing"

func TestAssertfHoldsSilently(t *testing.T) {
	Assertf(true, "never fires %d", 1)
}

func TestAssertfFailure(t *testing.T) {
	defer func() {
		r := recover()
		if Enabled && r == nil {
			t.Fatal("expected panic in debug build")
		}
		if !Enabled && r != nil {
			t.Fatalf("unexpected panic in release build: %v", r)
		}
	}()

	Assertf(false, "frame %d out of order", 3)
}
