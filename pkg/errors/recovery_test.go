package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "RenderFit")
		panic("nil figure")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "RenderFit" {
		t.Errorf("Expected operation 'RenderFit', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if got, want := panicErr.Error(), "panic in RenderFit: nil figure"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// TestRecover_WithoutPanic tests the Recover function when no panic occurs
func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "RenderFit")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	original := fmt.Errorf("write failed")
	testFunc := func() (err error) {
		defer Recover(&err, "RenderFit")
		err = original
		panic("late panic")
	}

	err := testFunc()
	if !errors.Is(err, original) {
		t.Fatalf("Expected original error to be preserved, got %v", err)
	}
	if !strings.Contains(err.Error(), "late panic") {
		t.Errorf("Expected panic value in message, got %q", err.Error())
	}
}

func TestSafeExecute(t *testing.T) {
	sentinel := fmt.Errorf("plain failure")

	tests := []struct {
		name      string
		fn        func() error
		wantPanic bool
		wantErr   error
	}{
		{name: "success", fn: func() error { return nil }},
		{name: "function error", fn: func() error { return sentinel }, wantErr: sentinel},
		{name: "string panic", fn: func() error { panic("boom") }, wantPanic: true},
		{name: "error panic", fn: func() error { panic(sentinel) }, wantPanic: true, wantErr: sentinel},
		{name: "int panic", fn: func() error { panic(42) }, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("panel", tt.fn)

			var panicErr *PanicError
			if got := errors.As(err, &panicErr); got != tt.wantPanic {
				t.Fatalf("As(*PanicError) = %v, want %v (err=%v)", got, tt.wantPanic, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v in chain, got %v", tt.wantErr, err)
			}
			if !tt.wantPanic && tt.wantErr == nil && err != nil {
				t.Errorf("Expected nil error, got %v", err)
			}
		})
	}
}

func TestPanicError_String(t *testing.T) {
	pe := NewPanicError("EllipseTrace", "bad basis")
	s := pe.String()
	if !strings.Contains(s, "panic in EllipseTrace: bad basis") {
		t.Errorf("String() missing summary: %q", s)
	}
	if !strings.Contains(s, "Stack trace:") {
		t.Errorf("String() missing stack trace section: %q", s)
	}
}
