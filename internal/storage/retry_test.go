package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestRetryOnBusy(t *testing.T) {
	calls := 0
	err := RetryOnBusy(func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: database is locked", ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryOnBusy_StopsOnOtherErrors(t *testing.T) {
	tests := []error{
		fmt.Errorf("%w: duplicate", ErrConflict),
		context.Canceled,
		errors.New("syntax error"),
	}
	for _, want := range tests {
		calls := 0
		err := RetryOnBusy(func() error {
			calls++
			return want
		})
		if !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
		if calls != 1 {
			t.Errorf("%v: expected 1 call, got %d", want, calls)
		}
	}
}

func TestRetryOnBusy_GivesUp(t *testing.T) {
	calls := 0
	err := RetryOnBusy(func() error {
		calls++
		return fmt.Errorf("%w: busy", ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
	if calls != busyRetries {
		t.Errorf("expected %d calls, got %d", busyRetries, calls)
	}
}
