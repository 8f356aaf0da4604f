package model

import (
	"errors"
	"testing"
	"time"
)

func TestNewLookup(t *testing.T) {
	t.Parallel()

	t.Run("extracts the number and keeps the input", func(t *testing.T) {
		t.Parallel()

		l := NewLookup("xKB5001234y")
		if l.Input != "xKB5001234y" {
			t.Errorf("expected input to be kept, got %q", l.Input)
		}
		if l.Current() != "xKB5001234y" {
			t.Errorf("expected Current() to return the input, got %q", l.Current())
		}
		if l.Number != "5001234" {
			t.Errorf("expected number 5001234, got %q", l.Number)
		}
		if l.StartedAt.IsZero() {
			t.Error("expected StartedAt to be set")
		}
		if l.Chain == nil {
			t.Error("expected Chain to be initialized")
		}
	})
}

func TestLookupSetChain(t *testing.T) {
	t.Parallel()

	t.Run("replaces is the last entry", func(t *testing.T) {
		t.Parallel()

		l := NewLookup("KB5001234")
		l.SetChain([]string{"5001000", "4999999"})
		if l.Replaces != "KB4999999" {
			t.Errorf("expected KB4999999, got %q", l.Replaces)
		}
	})

	t.Run("position wins over numeric order", func(t *testing.T) {
		t.Parallel()

		l := NewLookup("KB5001234")
		l.SetChain([]string{"1000000", "9000000", "5000000"})
		if l.Replaces != "KB5000000" {
			t.Errorf("expected KB5000000, got %q", l.Replaces)
		}
	})

	t.Run("empty chain clears replaces", func(t *testing.T) {
		t.Parallel()

		l := NewLookup("KB5001234")
		l.SetChain([]string{"5001000"})
		l.SetChain(nil)
		if l.Replaces != "" {
			t.Errorf("expected empty replaces, got %q", l.Replaces)
		}
	})
}

func TestLookupCompletion(t *testing.T) {
	t.Parallel()

	t.Run("succeeded after chain is set", func(t *testing.T) {
		t.Parallel()

		l := NewLookup("KB5001234")
		if l.Succeeded() {
			t.Error("expected new lookup not to have succeeded")
		}
		l.SetChain([]string{"4999999"})
		l.Complete()
		if !l.Succeeded() {
			t.Error("expected lookup to have succeeded")
		}
		if l.Elapsed() < 0 {
			t.Errorf("expected non-negative elapsed time, got %v", l.Elapsed())
		}
	})

	t.Run("fail records the error", func(t *testing.T) {
		t.Parallel()

		l := NewLookup("KB5001234")
		l.Fail(errors.New("boom"))
		if l.Error != "boom" {
			t.Errorf("expected error 'boom', got %q", l.Error)
		}
		if l.CompletedAt.IsZero() {
			t.Error("expected CompletedAt to be set")
		}
		if l.Succeeded() {
			t.Error("expected failed lookup not to have succeeded")
		}
	})

	t.Run("elapsed is zero before completion", func(t *testing.T) {
		t.Parallel()

		l := &Lookup{StartedAt: time.Now()}
		if l.Elapsed() != 0 {
			t.Errorf("expected zero elapsed, got %v", l.Elapsed())
		}
	})
}
