package server

import (
	"context"
	"errors"
	"testing"
)

func TestShutdownHooks_RunInOrder(t *testing.T) {
	var order []string
	var hooks ShutdownHooks

	hooks.Add("first", func() error {
		order = append(order, "first")
		return nil
	})
	hooks.Add("second", func() error {
		order = append(order, "second")
		return nil
	})

	hooks.Execute(context.Background())

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("execution order = %v, want [first second]", order)
	}
}

func TestShutdownHooks_ContinueAfterFailure(t *testing.T) {
	var ran bool
	var hooks ShutdownHooks

	hooks.Add("failing", func() error { return errors.New("boom") })
	hooks.Add("after", func() error {
		ran = true
		return nil
	})

	hooks.Execute(context.Background())

	if !ran {
		t.Error("hook after a failure did not run")
	}
}

func TestShutdownHooks_IgnoresNil(t *testing.T) {
	var hooks ShutdownHooks
	hooks.Add("nil", nil)
	hooks.AddContext("nil-ctx", nil)

	// Must not panic
	hooks.Execute(context.Background())

	if len(hooks.hooks) != 0 {
		t.Errorf("nil hooks registered: %d", len(hooks.hooks))
	}
}
