// Package server holds process-lifecycle helpers for the proxy binary.
package server

import (
	"context"

	"github.com/rs/zerolog/log"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// ShutdownHooks collects cleanup functions to run when the process
// stops. Hooks run in registration order and a failing hook never
// prevents the remaining ones from running.
type ShutdownHooks struct {
	hooks []hook
}

// AddContext registers a hook that receives the shutdown context.
func (s *ShutdownHooks) AddContext(name string, fn func(context.Context) error) {
	if fn == nil {
		log.Warn().Str("hook", name).Msg("ignoring nil shutdown hook")
		return
	}
	s.hooks = append(s.hooks, hook{name: name, fn: fn})
}

// Add registers a hook that needs no context.
func (s *ShutdownHooks) Add(name string, fn func() error) {
	if fn == nil {
		log.Warn().Str("hook", name).Msg("ignoring nil shutdown hook")
		return
	}
	s.AddContext(name, func(context.Context) error { return fn() })
}

// Execute runs all registered hooks in order, logging each outcome.
func (s *ShutdownHooks) Execute(ctx context.Context) {
	for _, h := range s.hooks {
		l := log.With().Str("hook", h.name).Logger()
		if err := h.fn(ctx); err != nil {
			l.Warn().Err(err).Msg("shutdown hook failed")
		} else {
			l.Info().Msg("shutdown hook complete")
		}
	}
}
