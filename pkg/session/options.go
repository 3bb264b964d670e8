package session

import (
	"log/slog"

	"github.com/goliatone/go-formtree/pkg/access"
	"github.com/goliatone/go-formtree/pkg/control"
	"github.com/goliatone/go-formtree/pkg/options"
)

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the base logger. The session adds its id and form id.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithStatus sets the initial workflow status.
func WithStatus(status string) Option {
	return func(s *Session) {
		s.status = status
	}
}

// WithUser sets the acting user.
func WithUser(user access.User) Option {
	return func(s *Session) {
		s.user = user
	}
}

// WithEvaluator replaces the rule evaluator, typically to decorate it.
func WithEvaluator(evaluator access.Evaluator) Option {
	return func(s *Session) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithOptionProvider sets the provider used for dynamic option sources.
func WithOptionProvider(provider options.Provider) Option {
	return func(s *Session) {
		s.provider = provider
	}
}

// WithKeyCache shares an attribute-key cache with the session's builder.
func WithKeyCache(cache *control.KeyCache) Option {
	return func(s *Session) {
		s.cache = cache
	}
}
