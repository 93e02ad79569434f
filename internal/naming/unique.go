package naming

import (
	"context"
	"fmt"
	"math/rand/v2"

	apperrors "github.com/charlesng35/botspace/pkg/errors"
)

const (
	// DefaultMaxAttempts bounds how many suffixed candidates are tried.
	DefaultMaxAttempts = 5

	suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffixLength   = 4
	fallbackBase   = "workspace"
)

// ErrNameUnavailable is returned when no free name was found within the attempt budget.
var ErrNameUnavailable = apperrors.ErrNameUnavailable

// ReservedNames collide with top-level application routes.
var ReservedNames = []string{"/", "affiliate", "auth", "api", "chats", "not-found", "error", "onboarding"}

// ExistsFunc reports whether name is already taken.
type ExistsFunc func(ctx context.Context, name string) (bool, error)

// Generator derives unique URL-safe names from display names.
type Generator struct {
	exists      ExistsFunc
	reserved    map[string]struct{}
	maxAttempts int
	suffix      func() string
}

// Option customises a Generator.
type Option func(*Generator)

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithSuffix overrides the random suffix source.
func WithSuffix(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.suffix = fn
		}
	}
}

// NewGenerator builds a Generator that checks candidates with exists.
func NewGenerator(exists ExistsFunc, opts ...Option) *Generator {
	g := &Generator{
		exists:      exists,
		reserved:    make(map[string]struct{}, len(ReservedNames)),
		maxAttempts: DefaultMaxAttempts,
		suffix:      randomSuffix,
	}
	for _, name := range ReservedNames {
		g.reserved[name] = struct{}{}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the slug of displayName when it is free, otherwise the slug with a
// "-XXXX" suffix. The first candidate plus maxAttempts suffixed ones are checked.
func (g *Generator) Generate(ctx context.Context, displayName string) (string, error) {
	base := Slugify(displayName)
	if base == "" {
		base = fallbackBase
	}

	candidate := base
	for attempt := 0; attempt <= g.maxAttempts; attempt++ {
		if attempt > 0 {
			candidate = base + "-" + g.suffix()
		}

		if _, reserved := g.reserved[candidate]; reserved {
			continue
		}

		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("naming: check %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrNameUnavailable
}

func randomSuffix() string {
	buf := make([]byte, suffixLength)
	for i := range buf {
		buf[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(buf)
}
