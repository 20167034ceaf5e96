// Package ratelimit provides keyed sliding-window throttling using
// joeycumines/go-catrate's limiter. The server keeps two: one keyed by
// remote address for authentication attempts, one keyed by username for
// malformed commands.
package ratelimit

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// Limiter rate-limits events per string key.
type Limiter struct {
	inner *catrate.Limiter
}

// Default windows: generous enough for a human typing, tight enough to
// stop a scripted flood. The server closes a connection whose
// authentication attempt or malformed command exceeds its limiter;
// well-formed edit commands are never checked against it.
func defaultRates() map[time.Duration]int {
	return map[time.Duration]int{
		time.Second:     20,
		10 * time.Second: 100,
		time.Minute:      400,
	}
}

// New builds a Limiter using the default rate windows.
func New() *Limiter {
	return &Limiter{inner: catrate.NewLimiter(defaultRates())}
}

// NewWithRates builds a Limiter using caller-supplied rate windows, see
// catrate.NewLimiter for the constraints on rates.
func NewWithRates(rates map[time.Duration]int) *Limiter {
	return &Limiter{inner: catrate.NewLimiter(rates)}
}

// Allow reports whether key (a username or a remote address, depending
// on what the caller is throttling) may proceed now.
func (l *Limiter) Allow(key string) bool {
	_, ok := l.inner.Allow(key)
	return ok
}
