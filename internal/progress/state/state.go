// Package state holds the process-wide server state and the single
// mutual-exclusion domain that guards it.
//
// Every read of the identity registry made on behalf of a request happens
// inside With. Sections must stay small (a lookup, never I/O-bound parsing)
// and must not nest: calling With from inside a With callback on the same
// container blocks until the request context gives up.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/internal/progress/store"
	"golang.org/x/sync/semaphore"
)

// ErrPoisoned is reported once a previous holder panicked inside a section.
var ErrPoisoned = errors.New("state: poisoned by a panic in a previous holder")

// Server is the shared state. Master credentials are reserved for future
// administrative endpoints and are only kept as a hash.
type Server struct {
	Identities         store.Identities
	Port               int
	MasterLogin        string
	MasterPasswordHash string
}

// Container grants exclusive access to a Server.
type Container struct {
	sem      *semaphore.Weighted
	server   *Server
	poisoned atomic.Bool
}

func NewContainer(s *Server) *Container {
	return &Container{
		sem:    semaphore.NewWeighted(1),
		server: s,
	}
}

// Poisoned reports whether a holder has panicked.
func (c *Container) Poisoned() bool { return c.poisoned.Load() }

// With runs fn with exclusive access to the server state and returns its
// result. Acquisition honours ctx. Lock failures (cancelled acquisition, a
// poisoned container, a panic in fn) come back as a domain.KindInternal error;
// errors returned by fn are passed through untouched.
func With[T any](ctx context.Context, c *Container, fn func(*Server) (T, error)) (T, error) {
	var zero T

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return zero, domain.Internal("cannot get server info", err)
	}
	defer c.sem.Release(1)

	if c.poisoned.Load() {
		return zero, domain.Internal("cannot get server info", ErrPoisoned)
	}

	return run(c, fn)
}

func run[T any](c *Container, fn func(*Server) (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.poisoned.Store(true)
			var zero T
			res = zero
			err = domain.Internal("cannot get server info", fmt.Errorf("%w: %v", ErrPoisoned, r))
		}
	}()
	return fn(c.server)
}
