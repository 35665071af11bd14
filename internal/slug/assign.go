package slug

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxAttempts bounds how many candidates Assign tries before giving up.
const DefaultMaxAttempts = 1000

var (
	// ErrInvalidTitle is returned when a title normalizes to an empty slug.
	ErrInvalidTitle = errors.New("title does not produce a usable slug")
	// ErrSlugExhausted is returned when every candidate up to the attempt limit is taken.
	ErrSlugExhausted = errors.New("no free slug within attempt limit")
)

// Oracle answers whether a record other than excludeID already holds candidate.
type Oracle interface {
	Exists(ctx context.Context, candidate string, excludeID uint) (bool, error)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(ctx context.Context, candidate string, excludeID uint) (bool, error)

// Exists implements Oracle.
func (f OracleFunc) Exists(ctx context.Context, candidate string, excludeID uint) (bool, error) {
	return f(ctx, candidate, excludeID)
}

// Result describes a finished assignment.
type Result struct {
	Slug     string
	Base     string
	Attempts int
}

// Assigner picks collision-free slugs: the normalized title first, then
// base-1, base-2 and so on. Lookups run one at a time in candidate order.
type Assigner struct {
	maxAttempts int
}

// Option configures an Assigner.
type Option func(*Assigner)

// WithMaxAttempts overrides DefaultMaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(a *Assigner) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// NewAssigner builds an Assigner.
func NewAssigner(opts ...Option) *Assigner {
	a := &Assigner{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxAttempts returns the configured candidate limit.
func (a *Assigner) MaxAttempts() int {
	return a.maxAttempts
}

// Assign returns a slug for title that oracle reports as free.
// Oracle errors abort the assignment and are returned as is, without retry.
func (a *Assigner) Assign(ctx context.Context, title string, excludeID uint, oracle Oracle) (string, error) {
	res, err := a.Resolve(ctx, title, excludeID, oracle)
	if err != nil {
		return "", err
	}
	return res.Slug, nil
}

// Resolve is Assign with the attempt count reported back. On failure the
// returned Result still carries the base and the attempts made.
func (a *Assigner) Resolve(ctx context.Context, title string, excludeID uint, oracle Oracle) (Result, error) {
	base := Normalize(title)
	res := Result{Base: base}
	if base == "" {
		return res, ErrInvalidTitle
	}

	candidate := base
	for counter := 0; counter < a.maxAttempts; counter++ {
		if counter > 0 {
			candidate = fmt.Sprintf("%s-%d", base, counter)
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Attempts++
		taken, err := oracle.Exists(ctx, candidate, excludeID)
		if err != nil {
			return res, err
		}
		if !taken {
			res.Slug = candidate
			return res, nil
		}
	}

	return res, fmt.Errorf("%w: %q after %d attempts", ErrSlugExhausted, base, a.maxAttempts)
}

// Assign runs a default Assigner.
func Assign(ctx context.Context, title string, excludeID uint, oracle Oracle) (string, error) {
	return NewAssigner().Assign(ctx, title, excludeID, oracle)
}
