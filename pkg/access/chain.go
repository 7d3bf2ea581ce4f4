package access

import (
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Option customises a Chain.
type Option func(*Chain)

// WithChecks replaces the default check list.
func WithChecks(checks ...Check) Option {
	return func(c *Chain) {
		c.checks = append([]Check(nil), checks...)
	}
}

// WithCheck appends one check to the chain, keeping priority order.
func WithCheck(check Check) Option {
	return func(c *Chain) {
		c.checks = append(c.checks, check)
	}
}

// WithLogger sets the logger used for evaluation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the evaluation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Chain) {
		if now != nil {
			c.now = now
		}
	}
}

// Chain evaluates the ordered check list against one request. A Chain is
// immutable after construction and safe for concurrent use.
type Chain struct {
	checks []Check
	logger *slog.Logger
	now    func() time.Time
}

// NewChain constructs a chain with the default checks unless replaced.
func NewChain(options ...Option) *Chain {
	c := &Chain{
		checks: DefaultChecks(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	sort.SliceStable(c.checks, func(i, j int) bool {
		return c.checks[i].Priority < c.checks[j].Priority
	})
	return c
}

// Names returns the check names in evaluation order, mostly for diagnostics.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.checks))
	for _, check := range c.checks {
		names = append(names, check.Name)
	}
	return names
}

// Evaluate folds the request through the check list. Once a check denies, the
// error carries through untouched except for redirecting checks, which still
// run and whose redirect stops the fold at once.
func (c *Chain) Evaluate(in Input) Result {
	if in.Entry == nil {
		return Deny(KindAccessDenied, "", "no entry supplied")
	}
	if in.Now.IsZero() {
		in.Now = c.now()
	}

	checks := c.checks
	if in.Profile.PublicAccess {
		checks = withoutBypassed(checks)
	}

	result := Passed()
	for _, check := range checks {
		if check.Run == nil {
			continue
		}
		if !result.OK() && !check.Redirecting {
			continue
		}
		next := check.Run(result, in)
		if redirect := next.Redirect(); redirect != nil {
			c.logger.Debug("access chain redirect",
				slog.String("check", check.Name),
				slog.String("target", redirect.Target),
				slog.String("entry", in.Entry.ID))
			return next
		}
		if result.OK() && !next.OK() {
			c.logger.Debug("access chain denied",
				slog.String("check", check.Name),
				slog.String("entry", in.Entry.ID),
				slog.String("kind", string(next.Err().Kind)))
		}
		result = next
	}
	return result
}

// withoutBypassed removes the owner/timeout/capability checks for publicly
// accessible profiles. The pruned checks are never invoked.
func withoutBypassed(checks []Check) []Check {
	out := make([]Check, 0, len(checks))
	for _, check := range checks {
		if _, bypass := publicBypass[check.Name]; bypass {
			continue
		}
		out = append(out, check)
	}
	return out
}

// Describe reports the chain composition for a profile, used by diagnostics
// commands to explain why a given check did or did not run.
func (c *Chain) Describe(publicAccess bool) string {
	checks := c.checks
	if publicAccess {
		checks = withoutBypassed(checks)
	}
	out := ""
	for i, check := range checks {
		if i > 0 {
			out += " -> "
		}
		out += fmt.Sprintf("%s(%d)", check.Name, check.Priority)
	}
	return out
}
