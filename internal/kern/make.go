package kern

import (
	"context"

	"github.com/kettlebent/tagforge/internal/invoke"
)

// MakeStrategy drives the version's own Makefile. An empty MakeTarget is a
// plain make, which is the incremental build.
type MakeStrategy struct {
	Runner invoke.Runner
}

func (s *MakeStrategy) Name() string { return "make" }

func (s *MakeStrategy) Build(ctx context.Context, t Target) error {
	if t.MakeTarget == "" {
		return run(ctx, s.Runner, t.Dir, "make")
	}
	return run(ctx, s.Runner, t.Dir, "make", t.MakeTarget)
}
