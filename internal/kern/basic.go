package kern

import (
	"context"
	"fmt"

	"github.com/kettlebent/tagforge/internal/invoke"
)

// DefaultCompiler is used when the target does not name one.
const DefaultCompiler = "gcc"

// BasicStrategy compiles the single declared source file directly, for
// versions below every build-system threshold.
type BasicStrategy struct {
	Runner invoke.Runner
}

func (s *BasicStrategy) Name() string { return "basic" }

func (s *BasicStrategy) Build(ctx context.Context, t Target) error {
	if t.Source == "" {
		return fmt.Errorf("basic build needs a source file")
	}
	cc := t.Compiler
	if cc == "" {
		cc = DefaultCompiler
	}
	return run(ctx, s.Runner, t.Dir, cc, t.Source, "-o", t.BinName, "-lm")
}
