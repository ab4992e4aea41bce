package extract

import (
	"context"
	"os/exec"

	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure ExecRunner implements the interface.
var _ driven.CommandRunner = (*ExecRunner)(nil)

// ExecRunner runs external binaries via os/exec.
type ExecRunner struct{}

// Run executes name with args and returns stdout.
// The process is killed when ctx is cancelled.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
