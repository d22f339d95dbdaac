package execution

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"ptsched/internal/config"
	"ptsched/internal/dispatch"
	"ptsched/internal/domain"
)

// PHPUnitWorker runs test classes through the project's PHPUnit binary. One
// instance serves one slot and keeps that slot's environment (its dedicated
// test database); recycling replaces the instance wholesale.
type PHPUnitWorker struct {
	ctx  context.Context
	cfg  *config.Config
	slot int
	env  []string
}

// NewFactory returns a dispatch.Factory creating PHPUnit workers. Cancelling
// ctx kills in-flight phpunit processes.
func NewFactory(ctx context.Context, cfg *config.Config) dispatch.Factory {
	return func(slot int) (dispatch.Worker, error) {
		return newPHPUnitWorker(ctx, cfg, slot), nil
	}
}

func newPHPUnitWorker(ctx context.Context, cfg *config.Config, slot int) *PHPUnitWorker {
	env := append(os.Environ(), fmt.Sprintf("DB_DATABASE=%s", cfg.GetDatabaseName(slot)))
	return &PHPUnitWorker{
		ctx:  ctx,
		cfg:  cfg,
		slot: slot,
		env:  env,
	}
}

// Execute runs PHPUnit for a single test class and reports the outcome with
// its wall-clock duration.
func (w *PHPUnitWorker) Execute(class domain.ClassName) domain.TestResult {
	start := time.Now()

	cmd := exec.CommandContext(w.ctx, w.cfg.GetPHPUnitPath(), string(class))
	cmd.Env = w.env
	cmd.Dir = w.cfg.ProjectPath
	output, err := cmd.CombinedOutput()

	return domain.TestResult{
		Class:    class,
		Slot:     w.slot,
		Success:  err == nil,
		Output:   string(output),
		Err:      err,
		Duration: time.Since(start),
	}
}

// Stop releases the worker. PHPUnit forks one process per class, so nothing
// outlives Execute here.
func (w *PHPUnitWorker) Stop() error {
	return nil
}
