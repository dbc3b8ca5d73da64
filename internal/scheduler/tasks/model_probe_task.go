package tasks

import (
	"context"
	"fmt"
	"time"
)

const defaultProbeTimeout = 10 * time.Second

// newModelProbeTask pings the generator and records the result for /readyz.
func newModelProbeTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "model_probe", "generator", deps.Generator.Name())
	timeout := deps.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	return func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		startTime := time.Now()
		err := deps.Generator.Ping(probeCtx)
		duration := time.Since(startTime)

		if deps.Readiness != nil {
			deps.Readiness.Record(err)
		}
		deps.Metrics.SetGeneratorReady(err == nil)

		if err != nil {
			log.WarnContext(ctx, "Model probe failed", "error", err, "duration", duration)
			return fmt.Errorf("model probe failed: %w", err)
		}

		log.DebugContext(ctx, "Model probe succeeded", "duration", duration)
		return nil
	}
}
