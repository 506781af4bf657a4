package observability

import (
	"context"
	"runtime"
	"time"
)

// SampleRuntime records goroutine count and heap allocation every interval
// until ctx is done. The first sample is taken immediately.
func SampleRuntime(ctx context.Context, mm *MetricsManager, interval time.Duration) {
	sample := func() {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		mm.Observe(MetricGoroutinesCount, float64(runtime.NumGoroutine()), "count", nil)
		mm.Observe(MetricMemoryAllocMB, float64(mem.Alloc)/1024/1024, "mb", nil)
	}

	sample()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample()
		}
	}
}
