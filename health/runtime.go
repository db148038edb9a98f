package health

import (
	"context"
	"fmt"
	"runtime"
)

// RuntimeCheckerConfig configures the runtime health checker.
type RuntimeCheckerConfig struct {
	// MaxGoroutines marks the process degraded above this count.
	// Default: 10000
	MaxGoroutines int

	// MaxHeapBytes marks the process degraded above this heap size.
	// Zero disables the heap check.
	MaxHeapBytes uint64
}

// RuntimeChecker reports goroutine and heap pressure. Request handlers
// hold no shared state, so a leak shows up here first.
type RuntimeChecker struct {
	config RuntimeCheckerConfig
}

// NewRuntimeChecker creates a new runtime health checker.
func NewRuntimeChecker(config RuntimeCheckerConfig) *RuntimeChecker {
	if config.MaxGoroutines <= 0 {
		config.MaxGoroutines = 10000
	}
	return &RuntimeChecker{config: config}
}

// Name returns the name of this checker.
func (c *RuntimeChecker) Name() string { return "runtime" }

// Check samples the runtime.
func (c *RuntimeChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	goroutines := runtime.NumGoroutine()

	details := map[string]any{
		"goroutines": goroutines,
		"heap_alloc": stats.HeapAlloc,
		"heap_sys":   stats.HeapSys,
		"num_gc":     stats.NumGC,
	}

	if goroutines > c.config.MaxGoroutines {
		return Degraded(fmt.Sprintf("goroutines high: %d > %d", goroutines, c.config.MaxGoroutines)).WithDetails(details)
	}
	if c.config.MaxHeapBytes > 0 && stats.HeapAlloc > c.config.MaxHeapBytes {
		return Degraded(fmt.Sprintf("heap high: %d > %d bytes", stats.HeapAlloc, c.config.MaxHeapBytes)).WithDetails(details)
	}
	return Healthy("runtime ok").WithDetails(details)
}

var _ Checker = (*RuntimeChecker)(nil)
