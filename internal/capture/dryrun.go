package capture

import (
	"log/slog"
	"sync/atomic"

	"github.com/dshills/mackerel/internal/input"
)

// DryRun is an injector that logs events instead of delivering them.
type DryRun struct {
	logger *slog.Logger
	count  atomic.Uint64
}

// NewDryRun creates a logging injector.
func NewDryRun(opts ...Option) *DryRun {
	o := applyOptions(opts)
	return &DryRun{logger: o.logger}
}

// Inject logs ev. It never fails.
func (d *DryRun) Inject(ev input.Event) error {
	n := d.count.Add(1)
	d.logger.Info("inject", "seq", n, "event", ev.String())
	return nil
}

// Count returns the number of events logged.
func (d *DryRun) Count() uint64 {
	return d.count.Load()
}

// Close does nothing.
func (d *DryRun) Close() error {
	return nil
}
