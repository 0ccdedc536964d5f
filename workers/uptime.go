package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"seolens/models"
	"seolens/services"
)

// UptimeWorker drives the uptime sampler on a fixed cadence, with a manual
// trigger for on-demand cycles.
type UptimeWorker struct {
	uptime    *services.UptimeService
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewUptimeWorker(uptime *services.UptimeService) *UptimeWorker {
	return &UptimeWorker{
		uptime:    uptime,
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *UptimeWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run a cycle immediately
func (w *UptimeWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the worker loop
func (w *UptimeWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Uptime worker stopping")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		case <-w.triggerCh:
			log.Println("Uptime worker triggered manually")
			w.runCycle(ctx)
		}
	}
}

func (w *UptimeWorker) runCycle(ctx context.Context) {
	report, err := w.uptime.CheckAll(ctx)
	if err != nil {
		log.Printf("Uptime: cycle failed: %v", err)
		w.logFunc(models.LogLevelError, "uptime", fmt.Sprintf("Cycle failed: %v", err))
		return
	}

	if report.Checked > 0 {
		log.Printf("Uptime: checked %d, skipped %d of %d domains",
			report.Checked, report.Skipped, report.Total)
		w.logFunc(models.LogLevelInfo, "uptime",
			fmt.Sprintf("Checked %d of %d domains", report.Checked, report.Total))
	}
}
