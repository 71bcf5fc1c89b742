package workers

import (
	"chat-wire/domain/event"
	"chat-wire/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker drains the telemetry mirror of the event stream into
// the monitor counters and periodically logs a health line with
// self-process CPU/RSS figures.
type TelemetryWorker struct {
	log            *slog.Logger
	metricInterval time.Duration
	telemetry      chan event.DomainEvent
	monitor        *observability.Monitor
}

func NewTelemetryWorker(log *slog.Logger, metricInterval time.Duration,
	telemetry chan event.DomainEvent, monitor *observability.Monitor) *TelemetryWorker {
	return &TelemetryWorker{
		log:            log,
		metricInterval: metricInterval,
		telemetry:      telemetry,
		monitor:        monitor,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-w.telemetry:
			w.handle(evt)
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *TelemetryWorker) handle(evt event.DomainEvent) {
	switch evt.(type) {
	case event.MessageDelivered:
		w.monitor.IncrDelivered()
	case event.RosterChanged:
		w.monitor.IncrRosterBroadcasts()
	}
}

// report logs technical metrics (Memory, CPU, OS status) for this process
// together with the chat counters.
func (w *TelemetryWorker) report(p *process.Process) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		w.log.Error("Failed to collect self stats", "err", err)
		return
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		w.log.Error("Failed to collect self stats", "err", err)
		return
	}

	stats := w.monitor.GetLatest()
	w.log.Info("Health report",
		"cpu_percent", cpuPercent,
		"ram_bytes", memInfo.RSS,
		"alloc_mem_mb", stats.AllocMemMb,
		"num_gc", stats.NumGC,
		"connections", stats.Connections,
		"delivered", stats.Delivered,
		"push_failures", stats.PushFailures,
		"uptime", w.monitor.Uptime().Round(time.Second))
}
