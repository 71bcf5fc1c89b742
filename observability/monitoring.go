package observability

import (
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

// Stats aggregates the live counters exposed to the telemetry worker and
// the debug dashboard.
type Stats struct {
	Connections      uint64 `json:"connections"`
	Disconnections   uint64 `json:"disconnections"`
	Delivered        uint64 `json:"delivered"`
	RosterBroadcasts uint64 `json:"roster_broadcasts"`
	PushFailures     uint64 `json:"push_failures"`
	CensoredMessages uint64 `json:"censored_messages"`
	AllocMemMb       uint64 `json:"alloc_mem_mb"`
	NumGC            uint32 `json:"num_gc"`
}

// Monitor keeps real-time telemetry as atomic counters. It is shared by
// the gateway, the fan-out worker, and the delivery service; reads never
// block writers.
type Monitor struct {
	log *slog.Logger

	connections      atomic.Uint64
	disconnections   atomic.Uint64
	delivered        atomic.Uint64
	rosterBroadcasts atomic.Uint64
	pushFailures     atomic.Uint64
	censoredMessages atomic.Uint64
	started          time.Time
}

func NewMonitor(log *slog.Logger) *Monitor {
	return &Monitor{log: log, started: time.Now().UTC()}
}

func (m *Monitor) IncrConnections() { m.connections.Add(1) }

func (m *Monitor) IncrDisconnections() { m.disconnections.Add(1) }

func (m *Monitor) IncrDelivered() { m.delivered.Add(1) }

func (m *Monitor) IncrRosterBroadcasts() { m.rosterBroadcasts.Add(1) }

func (m *Monitor) IncrPushFailures() { m.pushFailures.Add(1) }

func (m *Monitor) IncrCensoredMessages() { m.censoredMessages.Add(1) }

func (m *Monitor) Uptime() time.Duration { return time.Since(m.started) }

// GetLatest snapshots the counters together with Go runtime memory stats.
func (m *Monitor) GetLatest() Stats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return Stats{
		Connections:      m.connections.Load(),
		Disconnections:   m.disconnections.Load(),
		Delivered:        m.delivered.Load(),
		RosterBroadcasts: m.rosterBroadcasts.Load(),
		PushFailures:     m.pushFailures.Load(),
		CensoredMessages: m.censoredMessages.Load(),
		AllocMemMb:       ms.Alloc / 1024 / 1024,
		NumGC:            ms.NumGC,
	}
}
