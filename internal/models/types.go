//go:generate mockgen -destination=mock_types.go -package=models streaming-ping/internal/models Detector,Prober,Emitter,Store

package models

import (
	"context"
	"time"
)

// Detector reports whether any monitored device is streaming right now
type Detector interface {
	Active(ctx context.Context) bool
}

// Prober runs one latency probe against a target
type Prober interface {
	Probe(ctx context.Context, target ProbeTarget) Outcome
}

// Emitter writes probe outcomes to the metrics pipeline
type Emitter interface {
	Emit(outcomes []Outcome) error
}

// Store defines operations for the optional probe history
type Store interface {
	SaveCycle(cycle Cycle) error
	Prune(retention time.Duration) error
	Close() error
}

// Monitor interface defines the orchestration lifecycle
type Monitor interface {
	Run(ctx context.Context) error
	RunCycle(ctx context.Context)
}
