package models

import "time"

// ProbeTarget is a hostname or IP address to probe
type ProbeTarget string

// StatusCode mirrors the result_code field of the Telegraf ping input
type StatusCode int

const (
	StatusSuccess          StatusCode = 0
	StatusTimeoutOrFailure StatusCode = 2
)

// ProbeResult is the outcome of one completed ping run against a target
type ProbeResult struct {
	Target            ProbeTarget `json:"target"`
	PacketsSent       int         `json:"packets_transmitted"`
	PacketsReceived   int         `json:"packets_received"`
	PercentPacketLoss float64     `json:"percent_packet_loss"`
	RTTMin            float64     `json:"minimum_response_ms"` // milliseconds
	RTTAvg            float64     `json:"average_response_ms"`
	RTTMax            float64     `json:"maximum_response_ms"`
	RTTStdDev         float64     `json:"standard_deviation_ms"`
	TTL               int         `json:"ttl"`
	Status            StatusCode  `json:"result_code"`
}

// FailedResult returns the baseline used before any output has been parsed:
// nothing received, full loss, zero latency.
func FailedResult(target ProbeTarget, sent int) ProbeResult {
	return ProbeResult{
		Target:            target,
		PacketsSent:       sent,
		PercentPacketLoss: 100,
		Status:            StatusTimeoutOrFailure,
	}
}

// Outcome is either Completed (ping ran, possibly with full loss) or
// Unavailable (ping could not be run at all).
type Outcome struct {
	Target    ProbeTarget
	Completed bool
	Result    ProbeResult
	Err       error
}

// Completed wraps a result from a ping that ran
func Completed(result ProbeResult) Outcome {
	return Outcome{Target: result.Target, Completed: true, Result: result}
}

// Unavailable records that ping could not be invoked for target
func Unavailable(target ProbeTarget, err error) Outcome {
	return Outcome{Target: target, Err: err}
}

// Cycle is one pass of the orchestration loop as kept in the history store
type Cycle struct {
	Timestamp time.Time
	Streaming bool
	Results   []ProbeResult
}
