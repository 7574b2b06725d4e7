package models

import "time"

// Stats represents aggregated probe statistics for a target
type Stats struct {
	Target      string  `json:"target"`
	TotalProbes int     `json:"total_probes"`
	Successful  int     `json:"successful_probes"`
	AvgRTT      float64 `json:"avg_rtt"`
	MaxRTT      float64 `json:"max_rtt"`
	MinRTT      float64 `json:"min_rtt"`
	PacketLoss  float64 `json:"packet_loss"`
}

// Activity summarises how often streaming was detected
type Activity struct {
	Cycles          int `json:"cycles"`
	StreamingCycles int `json:"streaming_cycles"`
}

// StreamingShare returns the percentage of cycles that detected streaming
func (a Activity) StreamingShare() float64 {
	if a.Cycles == 0 {
		return 0
	}
	return float64(a.StreamingCycles) / float64(a.Cycles) * 100
}

// Outage is a run of consecutive failed probes against one target
type Outage struct {
	Target       string    `json:"target"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Duration     string    `json:"duration"`
	FailedProbes int       `json:"failed_probes"`
}
