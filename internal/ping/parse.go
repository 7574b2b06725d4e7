package ping

import (
	"regexp"
	"strconv"

	"streaming-ping/internal/models"
)

// Patterns for iputils ping output under LC_ALL=C. Each is matched
// independently so a partial summary still yields what it can.
var (
	packetLossRe = regexp.MustCompile(`(\d+) packets transmitted, (\d+) received, ([\d.]+)% packet loss`)
	rttRe        = regexp.MustCompile(`rtt min/avg/max/(?:mdev|stddev) = ([\d.]+)/([\d.]+)/([\d.]+)/([\d.]+)`)
	ttlRe        = regexp.MustCompile(`ttl=(\d+)`)
)

// Parse overlays whatever statistics it finds in output onto base.
// Status becomes StatusSuccess only when the rtt summary line is present.
func Parse(output string, base models.ProbeResult) models.ProbeResult {
	result := base

	// "5 packets transmitted, 3 received, 40% packet loss"
	if m := packetLossRe.FindStringSubmatch(output); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			result.PacketsSent = v
		}
		if v, err := strconv.Atoi(m[2]); err == nil {
			result.PacketsReceived = v
		}
		if v, err := strconv.ParseFloat(m[3], 64); err == nil {
			result.PercentPacketLoss = v
		}
	}

	// "rtt min/avg/max/mdev = 12.123/15.234/18.456/2.345 ms"
	if m := rttRe.FindStringSubmatch(output); m != nil {
		rtts, ok := parseFloats(m[1:])
		if ok {
			result.RTTMin = rtts[0]
			result.RTTAvg = rtts[1]
			result.RTTMax = rtts[2]
			result.RTTStdDev = rtts[3]
			result.Status = models.StatusSuccess
		}
	}

	// "64 bytes from ...: icmp_seq=1 ttl=54 time=12.3 ms", first reply wins
	if m := ttlRe.FindStringSubmatch(output); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			result.TTL = v
		}
	}

	return result
}

func parseFloats(raw []string) ([]float64, bool) {
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
