// Package lineproto renders probe results as InfluxDB line protocol for a
// Telegraf execd input reading our stdout.
package lineproto

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"streaming-ping/internal/models"
)

// Measurement is the measurement name of Telegraf's ping input
const Measurement = "ping"

var (
	tagEscaper         = strings.NewReplacer(",", `\,`, " ", `\ `, "=", `\=`)
	measurementEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)
)

type flusher interface {
	Flush() error
}

// Emitter implements models.Emitter
type Emitter struct {
	w       io.Writer
	hostTag string
}

// NewEmitter creates an Emitter writing to w. hostTag is the constant value
// of the host tag on every line.
func NewEmitter(w io.Writer, hostTag string) *Emitter {
	return &Emitter{w: w, hostTag: hostTag}
}

// Emit writes one line per completed outcome and flushes after each line.
// Unavailable outcomes are skipped.
func (e *Emitter) Emit(outcomes []models.Outcome) error {
	for _, o := range outcomes {
		if !o.Completed {
			continue
		}

		line := Encode(Point(e.hostTag, o.Result))
		if _, err := io.WriteString(e.w, line); err != nil {
			return fmt.Errorf("write line for %s: %w", o.Target, err)
		}

		if err := e.flush(); err != nil {
			return fmt.Errorf("flush line for %s: %w", o.Target, err)
		}
	}

	return nil
}

// flush pushes buffered writers through; an *os.File is already unbuffered.
func (e *Emitter) flush() error {
	if f, ok := e.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Point builds the ping measurement for r. Telegraf stamps the time on
// ingestion, so the point's own timestamp is never encoded.
func Point(hostTag string, r models.ProbeResult) *write.Point {
	return write.NewPoint(
		Measurement,
		map[string]string{
			"host": hostTag,
			"url":  string(r.Target),
		},
		map[string]interface{}{
			"average_response_ms":   r.RTTAvg,
			"maximum_response_ms":   r.RTTMax,
			"minimum_response_ms":   r.RTTMin,
			"packets_received":      r.PacketsReceived,
			"packets_transmitted":   r.PacketsSent,
			"percent_packet_loss":   r.PercentPacketLoss,
			"result_code":           int(r.Status),
			"standard_deviation_ms": r.RTTStdDev,
			"ttl":                   r.TTL,
		},
		time.Time{},
	)
}

// Encode renders p as a newline-terminated line without a timestamp. Tags
// and fields come out in key order.
func Encode(p *write.Point) string {
	var b strings.Builder

	b.WriteString(measurementEscaper.Replace(p.Name()))

	for _, tag := range p.TagList() {
		b.WriteByte(',')
		b.WriteString(tagEscaper.Replace(tag.Key))
		b.WriteByte('=')
		b.WriteString(tagEscaper.Replace(tag.Value))
	}

	for i, field := range p.FieldList() {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteByte(',')
		}
		b.WriteString(tagEscaper.Replace(field.Key))
		b.WriteByte('=')
		b.WriteString(formatValue(field.Value))
	}

	b.WriteByte('\n')

	return b.String()
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return FormatFloat(x)
	case int64:
		return strconv.FormatInt(x, 10) + "i"
	case uint64:
		return strconv.FormatUint(x, 10) + "u"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// FormatFloat renders the shortest decimal form of f, always keeping a
// decimal point so the collector types the field as float: 60 -> "60.0".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
