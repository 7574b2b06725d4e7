package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"streaming-ping/internal/database"
	"streaming-ping/internal/models"
)

func (g *Generator) generateTextReport(outputDir string, since time.Time, period time.Duration) error {
	stats, err := g.db.GetStats(since)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	activity, err := g.db.GetActivity(since)
	if err != nil {
		return fmt.Errorf("failed to load activity: %w", err)
	}

	outages, err := g.db.GetOutages(since)
	if err != nil {
		return fmt.Errorf("failed to load outages: %w", err)
	}

	file, err := os.Create(filepath.Join(outputDir, "summary.txt"))
	if err != nil {
		return err
	}
	defer file.Close()

	writeSummary(file, g.now(), period, activity, stats, outages)

	return nil
}

func writeSummary(w io.Writer, generated time.Time, period time.Duration, activity models.Activity, stats []models.Stats, outages []models.Outage) {
	fmt.Fprintf(w, "Streaming CDN Latency Report\n")
	fmt.Fprintf(w, "Generated: %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Period: Last %s\n\n", period)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintln(w, "\nSTREAMING ACTIVITY")
	fmt.Fprintf(w, "  Cycles: %d\n", activity.Cycles)
	fmt.Fprintf(w, "  Streaming detected: %d (%.2f%%)\n\n", activity.StreamingCycles, activity.StreamingShare())

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "\nCDN STATISTICS")

	if len(stats) == 0 {
		fmt.Fprintln(w, "No probes recorded in this period.")
	}

	for _, s := range stats {
		uptime := 0.0
		if s.TotalProbes > 0 {
			uptime = float64(s.Successful) / float64(s.TotalProbes) * 100
		}

		fmt.Fprintf(w, "Target: %s\n", s.Target)
		fmt.Fprintf(w, "  Total Probes: %d\n", s.TotalProbes)
		fmt.Fprintf(w, "  Successful: %d (%.2f%%)\n", s.Successful, uptime)
		fmt.Fprintf(w, "  Packet Loss: %.2f%%\n", s.PacketLoss)

		if s.Successful > 0 {
			fmt.Fprintf(w, "  Average RTT: %.2f ms\n", s.AvgRTT)
			fmt.Fprintf(w, "  Min RTT: %.2f ms\n", s.MinRTT)
			fmt.Fprintf(w, "  Max RTT: %.2f ms\n", s.MaxRTT)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "\nOUTAGE PERIODS (%d+ consecutive failed probes)\n", database.MinOutageProbes)

	for i, o := range outages {
		fmt.Fprintf(w, "Outage #%d\n", i+1)
		fmt.Fprintf(w, "  Target: %s\n", o.Target)
		fmt.Fprintf(w, "  Start: %s\n", o.StartTime.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  End: %s\n", o.EndTime.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  Duration: %s\n", o.Duration)
		fmt.Fprintf(w, "  Failed Probes: %d\n", o.FailedProbes)
		fmt.Fprintln(w)
	}

	if len(outages) == 0 {
		fmt.Fprintln(w, "No significant outages detected.")
	} else {
		fmt.Fprintf(w, "\nTotal Outages: %d\n", len(outages))
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "\nCharts are available in the accompanying files.")
}
