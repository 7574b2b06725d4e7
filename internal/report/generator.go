package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"streaming-ping/internal/database"
	"streaming-ping/internal/logger"
)

// Generator creates static charts and a text summary from the probe history
type Generator struct {
	db     *database.DB
	logger logger.Logger
	now    func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(db *database.DB, log logger.Logger) *Generator {
	return &Generator{db: db, logger: log.WithComponent("report"), now: time.Now}
}

// GenerateReport writes a timestamped report directory under outputDir
// covering the last period, and returns its path. If any chart or the
// summary could not be written the path is returned with the joined errors.
func (g *Generator) GenerateReport(outputDir string, period time.Duration) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	now := g.now()
	reportDir := filepath.Join(outputDir, fmt.Sprintf("streaming_report_%s", now.Format("2006-01-02_15-04-05")))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	since := now.Add(-period)

	records, err := g.db.GetRecent(since)
	if err != nil {
		return "", fmt.Errorf("failed to load probe history: %w", err)
	}

	series := groupByTarget(records)

	// Every part is attempted; failures are reported together.
	var errs []error

	if err := g.generateLatencyCharts(reportDir, series); err != nil {
		errs = append(errs, fmt.Errorf("latency chart: %w", err))
	}

	if err := g.generateLossChart(reportDir, series); err != nil {
		errs = append(errs, fmt.Errorf("packet loss chart: %w", err))
	}

	if err := g.generateTextReport(reportDir, since, period); err != nil {
		errs = append(errs, fmt.Errorf("text report: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		g.logger.Error().Err(err).Str("dir", reportDir).Msg("Report incomplete")
		return reportDir, err
	}

	g.logger.Info().Str("dir", reportDir).Msg("Report generated")

	return reportDir, nil
}
