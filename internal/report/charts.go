package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var gridStyle = chart.Style{
	StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
	StrokeWidth: 1.0,
}

var chartPadding = chart.Style{
	Padding: chart.Box{
		Top:    20,
		Left:   20,
		Right:  20,
		Bottom: 20,
	},
}

// generateLatencyCharts renders one average-RTT chart per CDN host. A chart
// needs at least two successful probes to draw a line.
func (g *Generator) generateLatencyCharts(outputDir string, series []targetSeries) error {
	for _, s := range series {
		if len(s.latency) < 2 {
			continue
		}

		graph := chart.Chart{
			Title: fmt.Sprintf("CDN Latency While Streaming - %s", s.target),
			TitleStyle: chart.Style{
				FontSize: 16,
			},
			Background: chartPadding,
			Width:      1200,
			Height:     400,
			XAxis: chart.XAxis{
				Name: "Time",
				NameStyle: chart.Style{
					FontSize: 12,
				},
				Style: chart.Style{
					StrokeColor: drawing.ColorBlack,
					FontSize:    10,
				},
				ValueFormatter: chart.TimeMinuteValueFormatter,
			},
			YAxis: chart.YAxis{
				Name: "Average RTT (ms)",
				NameStyle: chart.Style{
					FontSize: 12,
				},
				Style: chart.Style{
					StrokeColor: drawing.ColorBlack,
					FontSize:    10,
				},
				GridMajorStyle: gridStyle,
			},
			Series: []chart.Series{
				chart.TimeSeries{
					Name: s.target,
					Style: chart.Style{
						StrokeColor: chart.GetDefaultColor(0),
						StrokeWidth: 2,
					},
					XValues: s.latencyTS,
					YValues: s.latency,
				},
			},
		}

		// Add moving average
		if len(s.latency) > 10 {
			ts := graph.Series[0].(chart.TimeSeries)
			graph.Series = append(graph.Series, chart.SMASeries{
				Name: "Moving Avg",
				Style: chart.Style{
					StrokeColor:     chart.GetDefaultColor(1),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
				InnerSeries: ts,
				Period:      10,
			})
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("latency_%s.png", sanitizeFilename(s.target)))
		if err := renderPNG(filename, graph.Render); err != nil {
			return err
		}
	}

	return nil
}

// generateLossChart renders packet loss of every host on one chart
func (g *Generator) generateLossChart(outputDir string, series []targetSeries) error {
	var allSeries []chart.Series

	for i, s := range series {
		if len(s.loss) < 2 {
			continue
		}
		allSeries = append(allSeries, chart.TimeSeries{
			Name: s.target,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
			XValues: s.timestamps,
			YValues: s.loss,
		})
	}

	if len(allSeries) == 0 {
		return nil
	}

	graph := chart.Chart{
		Title: "CDN Packet Loss While Streaming",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chartPadding,
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name: "Time",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: chart.TimeHourValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Packet loss %",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 100,
			},
			GridMajorStyle: gridStyle,
		},
		Series: allSeries,
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	return renderPNG(filepath.Join(outputDir, "packet_loss.png"), graph.Render)
}

func renderPNG(filename string, render func(chart.RendererProvider, io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := render(chart.PNG, file); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
