package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"streaming-ping/internal/config"
	"streaming-ping/internal/logger"
)

var errConnectionRefused = errors.New("dial tcp 10.0.0.2:8086: connect: connection refused")

func testWindow(devices ...string) config.ActivityConfig {
	return config.ActivityConfig{
		Devices:     devices,
		Measurement: "bandwidth",
		Direction:   "rx",
		Window:      60 * time.Second,
		Threshold:   1_000_000,
	}
}

func TestDetectorQuery(t *testing.T) {
	d := NewDetector(nil, "network", testWindow("192.168.1.70", "192.168.1.95"), logger.NewTestLogger())

	expected := `
from(bucket: "network")
  |> range(start: -60s)
  |> filter(fn: (r) =>
      r._measurement == "bandwidth" and
      r.direction == "rx" and
      (r.ip == "192.168.1.70" or r.ip == "192.168.1.95")
  )
  |> group(columns: ["ip"])
  |> sum()
  |> filter(fn: (r) => r._value > 1000000)
  |> group()
  |> limit(n: 1)
`
	assert.Equal(t, expected, d.Query())
}

func TestDetectorEmptyDevicesNeverQueries(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := NewMockQueryRunner(ctrl)

	// no EXPECT: any HasRows call fails the test
	d := NewDetector(runner, "network", testWindow(), logger.NewTestLogger())

	assert.False(t, d.Active(context.Background()))
}

func TestDetectorActive(t *testing.T) {
	tests := []struct {
		name     string
		rows     bool
		err      error
		expected bool
	}{
		{name: "device above threshold", rows: true, expected: true},
		{name: "all devices idle", rows: false, expected: false},
		{name: "backend unreachable fails closed", err: errConnectionRefused, expected: false},
		{name: "error with rows still fails closed", rows: true, err: errConnectionRefused, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			runner := NewMockQueryRunner(ctrl)

			d := NewDetector(runner, "network", testWindow("192.168.1.70"), logger.NewTestLogger())
			runner.EXPECT().HasRows(gomock.Any(), d.Query()).Return(tt.rows, tt.err)

			assert.Equal(t, tt.expected, d.Active(context.Background()))
		})
	}
}

func TestDetectorCancelledQueryIsNotAnError(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: "debug", Format: logger.FormatJSON}, &buf)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	runner := NewMockQueryRunner(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	runner.EXPECT().HasRows(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) (bool, error) {
		cancel()
		return false, context.Canceled
	})

	d := NewDetector(runner, "network", testWindow("192.168.1.70"), log)

	assert.False(t, d.Active(ctx))
	assert.NotContains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "InfluxDB query cancelled")
}

func TestDetectorBackendErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Format: logger.FormatJSON}, &buf)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	runner := NewMockQueryRunner(ctrl)
	runner.EXPECT().HasRows(gomock.Any(), gomock.Any()).Return(false, errConnectionRefused)

	d := NewDetector(runner, "network", testWindow("192.168.1.70"), log)

	assert.False(t, d.Active(context.Background()))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "Error querying InfluxDB")
}

func TestDetectorIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := NewMockQueryRunner(ctrl)

	d := NewDetector(runner, "network", testWindow("192.168.1.70"), logger.NewTestLogger())
	runner.EXPECT().HasRows(gomock.Any(), d.Query()).Return(true, nil).Times(2)

	first := d.Active(context.Background())
	second := d.Active(context.Background())

	assert.True(t, first)
	assert.Equal(t, first, second)
}

func TestDetectorQueryOnlyContainsConfiguredDevices(t *testing.T) {
	devices, rejected := config.ParseDevices(`192.168.1.70,10.0.0.1" or true or r.ip == "x`)
	require.Len(t, rejected, 1)

	d := NewDetector(nil, "network", testWindow(devices...), logger.NewTestLogger())
	q := d.Query()

	assert.Contains(t, q, `r.ip == "192.168.1.70"`)
	assert.NotContains(t, q, "or true")
	assert.Equal(t, 1, strings.Count(q, "r.ip =="))
}

const streamingCSV = `#datatype,string,long,dateTime:RFC3339,dateTime:RFC3339,string,double
#group,false,false,true,true,true,false
#default,_result,,,,,
,result,table,_start,_stop,ip,_value
,,0,2026-01-01T00:00:00Z,2026-01-01T00:01:00Z,192.168.1.70,2000000

`

type queryRequest struct {
	Query string `json:"query"`
}

func newInfluxServer(t *testing.T, status int, body string, queries *[]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/query", r.URL.Path)
		assert.Equal(t, "home", r.URL.Query().Get("org"))
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && queries != nil {
			*queries = append(*queries, req.Query)
		}

		if status == http.StatusOK {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestDetector(t *testing.T, srv *httptest.Server) *Detector {
	t.Helper()

	client := NewClient(config.InfluxConfig{URL: srv.URL, Token: "secret", Org: "home", Bucket: "network"})
	t.Cleanup(client.Close)

	return NewDetector(NewFluxRunner(client, "home"), "network", testWindow("192.168.1.70"), logger.NewTestLogger())
}

func TestFluxRunnerStreamingDetected(t *testing.T) {
	var queries []string
	srv := newInfluxServer(t, http.StatusOK, streamingCSV, &queries)
	d := newTestDetector(t, srv)

	assert.True(t, d.Active(context.Background()))
	require.Len(t, queries, 1)
	assert.Equal(t, d.Query(), queries[0])
}

func TestFluxRunnerNoRows(t *testing.T) {
	srv := newInfluxServer(t, http.StatusOK, "", nil)
	d := newTestDetector(t, srv)

	assert.False(t, d.Active(context.Background()))
}

func TestFluxRunnerBackendError(t *testing.T) {
	srv := newInfluxServer(t, http.StatusInternalServerError, `{"code":"internal error","message":"bucket unavailable"}`, nil)

	client := NewClient(config.InfluxConfig{URL: srv.URL, Token: "secret"})
	t.Cleanup(client.Close)

	_, err := NewFluxRunner(client, "home").HasRows(context.Background(), "from(bucket: \"network\")")
	require.Error(t, err)

	d := newTestDetector(t, srv)
	assert.False(t, d.Active(context.Background()))
}

func TestFluxRunnerConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(config.InfluxConfig{URL: url, Token: "secret"})
	t.Cleanup(client.Close)

	d := NewDetector(NewFluxRunner(client, "home"), "network", testWindow("192.168.1.70"), logger.NewTestLogger())
	assert.False(t, d.Active(context.Background()))
}
