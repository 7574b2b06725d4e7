package monitor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"streaming-ping/internal/activity"
	"streaming-ping/internal/config"
	"streaming-ping/internal/lineproto"
	"streaming-ping/internal/logger"
	"streaming-ping/internal/models"
	"streaming-ping/internal/ping"
)

var (
	errConnectionRefused = errors.New("dial tcp 10.0.0.2:8086: connect: connection refused")
	errDiskFull          = errors.New("database or disk is full")
)

func testConfig() config.Config {
	return config.Config{
		Influx: config.InfluxConfig{URL: "http://influxdb:8086", Token: "secret", Org: "home", Bucket: "network"},
		Activity: config.ActivityConfig{
			Devices:     []string{"192.168.1.70"},
			Measurement: "bandwidth",
			Direction:   "rx",
			Window:      60 * time.Second,
			Threshold:   1_000_000,
		},
		Probe:    config.ProbeConfig{Count: 5, Interval: 500 * time.Millisecond, Wait: 5 * time.Second, Deadline: 15 * time.Second},
		History:  config.HistoryConfig{Retention: 7 * 24 * time.Hour},
		Hosts:    append([]models.ProbeTarget(nil), config.DefaultHosts...),
		Interval: 30 * time.Second,
		HostTag:  "network-monitoring",
	}
}

type mocks struct {
	detector *models.MockDetector
	prober   *models.MockProber
	emitter  *models.MockEmitter
	store    *models.MockStore
}

func newMocks(t *testing.T) mocks {
	t.Helper()

	ctrl := gomock.NewController(t)

	return mocks{
		detector: models.NewMockDetector(ctrl),
		prober:   models.NewMockProber(ctrl),
		emitter:  models.NewMockEmitter(ctrl),
		store:    models.NewMockStore(ctrl),
	}
}

func TestRunCycleInactiveSkipsProbes(t *testing.T) {
	mk := newMocks(t)
	mk.detector.EXPECT().Active(gomock.Any()).Return(false)

	m := New(testConfig(), mk.detector, mk.prober, mk.emitter, nil, logger.NewTestLogger())
	m.RunCycle(context.Background())
}

func TestRunCycleActiveProbesEveryHostInOrder(t *testing.T) {
	mk := newMocks(t)
	cfg := testConfig()

	mk.detector.EXPECT().Active(gomock.Any()).Return(true)

	calls := make([]any, 0, len(cfg.Hosts))
	for _, host := range cfg.Hosts {
		calls = append(calls, mk.prober.EXPECT().Probe(gomock.Any(), host).
			Return(models.Completed(models.FailedResult(host, 5))))
	}
	gomock.InOrder(calls...)

	var emitted []models.Outcome
	mk.emitter.EXPECT().Emit(gomock.Any()).DoAndReturn(func(outcomes []models.Outcome) error {
		emitted = outcomes
		return nil
	})

	m := New(cfg, mk.detector, mk.prober, mk.emitter, nil, logger.NewTestLogger())
	m.RunCycle(context.Background())

	require.Len(t, emitted, 4)
	for i, host := range cfg.Hosts {
		assert.Equal(t, host, emitted[i].Target)
	}
}

func TestRunCycleUnavailableHostDoesNotBlockOthers(t *testing.T) {
	mk := newMocks(t)
	cfg := testConfig()

	mk.detector.EXPECT().Active(gomock.Any()).Return(true)
	mk.prober.EXPECT().Probe(gomock.Any(), cfg.Hosts[0]).Return(models.Unavailable(cfg.Hosts[0], exec.ErrNotFound))
	mk.prober.EXPECT().Probe(gomock.Any(), cfg.Hosts[1]).DoAndReturn(func(context.Context, models.ProbeTarget) models.Outcome {
		panic("unexpected nil pointer")
	})
	mk.prober.EXPECT().Probe(gomock.Any(), cfg.Hosts[2]).Return(models.Completed(models.FailedResult(cfg.Hosts[2], 5)))
	mk.prober.EXPECT().Probe(gomock.Any(), cfg.Hosts[3]).Return(models.Completed(models.FailedResult(cfg.Hosts[3], 5)))

	var emitted []models.Outcome
	mk.emitter.EXPECT().Emit(gomock.Any()).DoAndReturn(func(outcomes []models.Outcome) error {
		emitted = outcomes
		return nil
	})

	m := New(cfg, mk.detector, mk.prober, mk.emitter, nil, logger.NewTestLogger())
	m.RunCycle(context.Background())

	require.Len(t, emitted, 2)
	assert.Equal(t, cfg.Hosts[2], emitted[0].Target)
	assert.Equal(t, cfg.Hosts[3], emitted[1].Target)
}

func TestRunCycleNothingToEmit(t *testing.T) {
	mk := newMocks(t)

	mk.detector.EXPECT().Active(gomock.Any()).Return(true)
	mk.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, host models.ProbeTarget) models.Outcome {
			return models.Unavailable(host, exec.ErrNotFound)
		}).Times(4)

	// Emit must not be called
	m := New(testConfig(), mk.detector, mk.prober, mk.emitter, nil, logger.NewTestLogger())
	m.RunCycle(context.Background())
}

func TestRunCycleRecoversFromPanic(t *testing.T) {
	mk := newMocks(t)
	mk.detector.EXPECT().Active(gomock.Any()).DoAndReturn(func(context.Context) bool {
		panic("detector exploded")
	})

	m := New(testConfig(), mk.detector, mk.prober, mk.emitter, nil, logger.NewTestLogger())

	assert.NotPanics(t, func() { m.RunCycle(context.Background()) })
}

func TestRunCycleEmitErrorIsContained(t *testing.T) {
	mk := newMocks(t)

	mk.detector.EXPECT().Active(gomock.Any()).Return(true)
	mk.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, host models.ProbeTarget) models.Outcome {
			return models.Completed(models.FailedResult(host, 5))
		}).Times(4)
	mk.emitter.EXPECT().Emit(gomock.Any()).Return(errors.New("write |1: broken pipe"))

	m := New(testConfig(), mk.detector, mk.prober, mk.emitter, nil, logger.NewTestLogger())

	assert.NotPanics(t, func() { m.RunCycle(context.Background()) })
}

func TestRunCycleRecordsHistory(t *testing.T) {
	mk := newMocks(t)
	now := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)

	mk.detector.EXPECT().Active(gomock.Any()).Return(true)
	mk.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, host models.ProbeTarget) models.Outcome {
			if host == "www.amazon.com" {
				return models.Unavailable(host, exec.ErrNotFound)
			}
			return models.Completed(models.FailedResult(host, 5))
		}).Times(4)
	mk.emitter.EXPECT().Emit(gomock.Any()).Return(nil)

	var saved models.Cycle
	mk.store.EXPECT().SaveCycle(gomock.Any()).DoAndReturn(func(c models.Cycle) error {
		saved = c
		return nil
	})
	mk.store.EXPECT().Prune(7 * 24 * time.Hour).Return(nil)

	m := New(testConfig(), mk.detector, mk.prober, mk.emitter, mk.store, logger.NewTestLogger())
	m.now = func() time.Time { return now }
	m.RunCycle(context.Background())

	assert.Equal(t, now, saved.Timestamp)
	assert.True(t, saved.Streaming)
	assert.Len(t, saved.Results, 3)
}

func TestMaintenanceRunsHourly(t *testing.T) {
	mk := newMocks(t)
	now := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)

	mk.detector.EXPECT().Active(gomock.Any()).Return(false).Times(3)
	mk.store.EXPECT().SaveCycle(gomock.Any()).Return(errDiskFull).Times(3)
	mk.store.EXPECT().Prune(gomock.Any()).Return(nil).Times(2)

	m := New(testConfig(), mk.detector, mk.prober, mk.emitter, mk.store, logger.NewTestLogger())

	m.now = func() time.Time { return now }
	m.RunCycle(context.Background())

	m.now = func() time.Time { return now.Add(30 * time.Minute) }
	m.RunCycle(context.Background())

	m.now = func() time.Time { return now.Add(61 * time.Minute) }
	m.RunCycle(context.Background())
}

func TestRunStopsOnCancel(t *testing.T) {
	mk := newMocks(t)
	cfg := testConfig()
	cfg.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	var cycles atomic.Int32
	mk.detector.EXPECT().Active(gomock.Any()).DoAndReturn(func(context.Context) bool {
		// every other cycle panics; the loop must keep going
		if cycles.Add(1)%2 == 0 {
			panic("transient failure")
		}
		if cycles.Load() >= 5 {
			cancel()
		}
		return false
	}).MinTimes(5)

	m := New(cfg, mk.detector, mk.prober, mk.emitter, nil, logger.NewTestLogger())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}
}

func TestRunExitsImmediatelyWhenCancelled(t *testing.T) {
	mk := newMocks(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// no EXPECT: the detector must not be consulted
	m := New(testConfig(), mk.detector, mk.prober, mk.emitter, nil, logger.NewTestLogger())
	assert.NoError(t, m.Run(ctx))
}

// The remaining tests wire the real detector, runner and emitter together
// with only the backend and the ping process faked.

type scriptedExecutor struct {
	outputs map[string]string
	calls   []string
}

func (s *scriptedExecutor) Run(_ context.Context, _ string, args, _ []string) ([]byte, error) {
	host := args[len(args)-1]
	s.calls = append(s.calls, host)
	out, ok := s.outputs[host]
	if !ok {
		return nil, exec.ErrNotFound
	}
	return []byte(out), nil
}

func newPipeline(t *testing.T, cfg config.Config, runner activity.QueryRunner, exe *scriptedExecutor) (*Monitor, *bytes.Buffer) {
	t.Helper()

	log := logger.NewTestLogger()
	var stdout bytes.Buffer

	detector := activity.NewDetector(runner, cfg.Influx.Bucket, cfg.Activity, log)
	prober := ping.NewWithExecutor("/bin/ping", cfg.Probe, exe, log)
	emitter := lineproto.NewEmitter(&stdout, cfg.HostTag)

	return New(cfg, detector, prober, emitter, nil, log), &stdout
}

func TestEndToEndNoDevicesConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Activity.Devices = nil

	ctrl := gomock.NewController(t)
	runner := activity.NewMockQueryRunner(ctrl)
	exe := &scriptedExecutor{}

	m, stdout := newPipeline(t, cfg, runner, exe)
	m.RunCycle(context.Background())

	assert.Empty(t, exe.calls)
	assert.Zero(t, stdout.Len())
}

func TestEndToEndStreamingDetected(t *testing.T) {
	cfg := testConfig()

	ctrl := gomock.NewController(t)
	runner := activity.NewMockQueryRunner(ctrl)
	// the backend summed 2,000,000 bytes for 192.168.1.70, over the threshold
	runner.EXPECT().HasRows(gomock.Any(), gomock.Any()).Return(true, nil)

	exe := &scriptedExecutor{outputs: map[string]string{
		"www.netflix.com":    "5 packets transmitted, 5 received, 0% packet loss, time 2004ms\nrtt min/avg/max/mdev = 12.123/15.234/18.456/2.345 ms\n",
		"www.youtube.com":    "5 packets transmitted, 2 received, 60% packet loss, time 2010ms\n",
		"www.amazon.com":     "5 packets transmitted, 0 received, 100% packet loss, time 4095ms\n",
		"www.cloudflare.com": "64 bytes from 104.16.124.96: icmp_seq=1 ttl=57 time=3.1 ms\n5 packets transmitted, 5 received, 0% packet loss, time 2005ms\nrtt min/avg/max/mdev = 3.1/3.3/3.6/0.2 ms\n",
	}}

	m, stdout := newPipeline(t, cfg, runner, exe)
	m.RunCycle(context.Background())

	assert.Equal(t, []string{"www.netflix.com", "www.youtube.com", "www.amazon.com", "www.cloudflare.com"}, exe.calls)

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Contains(t, lines[0], "url=www.netflix.com")
	assert.Contains(t, lines[0], "result_code=0i")
	assert.Contains(t, lines[0], "average_response_ms=15.234")

	assert.Equal(t, "ping,host=network-monitoring,url=www.youtube.com "+
		"average_response_ms=0.0,maximum_response_ms=0.0,minimum_response_ms=0.0,"+
		"packets_received=2i,packets_transmitted=5i,percent_packet_loss=60.0,result_code=2i,"+
		"standard_deviation_ms=0.0,ttl=0i", lines[1])

	assert.Contains(t, lines[2], "percent_packet_loss=100.0")
	assert.Contains(t, lines[3], "ttl=57i")
}

func TestEndToEndBackendDown(t *testing.T) {
	cfg := testConfig()

	ctrl := gomock.NewController(t)
	runner := activity.NewMockQueryRunner(ctrl)
	runner.EXPECT().HasRows(gomock.Any(), gomock.Any()).Return(false, errConnectionRefused).Times(2)

	exe := &scriptedExecutor{}

	m, stdout := newPipeline(t, cfg, runner, exe)
	m.RunCycle(context.Background())
	m.RunCycle(context.Background())

	assert.Empty(t, exe.calls)
	assert.Zero(t, stdout.Len())
}

func TestEndToEndMissingPingSkipsHost(t *testing.T) {
	cfg := testConfig()

	ctrl := gomock.NewController(t)
	runner := activity.NewMockQueryRunner(ctrl)
	runner.EXPECT().HasRows(gomock.Any(), gomock.Any()).Return(true, nil)

	exe := &scriptedExecutor{outputs: map[string]string{
		"www.netflix.com": "5 packets transmitted, 5 received, 0% packet loss\nrtt min/avg/max/mdev = 1.0/2.0/3.0/0.5 ms\n",
	}}

	m, stdout := newPipeline(t, cfg, runner, exe)
	m.RunCycle(context.Background())

	assert.Len(t, exe.calls, 4)

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "url=www.netflix.com")
}
