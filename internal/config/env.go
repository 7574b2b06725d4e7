package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"streaming-ping/internal/logger"
)

const (
	KeyInfluxURL        = "influxdb_url"
	KeyInfluxToken      = "influxdb_token"
	KeyInfluxOrg        = "influxdb_org"
	KeyInfluxBucket     = "influxdb_bucket"
	KeyStreamingDevices = "streaming_devices"
	KeyCheckInterval    = "check_interval"
	KeyThreshold        = "bandwidth_threshold"
	KeyHostTag          = "host_tag"
	KeyHistoryDB        = "history_db"
	KeyHistoryRetention = "history_retention"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
	KeyDebug            = "debug"
)

// NewViper returns a viper instance with every default set and environment
// lookup enabled, so INFLUXDB_TOKEN resolves the influxdb_token key. An
// exported but empty variable counts as set: STREAMING_DEVICES="" means no
// devices, not the default list.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyInfluxURL, "http://influxdb:8086")
	v.SetDefault(KeyInfluxToken, "")
	v.SetDefault(KeyInfluxOrg, "home")
	v.SetDefault(KeyInfluxBucket, "network")
	v.SetDefault(KeyStreamingDevices, "192.168.1.70,192.168.1.95,192.168.1.109")
	v.SetDefault(KeyCheckInterval, 30*time.Second)
	v.SetDefault(KeyThreshold, 1_000_000)
	v.SetDefault(KeyHostTag, "network-monitoring")
	v.SetDefault(KeyHistoryDB, "")
	v.SetDefault(KeyHistoryRetention, 7*24*time.Hour)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logger.FormatConsole)
	v.SetDefault(KeyDebug, false)

	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	return v
}

// Load reads the configuration from v, merging the optional config file at
// path first. Device entries that are not valid IP addresses are dropped and
// returned in rejected.
func Load(v *viper.Viper, path string) (cfg Config, rejected []string, err error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	devices, rejected := ParseDevices(v.GetString(KeyStreamingDevices))

	threshold, err := cast.ToInt64E(v.Get(KeyThreshold))
	if err != nil {
		return Config{}, nil, fmt.Errorf("%w: %s: %w", ErrInvalid, KeyThreshold, err)
	}

	interval, err := durationValue(v, KeyCheckInterval)
	if err != nil {
		return Config{}, nil, err
	}

	retention, err := durationValue(v, KeyHistoryRetention)
	if err != nil {
		return Config{}, nil, err
	}

	cfg = Config{
		Influx: InfluxConfig{
			URL:    v.GetString(KeyInfluxURL),
			Token:  v.GetString(KeyInfluxToken),
			Org:    v.GetString(KeyInfluxOrg),
			Bucket: v.GetString(KeyInfluxBucket),
		},
		Activity: ActivityConfig{
			Devices:     devices,
			Measurement: "bandwidth",
			Direction:   "rx",
			Window:      60 * time.Second,
			Threshold:   threshold,
		},
		Probe: ProbeConfig{
			Count:    5,
			Interval: 500 * time.Millisecond,
			Wait:     5 * time.Second,
			Deadline: 15 * time.Second,
		},
		History: HistoryConfig{
			DatabasePath: v.GetString(KeyHistoryDB),
			Retention:    retention,
		},
		Hosts:    append(DefaultHosts[:0:0], DefaultHosts...),
		Interval: interval,
		HostTag:  v.GetString(KeyHostTag),
		Log: logger.Config{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			Debug:  v.GetBool(KeyDebug),
		},
	}

	return cfg, rejected, nil
}

// durationValue reads key as a duration. A bare number counts as seconds,
// so CHECK_INTERVAL=30 means 30s rather than 30ns.
func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.Get(key)

	switch x := raw.(type) {
	case time.Duration:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(n * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
		}
		return d, nil
	default:
		n, err := cast.ToFloat64E(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
		}
		return time.Duration(n * float64(time.Second)), nil
	}
}
