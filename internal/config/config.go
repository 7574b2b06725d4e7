package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"streaming-ping/internal/logger"
	"streaming-ping/internal/models"
)

// MinInterval is the shortest accepted pause between checks
const MinInterval = time.Second

var (
	ErrMissingToken = errors.New("INFLUXDB_TOKEN environment variable not set")
	ErrInvalid      = errors.New("invalid configuration")
)

// DefaultHosts are the CDN endpoints probed while streaming is active
var DefaultHosts = []models.ProbeTarget{
	"www.netflix.com",
	"www.youtube.com",
	"www.amazon.com",
	"www.cloudflare.com",
}

// InfluxConfig holds the backend connection settings
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// ActivityConfig describes the bandwidth window the detector evaluates
type ActivityConfig struct {
	Devices     []string
	Measurement string
	Direction   string
	Window      time.Duration
	Threshold   int64
}

// ProbeConfig holds the fixed ping parameters
type ProbeConfig struct {
	Count    int
	Interval time.Duration
	Wait     time.Duration
	Deadline time.Duration
}

// HistoryConfig enables the optional sqlite probe history
type HistoryConfig struct {
	DatabasePath string
	Retention    time.Duration
}

// Config holds all configuration for the orchestrator. It is built once at
// startup and passed by value; nothing mutates it afterwards.
type Config struct {
	Influx   InfluxConfig
	Activity ActivityConfig
	Probe    ProbeConfig
	History  HistoryConfig
	Hosts    []models.ProbeTarget
	Interval time.Duration
	HostTag  string
	Log      logger.Config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Influx.Token == "" {
		return ErrMissingToken
	}
	if c.Influx.URL == "" {
		return fmt.Errorf("%w: influxdb url cannot be empty", ErrInvalid)
	}
	if c.Influx.Bucket == "" {
		return fmt.Errorf("%w: bucket cannot be empty", ErrInvalid)
	}
	if c.Interval < MinInterval {
		return fmt.Errorf("%w: check interval must be at least %s", ErrInvalid, MinInterval)
	}
	if c.Activity.Window <= 0 {
		return fmt.Errorf("%w: activity window must be positive", ErrInvalid)
	}
	if c.Activity.Threshold < 0 {
		return fmt.Errorf("%w: bandwidth threshold cannot be negative", ErrInvalid)
	}
	if c.Probe.Count <= 0 {
		return fmt.Errorf("%w: ping count must be positive", ErrInvalid)
	}
	if c.Probe.Deadline <= 0 {
		return fmt.Errorf("%w: ping deadline must be positive", ErrInvalid)
	}
	if len(c.Hosts) == 0 {
		return fmt.Errorf("%w: at least one host must be specified", ErrInvalid)
	}
	if c.HostTag == "" {
		return fmt.Errorf("%w: host tag cannot be empty", ErrInvalid)
	}
	if c.History.DatabasePath != "" && c.History.Retention <= 0 {
		return fmt.Errorf("%w: history retention must be positive", ErrInvalid)
	}
	return nil
}

// ParseDevices splits a comma-separated device list and keeps only valid IP
// addresses. Each rejected entry is returned so the caller can warn about it.
// Addresses with a zone are rejected since the zone is free text.
func ParseDevices(raw string) (devices, rejected []string) {
	for _, part := range strings.Split(raw, ",") {
		ip := strings.TrimSpace(part)
		if ip == "" {
			continue
		}

		addr, err := netip.ParseAddr(ip)
		if err != nil || addr.Zone() != "" {
			rejected = append(rejected, ip)
			continue
		}

		devices = append(devices, ip)
	}

	return devices, rejected
}
