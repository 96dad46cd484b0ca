package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"fleettrack/internal/tracking"
)

// TrackingThresholds builds the global threshold set from environment
// variables, falling back to the library defaults for anything unset.
func TrackingThresholds() tracking.Thresholds {
	cfg := tracking.DefaultThresholds()

	cfg.ClockSkewTolerance = envDuration("TRACK_CLOCK_SKEW", cfg.ClockSkewTolerance)
	cfg.FuelWarnPercent = envFloat("TRACK_FUEL_WARN_PCT", cfg.FuelWarnPercent)
	cfg.FuelCriticalPercent = envFloat("TRACK_FUEL_CRITICAL_PCT", cfg.FuelCriticalPercent)
	cfg.StallSpeedKmh = envFloat("TRACK_STALL_SPEED_KMH", cfg.StallSpeedKmh)
	cfg.StallDuration = envDuration("TRACK_STALL_DURATION", cfg.StallDuration)
	cfg.DeviationMeters = envFloat("TRACK_DEVIATION_M", cfg.DeviationMeters)
	cfg.MinSpeedFloorKmh = envFloat("TRACK_MIN_SPEED_FLOOR_KMH", cfg.MinSpeedFloorKmh)
	cfg.DelayGrace = envDuration("TRACK_DELAY_GRACE", cfg.DelayGrace)
	cfg.DelayCritical = envDuration("TRACK_DELAY_CRITICAL", cfg.DelayCritical)
	cfg.WindowSize = envInt("TRACK_WINDOW_SIZE", cfg.WindowSize)
	cfg.StaleDataAfter = envDuration("TRACK_STALE_AFTER", cfg.StaleDataAfter)
	cfg.OdometerSlack = envFloat("TRACK_ODOMETER_SLACK", cfg.OdometerSlack)

	return cfg
}

// TickInterval is the cadence of the periodic re-evaluation pass.
func TickInterval() time.Duration {
	return envDuration("TRACK_TICK_INTERVAL", 30*time.Second)
}

func envDuration(key string, def time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Invalid duration in environment, using default.")
		return def
	}
	return d
}

func envFloat(key string, def float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Invalid number in environment, using default.")
		return def
	}
	return f
}

func envInt(key string, def int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Invalid integer in environment, using default.")
		return def
	}
	return n
}
