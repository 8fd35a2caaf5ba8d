package config

import (
	"time"
)

type PollingConfig struct {
	Interval         time.Duration `yaml:"interval"`
	FailureThreshold int           `yaml:"failure_threshold"`

	LocationMinInterval time.Duration `yaml:"location_min_interval"`
	LocationMinDistance float64       `yaml:"location_min_distance_m"`

	ReminderSchedule  string        `yaml:"reminder_schedule"`
	ReminderThreshold time.Duration `yaml:"reminder_threshold"`

	// APIBaseURL and Token are used by the poller CLI.
	APIBaseURL string `yaml:"api_base_url"`
	Token      string `yaml:"token"`
}

func loadPollingConfig() *PollingConfig {
	return &PollingConfig{
		Interval:            getEnvAsDuration("POLL_INTERVAL", 2*time.Second),
		FailureThreshold:    getEnvAsInt("POLL_FAILURE_THRESHOLD", 3),
		LocationMinInterval: getEnvAsDuration("LOCATION_MIN_INTERVAL", 10*time.Second),
		LocationMinDistance: getEnvAsFloat64("LOCATION_MIN_DISTANCE_M", 25),
		ReminderSchedule:    getEnv("REMINDER_SCHEDULE", "@every 15m"),
		ReminderThreshold:   getEnvAsDuration("REMINDER_THRESHOLD", 30*time.Minute),
		APIBaseURL:          getEnv("POLL_API_BASE_URL", "http://localhost:8080"),
		Token:               getEnv("POLL_TOKEN", ""),
	}
}
