package config

import (
	"time"
)

// MLConfig configures the external evidence safety classifier.
type MLConfig struct {
	SafetyEnabled       bool          `yaml:"safety_enabled"`
	SafetyEndpoint      string        `yaml:"safety_endpoint"`
	SafetyAPIKey        string        `yaml:"safety_api_key"`
	SafetyTimeout       time.Duration `yaml:"safety_timeout"`
	SafetyMinConfidence float64       `yaml:"safety_min_confidence"`
}

func loadMLConfig() *MLConfig {
	return &MLConfig{
		SafetyEnabled:       getEnvAsBool("ML_SAFETY_ENABLED", false),
		SafetyEndpoint:      getEnv("ML_SAFETY_ENDPOINT", ""),
		SafetyAPIKey:        getEnv("ML_SAFETY_API_KEY", ""),
		SafetyTimeout:       getEnvAsDuration("ML_SAFETY_TIMEOUT", 10*time.Second),
		SafetyMinConfidence: getEnvAsFloat64("ML_SAFETY_MIN_CONFIDENCE", 0.6),
	}
}
