// Package config reads service configuration from the environment with typed
// fallbacks. Loading .env files stays in main; this package only reads.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"fleet-dispatch-service/internal/workhours"
)

func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func GetFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: %s=%q is not a number, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: %s=%q is not a duration, using %v", key, v, fallback)
		return fallback
	}
	return d
}

// WorkHoursLimits builds the compliance thresholds, overridable one by one.
// The defaults are configurable policy, not hard-coded law.
func WorkHoursLimits() workhours.Limits {
	def := workhours.DefaultLimits()
	return workhours.Limits{
		ContinuousDrivingCap: GetFloat("CONTINUOUS_DRIVING_CAP_MINUTES", def.ContinuousDrivingCap),
		DailyDrivingCap:      GetFloat("DAILY_DRIVING_CAP_MINUTES", def.DailyDrivingCap),
		WeeklyDrivingCap:     GetFloat("WEEKLY_DRIVING_CAP_MINUTES", def.WeeklyDrivingCap),
		DailyDutyCap:         GetFloat("DAILY_DUTY_CAP_MINUTES", def.DailyDutyCap),
		DailyRestInterval:    GetDuration("DAILY_REST_INTERVAL", def.DailyRestInterval),
	}
}
