// Package config carries ambient runtime knobs (default executor pool
// size, default target FDR, log verbosity) via environment variables.
// It does not load a SearchConfiguration: that value is constructed
// programmatically by the caller.
package config

import (
	"os"
	"strconv"
	"strings"
)

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "y", "yes":
		return true
	case "0", "false", "n", "no":
		return false
	default:
		return def
	}
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// Runtime holds the ambient knobs read once at startup.
type Runtime struct {
	ExecutorPoolSize int
	DefaultTargetFDR float64
	Verbose          bool
	LogPrefix        string
}

// FromEnv reads ambient knobs from the process environment, falling back
// to the design defaults documented alongside each field.
func FromEnv() Runtime {
	return Runtime{
		ExecutorPoolSize: getEnvInt("PAL_EXECUTOR_POOL_SIZE", 0), // 0 => runtime.NumCPU(), at least 2
		DefaultTargetFDR: getEnvFloat("PAL_DEFAULT_FDR", 0.10),
		Verbose:          getEnvBool("PAL_VERBOSE", false),
		LogPrefix:        getEnv("PAL_LOG_PREFIX", "paldiscover"),
	}
}
