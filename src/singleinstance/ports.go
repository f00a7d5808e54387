package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49600
	defaultPortEnd   = 49650

	PortStartEnvVar = "SINGLEINSTANCE_PORT_START"
	PortEndEnvVar   = "SINGLEINSTANCE_PORT_END"
)

// getPortRange returns the configured inclusive TCP port range. Unset or
// invalid values fall back to defaults; the result is clamped to [1024, 65535].
func getPortRange() (int, int) {
	start := envPort(PortStartEnvVar, defaultPortStart)
	end := envPort(PortEndEnvVar, defaultPortEnd)
	if end < start {
		start, end = end, start
	}
	return max(start, 1024), min(end, 65535)
}

func envPort(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// PortRange exposes the current effective port range for logging and pre-flight checks.
func PortRange() (int, int) { return getPortRange() }
