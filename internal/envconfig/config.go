// Package envconfig reads the TORCHBRIDGE_* environment variables.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

var (
	// Set via TORCHBRIDGE_DEBUG in the environment. 0 is info, 1 debug, 2 trace.
	LogLevel int
	// Set via TORCHBRIDGE_SEED in the environment. Zero keeps a time-based seed.
	Seed int64
	// Set via TORCHBRIDGE_NUM_THREADS in the environment
	NumThreads int
	// Set via TORCHBRIDGE_MAX_CALL_DEPTH in the environment
	MaxCallDepth int
)

const (
	defaultMaxCallDepth = 64
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"TORCHBRIDGE_DEBUG":          {"TORCHBRIDGE_DEBUG", LogLevel, "Show additional debug information (1 = debug, 2 = trace)"},
		"TORCHBRIDGE_SEED":           {"TORCHBRIDGE_SEED", Seed, "Seed for random tensor creation (default time based)"},
		"TORCHBRIDGE_NUM_THREADS":    {"TORCHBRIDGE_NUM_THREADS", NumThreads, "Worker goroutines for CPU kernels (default number of CPUs)"},
		"TORCHBRIDGE_MAX_CALL_DEPTH": {"TORCHBRIDGE_MAX_CALL_DEPTH", MaxCallDepth, "Maximum nested script function calls (default 64)"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	LogLevel = 0
	if debug := clean("TORCHBRIDGE_DEBUG"); debug != "" {
		if n, err := strconv.Atoi(debug); err == nil {
			LogLevel = max(n, 0)
		} else if b, err := strconv.ParseBool(debug); err == nil {
			if b {
				LogLevel = 1
			}
		} else {
			LogLevel = 1
		}
	}

	Seed = 0
	if seed := clean("TORCHBRIDGE_SEED"); seed != "" {
		s, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			slog.Error("invalid setting, ignoring", "TORCHBRIDGE_SEED", seed, "error", err)
		} else {
			Seed = s
		}
	}

	NumThreads = runtime.NumCPU()
	if threads := clean("TORCHBRIDGE_NUM_THREADS"); threads != "" {
		val, err := strconv.Atoi(threads)
		if err != nil || val <= 0 {
			slog.Error("invalid setting must be greater than zero", "TORCHBRIDGE_NUM_THREADS", threads, "error", err)
		} else {
			NumThreads = val
		}
	}

	MaxCallDepth = defaultMaxCallDepth
	if depth := clean("TORCHBRIDGE_MAX_CALL_DEPTH"); depth != "" {
		val, err := strconv.Atoi(depth)
		if err != nil || val <= 0 {
			slog.Error("invalid setting must be greater than zero", "TORCHBRIDGE_MAX_CALL_DEPTH", depth, "error", err)
		} else {
			MaxCallDepth = val
		}
	}
}
