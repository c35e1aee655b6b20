package envconfig

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"false": 0,
		"0":     0,
		"1":     1,
		"true":  1,
		"2":     2,
		"yes":   1,
		"-3":    0,
		"'2'":   2,
	}
	for value, expect := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("TORCHBRIDGE_DEBUG", value)
			LoadConfig()
			assert.Equal(t, expect, LogLevel)
		})
	}
}

func TestNumericSettings(t *testing.T) {
	t.Setenv("TORCHBRIDGE_SEED", "42")
	t.Setenv("TORCHBRIDGE_NUM_THREADS", "3")
	t.Setenv("TORCHBRIDGE_MAX_CALL_DEPTH", "8")
	LoadConfig()
	require.Equal(t, int64(42), Seed)
	require.Equal(t, 3, NumThreads)
	require.Equal(t, 8, MaxCallDepth)
}

func TestInvalidSettingsFallBack(t *testing.T) {
	t.Setenv("TORCHBRIDGE_SEED", "abc")
	t.Setenv("TORCHBRIDGE_NUM_THREADS", "0")
	t.Setenv("TORCHBRIDGE_MAX_CALL_DEPTH", "-1")
	LoadConfig()
	assert.Equal(t, int64(0), Seed)
	assert.Equal(t, runtime.NumCPU(), NumThreads)
	assert.Equal(t, defaultMaxCallDepth, MaxCallDepth)
}

func TestAsMap(t *testing.T) {
	t.Setenv("TORCHBRIDGE_MAX_CALL_DEPTH", "16")
	LoadConfig()
	m := AsMap()
	require.Len(t, m, 4)
	assert.Equal(t, 16, m["TORCHBRIDGE_MAX_CALL_DEPTH"].Value)
	assert.Equal(t, "16", Values()["TORCHBRIDGE_MAX_CALL_DEPTH"])
}
