package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	Env = map[string]string{"SONGPITCH_TEST_KEY": "from-file"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("SONGPITCH_TEST_KEY", "from-os")

	assert.Equal(t, "from-file", GetEnv("SONGPITCH_TEST_KEY", "def"))
}

func TestGetEnvFallbacks(t *testing.T) {
	Env = nil
	t.Setenv("SONGPITCH_OS_KEY", "from-os")

	assert.Equal(t, "from-os", GetEnv("SONGPITCH_OS_KEY", "def"))
	assert.Equal(t, "def", GetEnv("SONGPITCH_MISSING_KEY", "def"))
}

func TestTypedGetters(t *testing.T) {
	Env = map[string]string{
		"INT_OK":      "42",
		"INT_BAD":     "forty-two",
		"DURATION_OK": "20s",
		"DURATION_NO": "soon",
	}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 42, GetEnvInt("INT_OK", 1))
	assert.Equal(t, 1, GetEnvInt("INT_BAD", 1))
	assert.Equal(t, 7, GetEnvInt("INT_MISSING", 7))
	assert.Equal(t, 20*time.Second, GetEnvDuration("DURATION_OK", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("DURATION_NO", time.Second))
}

func TestIsDev(t *testing.T) {
	Env = map[string]string{"APP_ENV": "dev"}
	t.Cleanup(func() { Env = nil })
	assert.True(t, IsDev())

	Env = map[string]string{"APP_ENV": "prod"}
	assert.False(t, IsDev())
}
