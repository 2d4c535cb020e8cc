package oselog

import (
	"testing"

	"github.com/0Z3/libose/oseerr"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func TestLevelFromEnvFallsBackToDefault(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, logging.NOTICE, levelFromEnv(logging.NOTICE))
}

func TestLevelFromEnvHonoursOverride(t *testing.T) {
	t.Setenv(EnvLevel, "DEBUG")
	assert.Equal(t, logging.DEBUG, levelFromEnv(logging.NOTICE))
}

func TestTraceAndExceptionDoNotPanic(t *testing.T) {
	Setup(logging.CRITICAL)

	assert.NotPanics(t, func() { Trace("/!/foo") })
	assert.NotPanics(t, func() { Exception(oseerr.Range) })
}
