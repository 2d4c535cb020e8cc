package config_test

import (
	"testing"

	"github.com/0Z3/libose/config"
	"github.com/0Z3/libose/vm"
	"github.com/stretchr/testify/assert"
)

func TestLoadFallsBackToVMDefaults(t *testing.T) {
	c := config.Load()

	d := vm.DefaultSizes()
	assert.Equal(t, d, c.Sizes)
	assert.Equal(t, "NOTICE", c.LogLevel)
	assert.NotEmpty(t, c.ListenAddr)
}

func TestLoadHonoursEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvStackSize, "123")
	t.Setenv(config.EnvListenAddr, "0.0.0.0:9999")
	t.Setenv(config.EnvLogLevel, "DEBUG")

	c := config.Load()
	assert.EqualValues(t, 123, c.Sizes.Stack)
	assert.Equal(t, "0.0.0.0:9999", c.ListenAddr)
	assert.Equal(t, "DEBUG", c.LogLevel)
}
