// Package config resolves host-facing configuration — arena and
// per-context sizes, the UDP listen address, and the log level — from
// environment variables with typed defaults, grounded on
// kryptco-kr/src/krd/main.go's os.Getenv-driven overrides and exposed
// through github.com/xyproto/env/v2 for the typed lookups themselves.
package config

import (
	"github.com/0Z3/libose/vm"
	"github.com/xyproto/env/v2"
)

// Defaults mirror vm.DefaultSizes(); each is overridable by its own
// environment variable so a host can tune context sizes without a
// rebuild, the same knob kryptco-kr exposes for its daemon socket path
// and log level.
const (
	EnvArenaSize   = "OSE_ARENA_SIZE"
	EnvCacheSize   = "OSE_CACHE_SIZE"
	EnvInputSize   = "OSE_INPUT_SIZE"
	EnvStackSize   = "OSE_STACK_SIZE"
	EnvEnvSize     = "OSE_ENV_SIZE"
	EnvControlSize = "OSE_CONTROL_SIZE"
	EnvDumpSize    = "OSE_DUMP_SIZE"
	EnvOutputSize  = "OSE_OUTPUT_SIZE"
	EnvListenAddr  = "OSE_LISTEN_ADDR"
	EnvLogLevel    = "OSE_LOG_LEVEL"
)

const defaultListenAddr = "127.0.0.1:9010"

// Config holds the resolved host configuration for cmd/oserun.
type Config struct {
	Sizes      vm.Sizes
	ArenaSize  int32
	ListenAddr string
	LogLevel   string
}

// Load resolves a Config from the environment, falling back to
// vm.DefaultSizes() and the package defaults above.
func Load() Config {
	d := vm.DefaultSizes()

	sizes := vm.Sizes{
		Cache:       int32(env.Int(EnvCacheSize, int(d.Cache))),
		Input:       int32(env.Int(EnvInputSize, int(d.Input))),
		Stack:       int32(env.Int(EnvStackSize, int(d.Stack))),
		Environment: int32(env.Int(EnvEnvSize, int(d.Environment))),
		Control:     int32(env.Int(EnvControlSize, int(d.Control))),
		Dump:        int32(env.Int(EnvDumpSize, int(d.Dump))),
		Output:      int32(env.Int(EnvOutputSize, int(d.Output))),
	}

	arenaDefault := sizes.Cache + sizes.Input + sizes.Stack + sizes.Environment +
		sizes.Control + sizes.Dump + sizes.Output + 4096

	return Config{
		Sizes:      sizes,
		ArenaSize:  int32(env.Int(EnvArenaSize, int(arenaDefault))),
		ListenAddr: env.Str(EnvListenAddr, defaultListenAddr),
		LogLevel:   env.Str(EnvLogLevel, "NOTICE"),
	}
}
