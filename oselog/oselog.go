// Package oselog wires up structured, leveled logging for the evaluator
// and the host command, grounded on kryptco-kr's logging.go: a single
// package-level *logging.Logger, a stderr backend with a custom
// formatter, and a level overridable by an environment variable.
package oselog

import (
	"os"

	"github.com/0Z3/libose/oseerr"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("oserun")

var stderrFormat = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{level:.4s} ▶%{color:reset} %{message}`,
)

// EnvLevel is the environment variable consulted by Setup when no
// explicit level is requested, mirroring kryptco-kr's KR_LOG_LEVEL.
const EnvLevel = "OSE_LOG_LEVEL"

// Setup installs a stderr backend at defaultLevel, overridden by
// EnvLevel if set, and returns the shared logger. Call once from
// cmd/oserun's main before starting the VM.
func Setup(defaultLevel logging.Level) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetFormatter(stderrFormat)

	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(levelFromEnv(defaultLevel), "")
	logging.SetBackend(leveled)

	return log
}

func levelFromEnv(defaultLevel logging.Level) logging.Level {
	switch os.Getenv(EnvLevel) {
	case "CRITICAL":
		return logging.CRITICAL
	case "ERROR":
		return logging.ERROR
	case "WARNING":
		return logging.WARNING
	case "NOTICE":
		return logging.NOTICE
	case "INFO":
		return logging.INFO
	case "DEBUG":
		return logging.DEBUG
	default:
		return defaultLevel
	}
}

// Trace logs a dispatched address at DEBUG level: the evaluator's
// per-step trace (spec §4.5), off by default at NOTICE.
func Trace(address string) {
	log.Debugf("dispatch %s", address)
}

// Exception logs a redirected /!/exception status at ERROR level.
func Exception(kind oseerr.Kind) {
	log.Errorf("exception status=%s", kind)
}

// Fatal logs msg at CRITICAL and exits the process, mirroring
// kryptco-kr's PrintFatal for unrecoverable host-level errors (bad
// arena size, listener setup failure).
func Fatal(format string, args ...interface{}) {
	log.Criticalf(format, args...)
	os.Exit(1)
}
