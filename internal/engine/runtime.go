package engine

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/eigerco/slatedb-go/internal/engine/settings"
	"github.com/eigerco/slatedb-go/internal/ffi"
	"github.com/eigerco/slatedb-go/pkg/log"
)

// InitLogging routes engine, store and client logs to stderr at level.
func (e *Engine) InitLogging(level string) ffi.Result {
	lvl, err := log.ParseLogLevel(strings.ToLower(level))
	if err != nil || level == "" {
		return e.result(errorf(ffi.InvalidArgument, "unknown log level %q", level))
	}
	log.Init(log.Options{LogLevel: lvl, Type: log.ConsoleLogger, Output: os.Stderr})
	return e.result(nil)
}

func (e *Engine) SettingsDefault() uintptr {
	return e.settingsDocument(settings.Default(), nil)
}

func (e *Engine) SettingsFromFile(path string) uintptr {
	s, err := settings.FromFile(path)
	return e.settingsDocument(s, err)
}

func (e *Engine) SettingsFromEnv(prefix string) uintptr {
	s, err := settings.FromEnv(prefix)
	return e.settingsDocument(s, err)
}

func (e *Engine) SettingsLoad() uintptr {
	s, err := settings.Load()
	return e.settingsDocument(s, err)
}

// settingsDocument returns s as an engine-owned JSON string, or zero when err
// is set.
func (e *Engine) settingsDocument(s settings.Settings, err error) uintptr {
	if err != nil {
		log.Engine.Warn().Err(err).Msg("load settings")
		return 0
	}
	raw, err := json.Marshal(s)
	if err != nil {
		log.Engine.Warn().Err(err).Msg("encode settings")
		return 0
	}
	return e.arena.put(raw)
}
