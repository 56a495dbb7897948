package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"duel-arena/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	outputMu sync.RWMutex
	output   io.Writer = os.Stdout
)

// Init configures the global zerolog logger. A log file, when configured, is
// written alongside stdout and truncated once it exceeds cfg.MaxMB.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var w io.Writer = os.Stdout
	if cfg.File != "" {
		fw, err := newCappedFile(cfg.File, cfg.MaxMB)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.File).Msg("open log file failed; logging to stdout only")
		} else {
			w = io.MultiWriter(os.Stdout, fw)
		}
	}
	outputMu.Lock()
	output = w
	outputMu.Unlock()

	var zw io.Writer = w
	if cfg.Pretty {
		zw = zerolog.ConsoleWriter{Out: w}
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(zw).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the raw destination used by the global logger, for
// libraries that bring their own encoder (slog, httplog).
func Writer() io.Writer {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return output
}

// SetDebug toggles verbose duel tracing without touching the rest of the
// logger configuration.
func SetDebug(enabled bool, base zerolog.Level) {
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(base)
}
