package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tablelink/internal/config"
)

var writer io.Writer = os.Stdout

// Init configures the global zerolog logger from cfg. Safe to call once at
// process start; library code receives logger values and never reads config.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil && cfg.Level != "" {
		level = parsed
	}

	writer = os.Stdout
	if cfg.File != "" {
		if fw, err := newCappedFileWriter(cfg.File, cfg.MaxMB); err == nil {
			writer = io.MultiWriter(os.Stdout, fw)
		}
	}
	output := writer
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: writer}
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the sink Init configured, for handing to non-zerolog
// consumers like httplog.
func Writer() io.Writer {
	return writer
}
