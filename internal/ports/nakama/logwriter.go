package nakama

import (
	"bytes"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/rs/zerolog"
)

// runtimeWriter forwards zerolog output from the core to the Nakama logger.
type runtimeWriter struct {
	logger runtime.Logger
}

var _ zerolog.LevelWriter = runtimeWriter{}

func (w runtimeWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w runtimeWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	line := string(bytes.TrimRight(p, "\n"))
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		w.logger.Debug("%s", line)
	case zerolog.WarnLevel:
		w.logger.Warn("%s", line)
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		w.logger.Error("%s", line)
	default:
		w.logger.Info("%s", line)
	}
	return len(p), nil
}
