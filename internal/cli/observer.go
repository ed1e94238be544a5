package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"clicache/pkg/clicache"
)

// logObserver relays cache events to a zerolog logger, for --verbose.
type logObserver struct {
	log zerolog.Logger
}

// newLogObserver returns an observer writing human-readable event lines
// to w (normally stderr, so cached stdout stays clean for piping).
func newLogObserver(w io.Writer) *logObserver {
	console := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}

	return &logObserver{
		log: zerolog.New(console).Level(zerolog.DebugLevel).With().Timestamp().Logger(),
	}
}

func (l *logObserver) Hit(key string, age time.Duration) {
	l.log.Debug().Str("key", key).Dur("age", age).Msg("cache hit")
}

func (l *logObserver) Miss(key string, reason string) {
	l.log.Debug().Str("key", key).Str("reason", reason).Msg("cache miss")
}

func (l *logObserver) Write(key string, entryID string) {
	l.log.Debug().Str("key", key).Str("entry", entryID).Msg("cache write")
}

// Compile-time interface check.
var _ clicache.Observer = (*logObserver)(nil)
