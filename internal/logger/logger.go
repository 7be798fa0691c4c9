package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// New builds the application logger.
// An empty file logs to stderr; otherwise the file is appended to (created 0600).
// The returned closer releases the file and is safe to call for stderr.
func New(level, format, file string) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	w, err := selectFormatOutput(Format(strings.ToLower(format)), out)
	if err != nil {
		closer.Close()
		return zerolog.Nop(), nopCloser{}, err
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), closer, nil
}

func selectFormatOutput(format Format, out io.Writer) (io.Writer, error) {
	switch format {
	case TextFormat, "":
		return zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    true,
			TimeFormat: TimestampFormat,
			PartsOrder: []string{
				zerolog.TimestampFieldName,
				zerolog.LevelFieldName,
				zerolog.MessageFieldName,
			},
		}, nil
	case JSONFormat:
		return out, nil
	default:
		return nil, errors.New("unknown log format " + string(format))
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
