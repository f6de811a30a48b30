package logx

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type Config struct {
	Level   string
	Console bool
	File    FileConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

const defaultLogFile = "./pewsched.log"

// Service owns the log sinks. Apply rebuilds them; loggers handed out by
// New or Logger pick up the new sinks on their next event.
type Service struct {
	mu   sync.Mutex // serializes Apply and Close
	file *os.File
	cur  atomic.Pointer[zerolog.Logger]
}

// New builds a Service from cfg and returns it with its root Logger.
func New(cfg Config) (*Service, Logger) {
	s := &Service{}
	s.Apply(cfg)
	return s, s.Logger()
}

func (s *Service) Logger() Logger {
	return Logger{src: s.cur.Load}
}

// Apply swaps sinks and level. A log file that cannot be opened is
// reported through the new logger and console output is used instead.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		sinks   []io.Writer
		openErr error
		path    string
	)
	if cfg.Console {
		sinks = append(sinks, consoleWriter(os.Stdout))
	}
	var file *os.File
	if cfg.File.Enabled {
		path = strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = defaultLogFile
		}
		file, openErr = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if openErr == nil {
			sinks = append(sinks, zerolog.SyncWriter(file))
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, consoleWriter(os.Stdout))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(sinks...)).
		Level(parseLevel(cfg.Level, LevelInfo)).
		With().Timestamp().Logger()
	s.cur.Store(&zl)

	if s.file != nil {
		_ = s.file.Close()
	}
	s.file = file

	if openErr != nil {
		zl.Error().Str("path", path).Err(openErr).Msg("log file unavailable; using console")
	}
}

// Close releases the log file, if any. Console output keeps working.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:          w,
		TimeFormat:   timeFormat,
		FormatCaller: func(i any) string { s, _ := i.(string); return s },
	}
}
