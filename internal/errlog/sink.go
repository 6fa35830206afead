// Package errlog is the operator-facing failure log: one append-only file per
// entity kind, one line per failed identifier.
package errlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Kinds with established file names.
const (
	KindEvent      = "event"
	KindOdds       = "odds"
	KindPrediction = "prediction"
	KindSeason     = "season"
	KindTeam       = "team"
	KindConference = "conference"
	KindTeamSeason = "team_season"
	KindRoster     = "roster"
	KindRanking    = "ranking"
	KindCoach      = "coach"
)

// Sink appends failures to <dir>/<kind>_errors.log. Files are opened on
// first use and kept open until Close.
type Sink struct {
	dir     string
	mu      sync.Mutex
	files   map[string]*os.File
	loggers map[string]zerolog.Logger
}

// New creates the directory if needed and returns a sink writing into it
func New(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create error log directory: %w", err)
	}
	return &Sink{
		dir:     dir,
		files:   make(map[string]*os.File),
		loggers: make(map[string]zerolog.Logger),
	}, nil
}

// Path returns the file a kind is written to
func (s *Sink) Path(kind string) string {
	return filepath.Join(s.dir, kind+"_errors.log")
}

// Record appends one failure line. A sink that cannot open its file falls
// back to stderr so the failure is never lost.
func (s *Sink) Record(kind, id string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger, ok := s.loggers[kind]
	if !ok {
		var w io.Writer = os.Stderr
		f, err := os.OpenFile(s.Path(kind), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			s.files[kind] = f
			w = f
		}
		logger = zerolog.New(w).With().Timestamp().Str("kind", kind).Logger()
		s.loggers[kind] = logger
	}

	logger.Error().Str("id", id).Err(cause).Msgf("Error fetching %s for %s", kind, id)
}

// Close closes every open file
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for kind, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.files, kind)
		delete(s.loggers, kind)
	}
	return firstErr
}
