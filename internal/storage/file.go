package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "pewsched/pkg/logx"
)

const fileRecentCap = 256

// fileStore appends transitions to <prefix>.transitions.jsonl and keeps the
// last state per rule plus a bounded tail in memory.
type fileStore struct {
	log logx.Logger

	mu     sync.Mutex
	f      *os.File
	last   map[string]bool
	recent []Transition // oldest first, at most fileRecentCap
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("journal.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	journalPath := filepath.Join(dir, base+".transitions.jsonl")

	s := &fileStore{log: log, last: map[string]bool{}}
	if err := s.replay(journalPath); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	s.f = f
	return s, nil
}

func (s *fileStore) replay(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	skipped := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var t Transition
		if err := json.Unmarshal([]byte(line), &t); err != nil {
			// A crash can leave a torn last line.
			skipped++
			continue
		}
		s.remember(t)
	}
	if skipped > 0 {
		s.log.Warn("journal replay skipped malformed lines", logx.Int("skipped", skipped), logx.String("path", path))
	}
	return sc.Err()
}

func (s *fileStore) remember(t Transition) {
	s.last[t.Rule] = t.Active
	s.recent = append(s.recent, t)
	if over := len(s.recent) - fileRecentCap; over > 0 {
		s.recent = append(s.recent[:0], s.recent[over:]...)
	}
}

func (s *fileStore) AppendTransition(ctx context.Context, t Transition) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return errors.New("journal file closed")
	}
	if err := json.NewEncoder(s.f).Encode(t); err != nil {
		return err
	}
	s.remember(t)
	return nil
}

func (s *fileStore) LastStates(ctx context.Context) (map[string]bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.last))
	for k, v := range s.last {
		out[k] = v
	}
	return out, nil
}

func (s *fileStore) Recent(ctx context.Context, limit int) ([]Transition, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]Transition, 0, limit)
	for i := len(s.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.recent[i])
	}
	return out, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
