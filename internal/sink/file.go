// Package sink holds the kill-event observers that write outside the process.
package sink

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

const DefaultBattleLog = "battle_log.txt"

// File appends "<killer> killed <victim>" lines. Write failures are logged
// and dropped; the combat loop never sees them.
type File struct {
	mu   sync.Mutex
	file *os.File
	log  *zap.Logger
}

func OpenFile(path string, log *zap.Logger) (*File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open battle log %s: %w", path, err)
	}

	return &File{file: f, log: log.Named("battle_log")}, nil
}

func (s *File) OnKill(killer, victim string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return
	}

	if _, err := fmt.Fprintf(s.file, "%s killed %s\n", killer, victim); err != nil {
		s.log.Warn("Battle log write failed", zap.Error(err))
	}
}

func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil
	return err
}
