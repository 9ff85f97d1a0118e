package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnavailable   = errors.New("storage unavailable")
)

// KV is a synchronous byte-valued key-value store with a capacity ceiling.
// Get returns (nil, false) for a missing key.
type KV interface {
	Get(key string) ([]byte, bool)
	Set(key, value string) error
	Remove(key string) error
	Keys() []string
}

// FileKV keeps one file per key under a directory, writing atomically via
// temp file + rename. A quota of 0 means unlimited.
type FileKV struct {
	mu    sync.Mutex
	dir   string
	quota int
}

func NewFileKV(dir string, quotaBytes int) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileKV{dir: dir, quota: quotaBytes}, nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileKV) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return b, true
}

func (s *FileKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 && s.usedLocked(key)+len(value) > s.quota {
		return ErrQuotaExceeded
	}

	tmp, err := os.CreateTemp(s.dir, key+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path(key))
}

func (s *FileKV) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileKV) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys
}

// usedLocked sums stored payload sizes, excluding the key about to be
// overwritten.
func (s *FileKV) usedLocked(replacing string) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	total := 0
	for _, e := range entries {
		if e.IsDir() || e.Name() == replacing+".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += int(info.Size())
	}
	return total
}

// MemoryKV is an in-memory store for tests and for degraded sessions where
// no data directory can be used.
type MemoryKV struct {
	mu    sync.Mutex
	data  map[string]string
	quota int

	// FailSets forces every Set to report quota exhaustion.
	FailSets bool
	// FailAll forces every operation to fail, simulating a dead store.
	FailAll bool
}

func NewMemoryKV(quotaBytes int) *MemoryKV {
	return &MemoryKV{data: map[string]string{}, quota: quotaBytes}
}

func (s *MemoryKV) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAll {
		return nil, false
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return []byte(v), true
}

func (s *MemoryKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAll {
		return ErrUnavailable
	}
	if s.FailSets {
		return ErrQuotaExceeded
	}
	if s.quota > 0 {
		used := 0
		for k, v := range s.data {
			if k == key {
				continue
			}
			used += len(v)
		}
		if used+len(value) > s.quota {
			return ErrQuotaExceeded
		}
	}
	s.data[key] = value
	return nil
}

func (s *MemoryKV) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAll {
		return ErrUnavailable
	}
	delete(s.data, key)
	return nil
}

func (s *MemoryKV) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAll {
		return nil
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
