package draft

import (
	"os"
	"path/filepath"
	"sync"
)

// Backend is one durable key-value slot. Load reports found=false on
// first run; implementations never panic on a missing medium.
type Backend interface {
	Load() (data []byte, found bool, err error)
	Save(data []byte) error
}

type fileBackend struct {
	path string
}

// NewFileBackend stores the slot as a single file. An empty path means
// no durable storage is available and yields a no-op backend: reads
// come back absent and writes are silently dropped.
func NewFileBackend(path string) Backend {
	if path == "" {
		return noopBackend{}
	}
	return &fileBackend{path: path}
}

func (b *fileBackend) Load() ([]byte, bool, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (b *fileBackend) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(b.path, data, 0o600)
}

type noopBackend struct{}

func (noopBackend) Load() ([]byte, bool, error) { return nil, false, nil }
func (noopBackend) Save([]byte) error           { return nil }

// MemoryBackend keeps the slot in memory. Tests use it to simulate
// reloads without touching the filesystem.
type MemoryBackend struct {
	mu    sync.Mutex
	data  []byte
	found bool
}

func (b *MemoryBackend) Load() ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data, b.found, nil
}

func (b *MemoryBackend) Save(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte(nil), data...)
	b.found = true
	return nil
}
