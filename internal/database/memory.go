package database

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process Backend. Useful in tests and for throwaway runs.
// WriteErr, when set, is returned by every Write.
type MemoryBackend struct {
	mu       sync.Mutex
	data     []byte
	present  bool
	writes   int
	WriteErr error
	ReadErr  error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// NewMemoryBackendWith returns a backend already holding data.
func NewMemoryBackendWith(data []byte) *MemoryBackend {
	b := &MemoryBackend{}
	b.data = append([]byte(nil), data...)
	b.present = true
	return b
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Read(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ReadErr != nil {
		return nil, b.ReadErr
	}
	if !b.present {
		return nil, ErrNoState
	}
	return append([]byte(nil), b.data...), nil
}

func (b *MemoryBackend) Write(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.data = append([]byte(nil), data...)
	b.present = true
	b.writes++
	return nil
}

// Data returns a copy of the stored document.
func (b *MemoryBackend) Data() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// Writes reports how many successful writes happened.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}
