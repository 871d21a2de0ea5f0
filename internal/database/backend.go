package database

import (
	"context"
	"errors"
)

// ErrNoState is returned by Read when nothing has been persisted yet.
var ErrNoState = errors.New("no persisted state")

// Backend stores the serialized feedback document. Implementations know nothing
// about its shape; Write replaces the whole document.
type Backend interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
