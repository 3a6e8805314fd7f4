package driven

import "context"

// CursorStore persists the enumeration cursor of each source.
type CursorStore interface {
	// GetCursor returns the persisted cursor for key.
	// ok is false when no cursor has been written yet.
	GetCursor(ctx context.Context, key string) (value int64, ok bool, err error)

	// SetCursor stores value as the cursor for key, replacing any previous value.
	SetCursor(ctx context.Context, key string, value int64) error
}
