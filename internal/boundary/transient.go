package boundary

import "sync"

// TransientString is a result or error message whose ownership passes to the
// receiving side of the boundary. The contract is exactly one release per
// non-nil instance: releasing nil is a no-op, a second release is absorbed,
// and reading after release yields the empty string instead of freed memory.
type TransientString struct {
	mu       sync.Mutex
	value    string
	released bool
}

func NewTransientString(s string) *TransientString {
	return &TransientString{value: s}
}

// String returns the carried value, or "" once released.
func (t *TransientString) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return ""
	}
	return t.value
}

// Release gives the value back to the producer. Returns false when the
// string was already released.
func (t *TransientString) Release() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return false
	}
	t.released = true
	t.value = ""
	return true
}

// Released reports whether Release has been called.
func (t *TransientString) Released() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

// FreeString releases s. Calling it on nil is a no-op.
func FreeString(s *TransientString) {
	if s != nil {
		s.Release()
	}
}
