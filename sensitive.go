package noise

import "runtime"

// Sensitive wraps a byte buffer holding key material: DH private keys,
// chaining keys, and derived session keys. It is not meant to be copied;
// callers obtain the underlying bytes only through Bytes, and must call
// Zero once the buffer is no longer needed. Sensitive deliberately has no
// String or GoString method so it never leaks through fmt/%v or a
// debugger's default formatting.
type Sensitive struct {
	b []byte
}

// NewSensitive allocates a zeroed Sensitive buffer of n bytes.
func NewSensitive(n int) *Sensitive {
	return &Sensitive{b: make([]byte, n)}
}

// SensitiveFromBytes copies src into a new Sensitive buffer. The caller
// remains responsible for zeroing src itself if it too holds key material.
func SensitiveFromBytes(src []byte) *Sensitive {
	s := &Sensitive{b: make([]byte, len(src))}
	copy(s.b, src)
	return s
}

// Bytes returns the mutable underlying slice. Callers that copy out of it
// into a non-sensitive buffer are responsible for that copy's lifetime.
func (s *Sensitive) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Len reports the buffer length, or 0 for a nil Sensitive.
func (s *Sensitive) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Zero overwrites the buffer with zeros. It is safe to call on a nil
// Sensitive or to call more than once.
func (s *Sensitive) Zero() {
	if s == nil {
		return
	}
	for i := range s.b {
		s.b[i] = 0
	}
	runtime.KeepAlive(s.b)
}

// Clone returns an independent copy of the buffer.
func (s *Sensitive) Clone() *Sensitive {
	if s == nil {
		return nil
	}
	return SensitiveFromBytes(s.b)
}
