package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSensitiveZeroClearsBuffer(t *testing.T) {
	s := SensitiveFromBytes([]byte{1, 2, 3, 4})
	s.Zero()
	assert.Equal(t, []byte{0, 0, 0, 0}, s.Bytes())
}

func TestSensitiveCloneIsIndependent(t *testing.T) {
	s := SensitiveFromBytes([]byte{1, 2, 3})
	clone := s.Clone()
	clone.Bytes()[0] = 0xff
	assert.Equal(t, byte(1), s.Bytes()[0])
}

func TestSensitiveNilIsSafe(t *testing.T) {
	var s *Sensitive
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Bytes())
	assert.NotPanics(t, func() { s.Zero() })
	assert.Nil(t, s.Clone())
}

func TestNewSensitiveIsZeroed(t *testing.T) {
	s := NewSensitive(16)
	assert.Equal(t, make([]byte, 16), s.Bytes())
	assert.Equal(t, 16, s.Len())
}
