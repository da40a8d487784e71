package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPatternsValidate(t *testing.T) {
	for name, p := range AllPatterns {
		assert.NoErrorf(t, validatePattern(p), "pattern %s failed validation", name)
	}
}

func TestValidatePatternRejectsPrematureEE(t *testing.T) {
	bad := pat("bad", nil, nil,
		[]Token{TokenEE}, // no e exchanged yet on either side
	)
	assert.Error(t, validatePattern(bad))
}

func TestValidatePatternRejectsPrematureSS(t *testing.T) {
	bad := pat("bad", nil, nil,
		[]Token{TokenE},
		[]Token{TokenSS}, // neither side's static has been established
	)
	assert.Error(t, validatePattern(bad))
}

func TestWithPSKInsertsTokenAndRenames(t *testing.T) {
	p, err := WithPSK(HandshakeNN, 0)
	require.NoError(t, err)
	assert.Equal(t, "NNpsk0", p.Name)
	assert.Equal(t, TokenPSK, p.Messages[0][0])

	p2, err := WithPSK(HandshakeNN, 2)
	require.NoError(t, err)
	assert.Equal(t, "NNpsk2", p2.Name)
	last := p2.Messages[1]
	assert.Equal(t, TokenPSK, last[len(last)-1])
}

func TestWithPSKRejectsOutOfRangePosition(t *testing.T) {
	_, err := WithPSK(HandshakeNN, 5)
	assert.Error(t, err)
}

func TestWithPSKDoesNotMutateBasePattern(t *testing.T) {
	originalLen := len(HandshakeNN.Messages[0])
	_, err := WithPSK(HandshakeNN, 0)
	require.NoError(t, err)
	assert.Equal(t, originalLen, len(HandshakeNN.Messages[0]))
}
