package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSymmetricState(name string) *symmetricState {
	ss := &symmetricState{cs: NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{})}
	ss.InitializeSymmetric([]byte(name))
	return ss
}

func TestSymmetricStateInitializeShortName(t *testing.T) {
	ss := newTestSymmetricState("short")
	assert.Equal(t, 32, len(ss.h))
	assert.Equal(t, 32, len(ss.ck))
	// h is the name, zero-padded.
	assert.Equal(t, []byte("short"), ss.h[:5])
	for _, b := range ss.h[5:] {
		assert.Equal(t, byte(0), b)
	}
}

func TestSymmetricStateInitializeLongNameIsHashed(t *testing.T) {
	longName := make([]byte, 100)
	ss := &symmetricState{cs: NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{})}
	ss.InitializeSymmetric(longName)
	assert.Equal(t, 32, len(ss.h))
	assert.NotEqual(t, longName[:32], ss.h)
}

func TestSymmetricStateEncryptAndHashMixesCiphertext(t *testing.T) {
	ss := newTestSymmetricState("test")
	hBefore := append([]byte(nil), ss.h...)

	ct, err := ss.EncryptAndHash(nil, []byte("payload"))
	require.NoError(t, err)
	assert.NotEqual(t, hBefore, ss.h)
	// Unkeyed EncryptAndHash passes plaintext through unchanged.
	assert.Equal(t, []byte("payload"), ct)
}

func TestSymmetricStateDecryptAndHashRejectsTamperedCiphertext(t *testing.T) {
	ss1 := newTestSymmetricState("test")
	ss1.MixKey([]byte("some shared secret material!!!!"))
	ct, err := ss1.EncryptAndHash(nil, []byte("payload"))
	require.NoError(t, err)

	ct[0] ^= 0xff

	ss2 := newTestSymmetricState("test")
	ss2.MixKey([]byte("some shared secret material!!!!"))
	_, err = ss2.DecryptAndHash(nil, ct)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestSymmetricStateSplitProducesDistinctCiphers(t *testing.T) {
	ss := newTestSymmetricState("test")
	ss.MixKey([]byte("chaining material"))

	cs1, cs2 := ss.Split()
	require.True(t, cs1.HasKey())
	require.True(t, cs2.HasKey())
	assert.NotEqual(t, cs1.k, cs2.k)
}
