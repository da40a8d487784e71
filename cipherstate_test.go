package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherStateUnkeyedPassthrough(t *testing.T) {
	var cs CipherState
	assert.False(t, cs.HasKey())

	ct, err := cs.EncryptWithAd(nil, []byte("ad"), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), ct)

	pt, err := cs.DecryptWithAd(nil, []byte("ad"), ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), pt)
}

func TestCipherStateRoundTrip(t *testing.T) {
	for _, cf := range []CipherFunc{CipherChaChaPoly{}, CipherAESGCM{}} {
		var key [32]byte
		for i := range key {
			key[i] = byte(i)
		}
		var cs CipherState
		cs.InitializeKey(NewCipherSuite(DH25519{}, cf, HashSHA256{}), key)
		require.True(t, cs.HasKey())

		plaintext := []byte("the quick brown fox")
		ad := []byte("associated data")

		ct, err := cs.EncryptWithAd(nil, ad, plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ct)

		var decryptCs CipherState
		decryptCs.InitializeKey(NewCipherSuite(DH25519{}, cf, HashSHA256{}), key)
		pt, err := decryptCs.DecryptWithAd(nil, ad, ct)
		require.NoError(t, err)
		assert.Equal(t, plaintext, pt)
	}
}

func TestCipherStateTamperedADFails(t *testing.T) {
	var key [32]byte
	var cs CipherState
	cs.InitializeKey(NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{}), key)
	ct, err := cs.EncryptWithAd(nil, []byte("good-ad"), []byte("secret"))
	require.NoError(t, err)

	var decryptCs CipherState
	decryptCs.InitializeKey(NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{}), key)
	_, err = decryptCs.DecryptWithAd(nil, []byte("bad-ad"), ct)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestCipherStateNonceIncrementsOnSuccessOnly(t *testing.T) {
	var key [32]byte
	var cs CipherState
	cs.InitializeKey(NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{}), key)

	_, err := cs.EncryptWithAd(nil, nil, []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cs.n)

	var decryptCs CipherState
	decryptCs.InitializeKey(NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{}), key)
	_, err = decryptCs.DecryptWithAd(nil, []byte("wrong-ad"), []byte{0, 1, 2, 3})
	assert.Error(t, err)
	assert.Equal(t, uint64(0), decryptCs.n)
}

func TestCipherStateNonceExhausted(t *testing.T) {
	var key [32]byte
	var cs CipherState
	cs.InitializeKey(NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{}), key)
	cs.SetNonce(maxNonce)

	_, err := cs.EncryptWithAd(nil, nil, []byte("x"))
	assert.ErrorIs(t, err, ErrNonceExhausted)
}

func TestCipherStateRekeyChangesOutput(t *testing.T) {
	var key [32]byte
	var cs CipherState
	cs.InitializeKey(NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{}), key)

	before, err := cs.EncryptWithAd(nil, nil, []byte("message"))
	require.NoError(t, err)

	cs.SetNonce(0)
	cs.Rekey()
	after, err := cs.EncryptWithAd(nil, nil, []byte("message"))
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestCipherInvalidatedAfterCipherAccessor(t *testing.T) {
	var key [32]byte
	var cs CipherState
	cs.InitializeKey(NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{}), key)
	_ = cs.Cipher()

	assert.Panics(t, func() {
		_, _ = cs.EncryptWithAd(nil, nil, []byte("x"))
	})
}
