package noise

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStaticKeypair(t *testing.T, cs CipherSuite) DHKey {
	t.Helper()
	kp, err := cs.GenerateKeypair(rand.Reader)
	require.NoError(t, err)
	return kp
}

// runHandshake drives pattern to completion between an initiator and
// responder built from the given configs, returning both sides'
// transport cipher pairs plus the final handshake hashes.
func runHandshake(t *testing.T, cs CipherSuite, pattern HandshakePattern, initCfg, respCfg Config) (iSend, iRecv, rSend, rRecv *CipherState, iHash, rHash []byte) {
	t.Helper()

	initCfg.CipherSuite = cs
	initCfg.Pattern = pattern
	initCfg.Initiator = true
	respCfg.CipherSuite = cs
	respCfg.Pattern = pattern
	respCfg.Initiator = false

	init, err := NewHandshakeState(initCfg)
	require.NoError(t, err)
	resp, err := NewHandshakeState(respCfg)
	require.NoError(t, err)

	// Split's first returned CipherState is keyed for the
	// initiator-to-responder direction, the second for
	// responder-to-initiator: iSend/rRecv share the first key, and
	// rSend/iRecv share the second, regardless of which side's call
	// happened to trigger the split.
	turnIsInitiator := true
	for !init.IsHandshakeFinished() {
		if turnIsInitiator {
			msg, c1, c2, err := init.WriteMessage(nil, []byte("hello from initiator"))
			require.NoError(t, err)
			payload, d1, d2, err := resp.ReadMessage(nil, msg)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello from initiator"), payload)
			if c1 != nil {
				iSend, iRecv = c1, c2
				rRecv, rSend = d1, d2
			}
		} else {
			msg, c1, c2, err := resp.WriteMessage(nil, []byte("hello from responder"))
			require.NoError(t, err)
			payload, d1, d2, err := init.ReadMessage(nil, msg)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello from responder"), payload)
			if c1 != nil {
				rRecv, rSend = c1, c2
				iSend, iRecv = d1, d2
			}
		}
		turnIsInitiator = !turnIsInitiator
	}

	assert.Equal(t, init.GetHandshakeHash(), resp.GetHandshakeHash())
	return iSend, iRecv, rSend, rRecv, init.GetHandshakeHash(), resp.GetHandshakeHash()
}

func TestHandshakeNN(t *testing.T) {
	for _, cipherFunc := range []CipherFunc{CipherChaChaPoly{}, CipherAESGCM{}} {
		suite := NewCipherSuite(DH25519{}, cipherFunc, HashSHA256{})
		iSend, iRecv, rSend, rRecv, iHash, rHash := runHandshake(t, suite, HandshakeNN, Config{}, Config{})

		assert.Equal(t, iHash, rHash)
		require.NotNil(t, iSend)
		require.NotNil(t, rSend)

		ct, err := iSend.EncryptWithAd(nil, nil, []byte("transport message"))
		require.NoError(t, err)
		pt, err := rRecv.DecryptWithAd(nil, nil, ct)
		require.NoError(t, err)
		assert.Equal(t, []byte("transport message"), pt)

		ct2, err := rSend.EncryptWithAd(nil, nil, []byte("reply message"))
		require.NoError(t, err)
		pt2, err := iRecv.DecryptWithAd(nil, nil, ct2)
		require.NoError(t, err)
		assert.Equal(t, []byte("reply message"), pt2)
	}
}

func TestHandshakeXX(t *testing.T) {
	suite := NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashBLAKE2b{})
	initStatic := mustStaticKeypair(t, suite)
	respStatic := mustStaticKeypair(t, suite)

	iSend, iRecv, rSend, rRecv, iHash, rHash := runHandshake(t, suite, HandshakeXX,
		Config{StaticKeypair: initStatic},
		Config{StaticKeypair: respStatic},
	)

	assert.Equal(t, iHash, rHash)
	ct, err := iSend.EncryptWithAd(nil, nil, []byte("authenticated transport"))
	require.NoError(t, err)
	pt, err := rRecv.DecryptWithAd(nil, nil, ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("authenticated transport"), pt)
	_ = rSend
	_ = iRecv
}

func TestHandshakeNKRequiresPreknownResponderStatic(t *testing.T) {
	suite := NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{})
	respStatic := mustStaticKeypair(t, suite)

	iSend, _, rSend, _, iHash, rHash := runHandshake(t, suite, HandshakeNK,
		Config{PeerStatic: respStatic.Public},
		Config{StaticKeypair: respStatic},
	)
	assert.Equal(t, iHash, rHash)
	require.NotNil(t, iSend)
	require.NotNil(t, rSend)
}

func TestHandshakeWithPSK(t *testing.T) {
	suite := NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{})
	psk := make([]byte, 32)
	_, err := rand.Read(psk)
	require.NoError(t, err)

	pattern, err := WithPSK(HandshakeNN, 0)
	require.NoError(t, err)

	iSend, _, rSend, _, iHash, rHash := runHandshake(t, suite, pattern,
		Config{PresharedKeys: [][]byte{psk}},
		Config{PresharedKeys: [][]byte{psk}},
	)
	assert.Equal(t, iHash, rHash)
	require.NotNil(t, iSend)
	require.NotNil(t, rSend)
}

func TestHandshakeWithPSKMismatchFails(t *testing.T) {
	suite := NewCipherSuite(DH25519{}, CipherChaChaPoly{}, HashSHA256{})
	pskA := bytes.Repeat([]byte{0xaa}, 32)
	pskB := bytes.Repeat([]byte{0xbb}, 32)

	pattern, err := WithPSK(HandshakeNN, 0)
	require.NoError(t, err)

	initCfg := Config{CipherSuite: suite, Pattern: pattern, Initiator: true, PresharedKeys: [][]byte{pskA}}
	respCfg := Config{CipherSuite: suite, Pattern: pattern, Initiator: false, PresharedKeys: [][]byte{pskB}}

	init, err := NewHandshakeState(initCfg)
	require.NoError(t, err)
	resp, err := NewHandshakeState(respCfg)
	require.NoError(t, err)

	msg, _, _, err := init.WriteMessage(nil, nil)
	require.NoError(t, err)
	_, _, _, err = resp.ReadMessage(nil, msg)
	assert.Error(t, err)
}
