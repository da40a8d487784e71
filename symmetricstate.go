package noise

// symmetricState wraps a CipherState plus the rolling chaining key ck
// and transcript hash h, implementing the Noise MixKey/MixHash chain.
type symmetricState struct {
	CipherState
	cs     CipherSuite
	hasPSK bool
	ck     []byte
	h      []byte
}

// InitializeSymmetric sets h and ck from the protocol name, per the
// Noise spec: h is the name itself, zero-padded, if it fits in HASHLEN
// bytes, otherwise the hash of the name.
func (s *symmetricState) InitializeSymmetric(protocolName []byte) {
	h := s.cs.Hash()
	if len(protocolName) <= h.Size() {
		s.h = make([]byte, h.Size())
		copy(s.h, protocolName)
	} else {
		h.Write(protocolName)
		s.h = h.Sum(nil)
	}
	s.ck = make([]byte, len(s.h))
	copy(s.ck, s.h)
}

// MixKey advances the chaining key with the given input key material and
// (re)initializes the embedded CipherState with the derived key. HASHLEN
// == 64 outputs are truncated to the cipher's 32-byte key size.
func (s *symmetricState) MixKey(inputKeyMaterial []byte) {
	var hk []byte
	s.ck, hk = hkdf(s.cs.Hash, s.ck[:0], nil, s.ck, inputKeyMaterial)
	var k [32]byte
	copy(k[:], hk)
	s.CipherState.InitializeKey(s.cs, k)
}

// MixHash folds data into the running transcript hash: h := Hash(h||data).
func (s *symmetricState) MixHash(data []byte) {
	h := s.cs.Hash()
	h.Write(s.h)
	h.Write(data)
	s.h = h.Sum(s.h[:0])
}

// MixKeyAndHash is MixKey's three-output sibling used for pre-shared
// keys: it additionally mixes a derived value into the transcript hash.
func (s *symmetricState) MixKeyAndHash(inputKeyMaterial []byte) {
	var hk, tempH []byte
	s.ck, tempH, hk = hkdf3(s.cs.Hash, s.ck[:0], nil, nil, s.ck, inputKeyMaterial)
	s.MixHash(tempH)
	var k [32]byte
	copy(k[:], hk)
	s.CipherState.InitializeKey(s.cs, k)
	s.hasPSK = true
}

// EncryptAndHash encrypts plaintext (verbatim if unkeyed) under the
// current transcript hash as associated data, appends the result to out,
// and mixes the resulting ciphertext into the transcript hash.
func (s *symmetricState) EncryptAndHash(out, plaintext []byte) ([]byte, error) {
	ciphertext, err := s.CipherState.EncryptWithAd(out, s.h, plaintext)
	if err != nil {
		return nil, err
	}
	s.MixHash(ciphertext[len(out):])
	return ciphertext, nil
}

// DecryptAndHash is the inverse of EncryptAndHash: it authenticates and
// decrypts data, appends the plaintext to out, and mixes the ciphertext
// (not the plaintext) into the transcript hash. On authentication
// failure the transcript hash is left untouched and ErrDecryptionFailed
// is returned.
func (s *symmetricState) DecryptAndHash(out, data []byte) ([]byte, error) {
	plaintext, err := s.CipherState.DecryptWithAd(out, s.h, data)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	s.MixHash(data)
	return plaintext, nil
}

// GetHandshakeHash returns the current transcript hash h.
func (s *symmetricState) GetHandshakeHash() []byte {
	return s.h
}

// Split derives the two transport CipherStates from the final chaining
// key: (tempk1, tempk2) := HKDF(ck, "", 2), each truncated to 32 bytes.
func (s *symmetricState) Split() (*CipherState, *CipherState) {
	cs1, cs2 := &CipherState{}, &CipherState{}
	var k1buf, k2buf []byte
	k1buf, k2buf = hkdf(s.cs.Hash, nil, nil, s.ck, nil)
	var k1, k2 [32]byte
	copy(k1[:], k1buf)
	copy(k2[:], k2buf)
	cs1.InitializeKey(s.cs, k1)
	cs2.InitializeKey(s.cs, k2)
	return cs1, cs2
}

// Destroy zeroizes the chaining key, transcript hash, and embedded
// CipherState key.
func (s *symmetricState) Destroy() {
	for i := range s.ck {
		s.ck[i] = 0
	}
	for i := range s.h {
		s.h[i] = 0
	}
	s.CipherState.Destroy()
}
