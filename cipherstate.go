package noise

// maxNonce is the reserved nonce sentinel (2^64-1). It is never used as
// an encryption nonce by the normal Encrypt/Decrypt path; Rekey uses it
// explicitly to derive the next key.
const maxNonce = ^uint64(0)

// A CipherState provides symmetric encryption and decryption, either as
// part of an in-progress handshake (where it may not yet hold a key) or
// as one of the two transport ciphers produced by Split. The nonce
// counter increases by exactly one per successful Encrypt/DecryptWithAd
// call; a failed decrypt leaves it unchanged.
type CipherState struct {
	cs      CipherSuite
	c       Cipher
	k       [32]byte
	hasKey  bool
	n       uint64
	invalid bool
}

// HasKey reports whether the CipherState currently holds an
// initialization key.
func (s *CipherState) HasKey() bool {
	return s.hasKey
}

// InitializeKey sets the CipherState's key and resets its nonce to zero.
func (s *CipherState) InitializeKey(cs CipherSuite, key [32]byte) {
	s.cs = cs
	s.k = key
	s.hasKey = true
	s.n = 0
	s.c = cs.Cipher(key)
}

// SetNonce resynchronizes the nonce counter, for use when the transport
// delivers messages out of order. It is not used during the handshake
// itself.
func (s *CipherState) SetNonce(n uint64) {
	s.n = n
}

// EncryptWithAd encrypts plaintext with the given associated data and
// appends the result to out. If the CipherState has no key yet, it
// appends plaintext unchanged and does not touch the nonce.
func (s *CipherState) EncryptWithAd(out, ad, plaintext []byte) ([]byte, error) {
	if s.invalid {
		panic("noise: CipherState has been invalidated")
	}
	if !s.hasKey {
		return append(out, plaintext...), nil
	}
	if s.n == maxNonce {
		return nil, ErrNonceExhausted
	}
	ciphertext := s.c.Encrypt(out, s.n, ad, plaintext)
	s.n++
	return ciphertext, nil
}

// DecryptWithAd checks the authenticity of ciphertext and ad and appends
// the resulting plaintext to out. If the CipherState has no key yet, it
// appends ciphertext unchanged. On authentication failure the nonce is
// left unchanged and ErrAuthFailed is returned.
func (s *CipherState) DecryptWithAd(out, ad, ciphertext []byte) ([]byte, error) {
	if s.invalid {
		panic("noise: CipherState has been invalidated")
	}
	if !s.hasKey {
		return append(out, ciphertext...), nil
	}
	if s.n == maxNonce {
		return nil, ErrNonceExhausted
	}
	plaintext, err := s.c.Decrypt(out, s.n, ad, ciphertext)
	if err != nil {
		return nil, ErrAuthFailed
	}
	s.n++
	return plaintext, nil
}

// Rekey replaces the CipherState's key with the first 32 bytes of
// Encrypt(k, 2^64-1, "", zeros_32). It does not change the nonce.
func (s *CipherState) Rekey() {
	var zeros [32]byte
	out := s.c.Encrypt(nil, maxNonce, nil, zeros[:])
	copy(s.k[:], out[:32])
	s.c = s.cs.Cipher(s.k)
}

// Cipher returns the low-level AEAD cipher so callers can manage nonces
// manually, for example over a transport that delivers messages out of
// order. This is dangerous: callers must increment the nonce themselves
// after every operation. Calling this invalidates further use of
// Encrypt/DecryptWithAd on this CipherState.
func (s *CipherState) Cipher() Cipher {
	s.invalid = true
	return s.c
}

// Destroy zeroizes the CipherState's key material. The CipherState must
// not be used afterward.
func (s *CipherState) Destroy() {
	for i := range s.k {
		s.k[i] = 0
	}
	s.c = nil
	s.hasKey = false
}
