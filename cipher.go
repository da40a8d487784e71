package noise

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"golang.org/x/crypto/chacha20poly1305"
)

// aeadCipher adapts a standard cipher.AEAD to the Cipher interface,
// encoding the 64-bit Noise nonce into the AEAD's 12-byte nonce using
// the byte order its own algorithm expects.
type aeadCipher struct {
	aead        cipher.AEAD
	littleEndian bool
}

func (c aeadCipher) nonceBytes(n uint64) []byte {
	var nonce [12]byte
	if c.littleEndian {
		binary.LittleEndian.PutUint64(nonce[4:], n)
	} else {
		binary.BigEndian.PutUint64(nonce[4:], n)
	}
	return nonce[:]
}

func (c aeadCipher) Encrypt(out []byte, n uint64, ad, plaintext []byte) []byte {
	return c.aead.Seal(out, c.nonceBytes(n), plaintext, ad)
}

func (c aeadCipher) Decrypt(out []byte, n uint64, ad, ciphertext []byte) ([]byte, error) {
	return c.aead.Open(out, c.nonceBytes(n), ciphertext, ad)
}

// CipherChaChaPoly is the ChaCha20-Poly1305 AEAD cipher, with its nonce
// counter encoded little-endian as the Noise specification requires.
type CipherChaChaPoly struct{}

func (CipherChaChaPoly) CipherName() string { return "ChaChaPoly" }

func (CipherChaChaPoly) Cipher(key [32]byte) Cipher {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		// key is always exactly chacha20poly1305.KeySize bytes.
		panic(err)
	}
	return aeadCipher{aead: aead, littleEndian: true}
}

// CipherAESGCM is the AES-256-GCM AEAD cipher, with its nonce counter
// encoded big-endian as the Noise specification requires.
type CipherAESGCM struct{}

func (CipherAESGCM) CipherName() string { return "AESGCM" }

func (CipherAESGCM) Cipher(key [32]byte) Cipher {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		panic(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	return aeadCipher{aead: aead, littleEndian: false}
}
