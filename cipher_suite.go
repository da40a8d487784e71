package noise

import (
	"hash"
	"io"
)

// DHKey is a Diffie-Hellman keypair. Private is sensitive key material
// and must be zeroized with Zero once the pair is no longer needed.
type DHKey struct {
	Private *Sensitive
	Public  []byte
}

// Zero zeroizes the private half of the keypair.
func (k DHKey) Zero() {
	k.Private.Zero()
}

// DHFunc is a Diffie-Hellman function, e.g. X25519.
type DHFunc interface {
	// GenerateKeypair generates a new keypair using random as a source of
	// entropy.
	GenerateKeypair(random io.Reader) (DHKey, error)

	// DH performs a Diffie-Hellman calculation between the provided
	// private and public keys and returns the result.
	DH(privkey *Sensitive, pubkey []byte) ([]byte, error)

	// DHLen is the number of bytes returned by DH and the size of a
	// public key for this DHFunc.
	DHLen() int

	// DHName is the name of the DHFunc, used in the handshake protocol
	// name (e.g. "25519").
	DHName() string
}

// EllipticDH is an optional capability on a DHFunc: generation and
// consumption of Elligator2-encoded public key representatives, which
// are indistinguishable from uniform random bytes on the wire.
type EllipticDH interface {
	DHFunc

	// GenerateKeypairElligator generates a keypair along with an
	// Elligator2 representative of the public key, retrying internally
	// until a representable keypair is found.
	GenerateKeypairElligator(random io.Reader) (DHKey, []byte, error)

	// DHElligator performs DH using a peer public key supplied as an
	// Elligator2 representative rather than a raw point.
	DHElligator(privkey *Sensitive, peerRepresentative []byte) ([]byte, error)
}

// CipherFunc is an AEAD cipher function, e.g. AESGCM or ChaChaPoly.
type CipherFunc interface {
	// Cipher initializes a Cipher for a given 256-bit key.
	Cipher(k [32]byte) Cipher

	// CipherName is the name of the CipherFunc, used in the handshake
	// protocol name (e.g. "ChaChaPoly").
	CipherName() string
}

// Cipher encrypts and decrypts using a single fixed key.
type Cipher interface {
	// Encrypt encrypts the plaintext and appends the result, including a
	// 16-byte authentication tag, to out.
	Encrypt(out []byte, n uint64, ad, plaintext []byte) []byte

	// Decrypt checks the authenticity of ad and ciphertext and then
	// decrypts and appends the plaintext to out.
	Decrypt(out []byte, n uint64, ad, ciphertext []byte) ([]byte, error)
}

// HashFunc is a cryptographic hash function, e.g. SHA256 or BLAKE2b.
type HashFunc interface {
	// Hash returns a new hash.Hash computing this function's digest.
	Hash() hash.Hash

	// HashName is the name of the HashFunc, used in the handshake
	// protocol name (e.g. "SHA256").
	HashName() string
}

// CipherSuite groups a DHFunc, CipherFunc and HashFunc into the three
// capability contracts a HandshakeState needs, plus the combined
// protocol name fragment.
type CipherSuite interface {
	GenerateKeypair(random io.Reader) (DHKey, error)
	DH(privkey *Sensitive, pubkey []byte) ([]byte, error)
	DHLen() int
	Cipher(k [32]byte) Cipher
	Hash() hash.Hash
	Name() []byte
}

type cipherSuite struct {
	dh     DHFunc
	cipher CipherFunc
	hash   HashFunc
}

// NewCipherSuite returns a new CipherSuite combining the given DHFunc,
// CipherFunc and HashFunc.
func NewCipherSuite(dh DHFunc, cipher CipherFunc, hash HashFunc) CipherSuite {
	return cipherSuite{dh: dh, cipher: cipher, hash: hash}
}

func (c cipherSuite) GenerateKeypair(random io.Reader) (DHKey, error) {
	return c.dh.GenerateKeypair(random)
}

func (c cipherSuite) DH(privkey *Sensitive, pubkey []byte) ([]byte, error) {
	return c.dh.DH(privkey, pubkey)
}

func (c cipherSuite) DHLen() int { return c.dh.DHLen() }

func (c cipherSuite) Cipher(k [32]byte) Cipher { return c.cipher.Cipher(k) }

func (c cipherSuite) Hash() hash.Hash { return c.hash.Hash() }

func (c cipherSuite) Name() []byte {
	return []byte(c.dh.DHName() + "_" + c.cipher.CipherName() + "_" + c.hash.HashName())
}
