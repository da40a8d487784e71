package noise

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
)

// HashSHA256 is the SHA-256 hash function.
type HashSHA256 struct{}

func (HashSHA256) HashName() string { return "SHA256" }
func (HashSHA256) Hash() hash.Hash  { return sha256.New() }

// HashSHA512 is the SHA-512 hash function.
type HashSHA512 struct{}

func (HashSHA512) HashName() string { return "SHA512" }
func (HashSHA512) Hash() hash.Hash  { return sha512.New() }

// HashBLAKE2s is the BLAKE2s hash function, with a 32-byte digest.
type HashBLAKE2s struct{}

func (HashBLAKE2s) HashName() string { return "BLAKE2s" }
func (HashBLAKE2s) Hash() hash.Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		// blake2s.New256 only errors on a too-long key, and nil never is.
		panic(err)
	}
	return h
}

// HashBLAKE2b is the BLAKE2b hash function, with a 64-byte digest.
type HashBLAKE2b struct{}

func (HashBLAKE2b) HashName() string { return "BLAKE2b" }
func (HashBLAKE2b) Hash() hash.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err)
	}
	return h
}
