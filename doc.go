// Package noise implements the Noise Protocol Framework handshake state
// machine: the DH/Cipher/Hash capability contracts, CipherState,
// SymmetricState, the handshake pattern interpreter, and the
// post-handshake split into a pair of transport CipherStates.
//
// Noise is a low-level framework for building crypto protocols. Noise
// protocols support mutual and optional authentication, identity hiding,
// forward secrecy, zero round-trip encryption, and other advanced
// features. For more details, visit http://noiseprotocol.org.
//
// Concrete primitive adapters (X25519, AES-256-GCM, ChaCha20-Poly1305,
// SHA-256/512, BLAKE2s/b) are provided so the state machine can be
// exercised and tested, but HandshakeState itself only ever depends on
// the DH, Cipher and Hash interfaces.
package noise
