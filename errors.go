package noise

import "errors"

// ErrShortMessage is returned by ReadMessage if a message is not as long
// as the active token sequence requires.
var ErrShortMessage = errors.New("noise: message is too short")

// ErrDecryptionFailed is returned when a DecryptAndHash call fails AEAD
// tag verification. The handshake is unrecoverable once this occurs; the
// HandshakeState must be discarded.
var ErrDecryptionFailed = errors.New("noise: decryption failed")

// ErrAuthFailed is returned by CipherState.DecryptWithAd when AEAD tag
// verification fails on a keyed CipherState.
var ErrAuthFailed = errors.New("noise: authentication failed")

// ErrNonceExhausted is returned when a CipherState's nonce counter would
// reach the reserved sentinel value 2^64-1.
var ErrNonceExhausted = errors.New("noise: nonce counter exhausted")

// ErrMissingKey is returned when a pre-message, an "s" token or a DH token
// needs a key this party was not configured with or has not yet received,
// for example a static keypair or peer static key the pattern relies on.
var ErrMissingKey = errors.New("noise: required key is missing")

// ErrInvalidPublicKey is returned when a DH operation rejects a peer
// public key (for example a low-order point).
var ErrInvalidPublicKey = errors.New("noise: invalid public key")

// ErrMessageTooLong is returned when a handshake payload exceeds MaxMsgLen.
var ErrMessageTooLong = errors.New("noise: message is too long")

// ErrHandshakeNotFinished is returned by Split when called before the
// handshake pattern's message list has been fully processed.
var ErrHandshakeNotFinished = errors.New("noise: handshake is not finished")

// ErrInvalidPattern is returned by NewHandshakeState when a pattern's
// pre-message holds a token other than "e" or "s". Pattern-table
// validation (validatePattern, WithPSK) reports its own descriptive errors
// instead of this value.
var ErrInvalidPattern = errors.New("noise: invalid handshake pattern")

// ErrNoPSK is returned when a pattern containing a PSK token is used
// without configuring a pre-shared key.
var ErrNoPSK = errors.New("noise: pattern requires a pre-shared key")
