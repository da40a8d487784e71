package noise

import (
	"crypto/rand"
	"io"
)

// HandshakeState drives a single Noise handshake: it owns the local
// static/ephemeral keypairs, the remote party's known public keys, the
// role, the pattern, and the current message index, and executes
// WriteMessage/ReadMessage by interpreting pattern tokens against its
// embedded SymmetricState. It must not be reused after Split.
type HandshakeState struct {
	ss              symmetricState
	s               DHKey
	e               DHKey
	rs              []byte
	re              []byte
	isInitiator     bool
	pattern         HandshakePattern
	messagePatterns [][]Token
	messageIndex    int
	psks            [][]byte
	pskCursor       int
	rng             io.Reader
}

// Config carries the parameters needed to initialize a HandshakeState.
// It is never modified and may be reused; a fixed ephemeral keypair for
// tests is passed to NewHandshakeStateForTesting separately. The
// HandshakeState shares StaticKeypair's private buffer, so
// HandshakeState.Destroy zeroes it.
type Config struct {
	// CipherSuite is the set of cryptographic primitives in use.
	CipherSuite CipherSuite

	// Random is the entropy source for ephemeral key generation. If nil,
	// crypto/rand.Reader is used.
	Random io.Reader

	// Pattern is the handshake pattern to execute.
	Pattern HandshakePattern

	// Initiator is true if this party sends the first handshake message.
	Initiator bool

	// Prologue is data both parties already agree on out of band; it
	// must be identical on both sides or the handshake will fail.
	Prologue []byte

	// StaticKeypair is this party's static keypair, required if the
	// pattern calls for it.
	StaticKeypair DHKey

	// PeerStatic is the remote party's static public key, required if
	// Pattern's pre-messages declare it known ahead of time.
	PeerStatic []byte

	// PeerEphemeral is the remote party's ephemeral public key, required
	// if Pattern's pre-messages declare it known ahead of time.
	PeerEphemeral []byte

	// PresharedKeys supplies the PSK values consumed, in order, by PSK
	// tokens in Pattern. Leave empty for patterns with no PSK tokens.
	PresharedKeys [][]byte
}

// NewHandshakeState constructs a HandshakeState for production use. A
// fresh ephemeral keypair is generated lazily, from Random, the first
// time the pattern calls for one. Use NewHandshakeStateForTesting to
// pre-supply a deterministic ephemeral for test vectors.
func NewHandshakeState(c Config) (*HandshakeState, error) {
	return newHandshakeState(c, DHKey{})
}

// NewHandshakeStateForTesting constructs a HandshakeState with a
// pre-supplied ephemeral keypair, bypassing random generation. This
// exists solely so deterministic test vectors can be reproduced; reusing
// an ephemeral keypair across more than one real handshake breaks the
// forward-secrecy guarantee Noise is built to provide, so production
// code must always call NewHandshakeState instead.
func NewHandshakeStateForTesting(c Config, fixedEphemeral DHKey) (*HandshakeState, error) {
	return newHandshakeState(c, fixedEphemeral)
}

func newHandshakeState(c Config, fixedEphemeral DHKey) (*HandshakeState, error) {
	hs := &HandshakeState{
		s:               c.StaticKeypair,
		e:               fixedEphemeral,
		isInitiator:     c.Initiator,
		pattern:         c.Pattern,
		messagePatterns: c.Pattern.Messages,
		rng:             c.Random,
		psks:            c.PresharedKeys,
	}
	if hs.rng == nil {
		hs.rng = rand.Reader
	}
	if len(c.PeerStatic) > 0 {
		hs.rs = append([]byte(nil), c.PeerStatic...)
	}
	if len(c.PeerEphemeral) > 0 {
		hs.re = append([]byte(nil), c.PeerEphemeral...)
	}
	hs.ss.cs = c.CipherSuite
	hs.ss.InitializeSymmetric(protocolName(c.Pattern, c.CipherSuite))
	hs.ss.MixHash(c.Prologue)

	if err := hs.mixPreMessages(); err != nil {
		return nil, err
	}
	return hs, nil
}

func protocolName(p HandshakePattern, cs CipherSuite) []byte {
	return append([]byte("Noise_"+p.Name+"_"), cs.Name()...)
}

func (s *HandshakeState) mixPreMessages() error {
	for _, t := range s.pattern.InitiatorPreMessages {
		pub, err := s.preMessageKey(t, s.isInitiator)
		if err != nil {
			return err
		}
		s.ss.MixHash(pub)
	}
	for _, t := range s.pattern.ResponderPreMessages {
		pub, err := s.preMessageKey(t, !s.isInitiator)
		if err != nil {
			return err
		}
		s.ss.MixHash(pub)
	}
	return nil
}

// preMessageKey resolves the public key bytes mixed in for a pre-message
// token, where ownedByUs indicates whether this party is the owner of
// that pre-message slot (true: use our own local key; false: use the
// remote key we were configured with).
func (s *HandshakeState) preMessageKey(t Token, ownedByUs bool) ([]byte, error) {
	switch t {
	case TokenS:
		if ownedByUs {
			if s.s.Public == nil {
				return nil, ErrMissingKey
			}
			return s.s.Public, nil
		}
		if s.rs == nil {
			return nil, ErrMissingKey
		}
		return s.rs, nil
	case TokenE:
		if ownedByUs {
			if s.e.Public == nil {
				return nil, ErrMissingKey
			}
			return s.e.Public, nil
		}
		if s.re == nil {
			return nil, ErrMissingKey
		}
		return s.re, nil
	default:
		return nil, ErrInvalidPattern
	}
}

func (s *HandshakeState) isMyTurn(forWrite bool) bool {
	evenTurn := s.messageIndex%2 == 0
	myTurn := evenTurn == s.isInitiator
	if !forWrite {
		myTurn = !myTurn
	}
	return myTurn
}

// WriteMessage appends a handshake message (pattern tokens followed by
// the encrypted payload) to out. If this call completes the handshake,
// it also returns the two transport CipherStates in the same order for
// both roles: the initiator sends with cs1 and receives with cs2, while
// the responder receives with cs1 and sends with cs2 (see Split).
func (s *HandshakeState) WriteMessage(out, payload []byte) ([]byte, *CipherState, *CipherState, error) {
	if s.messageIndex >= len(s.messagePatterns) {
		panic("noise: no handshake messages left")
	}
	if !s.isMyTurn(true) {
		panic("noise: WriteMessage called out of turn")
	}
	if len(payload) > MaxMsgLen {
		return nil, nil, nil, ErrMessageTooLong
	}

	for _, t := range s.messagePatterns[s.messageIndex] {
		var err error
		switch t {
		case TokenE:
			if s.e.Public == nil {
				kp, genErr := s.ss.cs.GenerateKeypair(s.rng)
				if genErr != nil {
					return nil, nil, nil, genErr
				}
				s.e = kp
			}
			out = append(out, s.e.Public...)
			s.ss.MixHash(s.e.Public)
			if s.usesPSK() {
				s.ss.MixKey(s.e.Public)
			}
		case TokenS:
			if s.s.Public == nil {
				return nil, nil, nil, ErrMissingKey
			}
			out, err = s.ss.EncryptAndHash(out, s.s.Public)
		case TokenEE:
			err = s.mixDH(s.e, s.re)
		case TokenES:
			if s.isInitiator {
				err = s.mixDH(s.e, s.rs)
			} else {
				err = s.mixDH(s.s, s.re)
			}
		case TokenSE:
			if s.isInitiator {
				err = s.mixDH(s.s, s.re)
			} else {
				err = s.mixDH(s.e, s.rs)
			}
		case TokenSS:
			err = s.mixDH(s.s, s.rs)
		case TokenPSK:
			if s.pskCursor >= len(s.psks) {
				return nil, nil, nil, ErrNoPSK
			}
			s.ss.MixKeyAndHash(s.psks[s.pskCursor])
			s.pskCursor++
		}
		if err != nil {
			return nil, nil, nil, err
		}
	}

	var err error
	out, err = s.ss.EncryptAndHash(out, payload)
	if err != nil {
		return nil, nil, nil, err
	}
	s.messageIndex++

	if s.messageIndex >= len(s.messagePatterns) {
		cs1, cs2 := s.ss.Split()
		return out, cs1, cs2, nil
	}
	return out, nil, nil, nil
}

// ReadMessage processes a received handshake message, appending the
// decrypted payload to out. Return semantics for the CipherState pair
// match WriteMessage.
func (s *HandshakeState) ReadMessage(out, message []byte) ([]byte, *CipherState, *CipherState, error) {
	if s.messageIndex >= len(s.messagePatterns) {
		panic("noise: no handshake messages left")
	}
	if !s.isMyTurn(false) {
		panic("noise: ReadMessage called out of turn")
	}

	dhLen := s.ss.cs.DHLen()
	for _, t := range s.messagePatterns[s.messageIndex] {
		var err error
		switch t {
		case TokenE:
			if len(message) < dhLen {
				return nil, nil, nil, ErrShortMessage
			}
			s.re = append(s.re[:0], message[:dhLen]...)
			message = message[dhLen:]
			s.ss.MixHash(s.re)
			if s.usesPSK() {
				s.ss.MixKey(s.re)
			}
		case TokenS:
			expected := dhLen
			if s.ss.HasKey() {
				expected += 16
			}
			if len(message) < expected {
				return nil, nil, nil, ErrShortMessage
			}
			var rs []byte
			rs, err = s.ss.DecryptAndHash(nil, message[:expected])
			if err == nil {
				s.rs = rs
			}
			message = message[expected:]
		case TokenEE:
			err = s.mixDH(s.e, s.re)
		case TokenES:
			if s.isInitiator {
				err = s.mixDH(s.e, s.rs)
			} else {
				err = s.mixDH(s.s, s.re)
			}
		case TokenSE:
			if s.isInitiator {
				err = s.mixDH(s.s, s.re)
			} else {
				err = s.mixDH(s.e, s.rs)
			}
		case TokenSS:
			err = s.mixDH(s.s, s.rs)
		case TokenPSK:
			if s.pskCursor >= len(s.psks) {
				return nil, nil, nil, ErrNoPSK
			}
			s.ss.MixKeyAndHash(s.psks[s.pskCursor])
			s.pskCursor++
		}
		if err != nil {
			return nil, nil, nil, err
		}
	}

	payload, err := s.ss.DecryptAndHash(out, message)
	if err != nil {
		return nil, nil, nil, err
	}
	s.messageIndex++

	if s.messageIndex >= len(s.messagePatterns) {
		cs1, cs2 := s.ss.Split()
		return payload, cs1, cs2, nil
	}
	return payload, nil, nil, nil
}

// IsHandshakeFinished reports whether every message pattern has been
// processed.
func (s *HandshakeState) IsHandshakeFinished() bool {
	return s.messageIndex == len(s.messagePatterns)
}

// GetHandshakeHash returns the current transcript hash.
func (s *HandshakeState) GetHandshakeHash() []byte {
	return s.ss.GetHandshakeHash()
}

// Split derives the pair of transport CipherStates once the handshake is
// finished. By convention the first returned CipherState is the
// initiator's send / responder's receive cipher, and the second is the
// initiator's receive / responder's send cipher; callers on each side
// index into the pair accordingly. It is an error to call Split before
// IsHandshakeFinished (WriteMessage/ReadMessage already return the pair
// automatically on the call that completes the handshake).
func (s *HandshakeState) Split() (*CipherState, *CipherState, error) {
	if !s.IsHandshakeFinished() {
		return nil, nil, ErrHandshakeNotFinished
	}
	cs1, cs2 := s.ss.Split()
	return cs1, cs2, nil
}

// Destroy zeroizes all sensitive material still held by the
// HandshakeState: local keypairs, the chaining key, and the embedded
// CipherState's key. Call it whenever a handshake is abandoned before
// completion.
func (s *HandshakeState) Destroy() {
	s.s.Zero()
	s.e.Zero()
	s.ss.Destroy()
}

func (s *HandshakeState) usesPSK() bool {
	return len(s.psks) > 0
}

func (s *HandshakeState) mixDH(local DHKey, remotePub []byte) error {
	if local.Private == nil || remotePub == nil {
		return ErrMissingKey
	}
	shared, err := s.ss.cs.DH(local.Private, remotePub)
	if err != nil {
		return ErrInvalidPublicKey
	}
	s.ss.MixKey(shared)
	return nil
}
