package noise

import "fmt"

// Token is a single atomic operation within a handshake message pattern.
type Token int

const (
	TokenE Token = iota
	TokenS
	TokenEE
	TokenES
	TokenSE
	TokenSS
	TokenPSK
)

func (t Token) String() string {
	switch t {
	case TokenE:
		return "e"
	case TokenS:
		return "s"
	case TokenEE:
		return "ee"
	case TokenES:
		return "es"
	case TokenSE:
		return "se"
	case TokenSS:
		return "ss"
	case TokenPSK:
		return "psk"
	default:
		return "?"
	}
}

// MaxMsgLen is the maximum payload length WriteMessage accepts for a
// single handshake message. The key and tag bytes written ahead of and
// after the payload are not counted against it.
const MaxMsgLen = 65535

// HandshakePattern is a named, static description of a Noise handshake:
// the pre-messages each side is assumed to already know, and the ordered
// list of message patterns exchanged once the handshake begins. Message
// i is sent by the initiator iff i is even.
type HandshakePattern struct {
	Name                 string
	InitiatorPreMessages []Token
	ResponderPreMessages []Token
	Messages             [][]Token
}

func pat(name string, initPre, respPre []Token, messages ...[]Token) HandshakePattern {
	return HandshakePattern{
		Name:                 name,
		InitiatorPreMessages: initPre,
		ResponderPreMessages: respPre,
		Messages:             messages,
	}
}

// One-way patterns: only the initiator ever sends. N has no static
// authentication of the initiator; K assumes both statics are known
// ahead of time; X transmits the initiator's static in the one message.
var (
	HandshakeN = pat("N", nil, []Token{TokenS},
		[]Token{TokenE, TokenES},
	)
	HandshakeK = pat("K", []Token{TokenS}, []Token{TokenS},
		[]Token{TokenE, TokenES, TokenSS},
	)
	HandshakeX = pat("X", nil, []Token{TokenS},
		[]Token{TokenE, TokenES, TokenS, TokenSS},
	)
)

// Interactive patterns, per the Noise Protocol Framework specification
// section 7.4/7.5. The first letter describes the initiator's static
// key: N (none), K (known to responder ahead of time), X (transmitted),
// I (transmitted in the first message). The second letter describes the
// same for the responder's static key.
var (
	HandshakeNN = pat("NN", nil, nil,
		[]Token{TokenE},
		[]Token{TokenE, TokenEE},
	)
	HandshakeNK = pat("NK", nil, []Token{TokenS},
		[]Token{TokenE, TokenES},
		[]Token{TokenE, TokenEE},
	)
	HandshakeNX = pat("NX", nil, nil,
		[]Token{TokenE},
		[]Token{TokenE, TokenEE, TokenS, TokenES},
	)
	HandshakeXN = pat("XN", nil, nil,
		[]Token{TokenE},
		[]Token{TokenE, TokenEE},
		[]Token{TokenS, TokenSE},
	)
	HandshakeXK = pat("XK", nil, []Token{TokenS},
		[]Token{TokenE, TokenES},
		[]Token{TokenE, TokenEE},
		[]Token{TokenS, TokenSE},
	)
	HandshakeXX = pat("XX", nil, nil,
		[]Token{TokenE},
		[]Token{TokenE, TokenEE, TokenS, TokenES},
		[]Token{TokenS, TokenSE},
	)
	HandshakeKN = pat("KN", []Token{TokenS}, nil,
		[]Token{TokenE},
		[]Token{TokenE, TokenEE, TokenSE},
	)
	HandshakeKK = pat("KK", []Token{TokenS}, []Token{TokenS},
		[]Token{TokenE, TokenES, TokenSS},
		[]Token{TokenE, TokenEE, TokenSE},
	)
	HandshakeKX = pat("KX", []Token{TokenS}, nil,
		[]Token{TokenE},
		[]Token{TokenE, TokenEE, TokenSE, TokenS, TokenES},
	)
	HandshakeIN = pat("IN", nil, nil,
		[]Token{TokenE, TokenS},
		[]Token{TokenE, TokenEE, TokenSE},
	)
	HandshakeIK = pat("IK", nil, []Token{TokenS},
		[]Token{TokenE, TokenES, TokenS, TokenSS},
		[]Token{TokenE, TokenEE, TokenSE},
	)
	HandshakeIX = pat("IX", nil, nil,
		[]Token{TokenE, TokenS},
		[]Token{TokenE, TokenEE, TokenSE, TokenS, TokenES},
	)
)

// HandshakeXR is a static-responder variant of X extended with a
// responder confirmation message: the initiator's identity and the
// shared secret are established in the first message exactly as in X
// (the responder's static is a pre-message), and the responder replies
// with a fresh ephemeral to complete a second DH and confirm liveness.
// This is not one of the canonical two-letter patterns in the Noise
// specification's pattern grid; see DESIGN.md for the rationale.
var HandshakeXR = pat("XR", nil, []Token{TokenS},
	[]Token{TokenE, TokenES, TokenS, TokenSS},
	[]Token{TokenE, TokenEE},
)

// AllPatterns lists every handshake pattern this package ships, keyed by
// name, for lookup and for pattern-table validation at init time.
var AllPatterns = map[string]HandshakePattern{
	"N": HandshakeN, "K": HandshakeK, "X": HandshakeX,
	"NN": HandshakeNN, "NK": HandshakeNK, "NX": HandshakeNX,
	"XN": HandshakeXN, "XK": HandshakeXK, "XX": HandshakeXX, "XR": HandshakeXR,
	"KN": HandshakeKN, "KK": HandshakeKK, "KX": HandshakeKX,
	"IN": HandshakeIN, "IK": HandshakeIK, "IX": HandshakeIX,
}

func init() {
	for name, p := range AllPatterns {
		if err := validatePattern(p); err != nil {
			panic(fmt.Sprintf("noise: invalid built-in pattern %s: %v", name, err))
		}
	}
}

// roleKnowledge tracks, from one role's point of view, which keys are
// available to it as the pattern is replayed in order.
type roleKnowledge struct {
	haveE, haveS, haveRE, haveRS bool
}

// validatePattern checks that no DH token in p is ever reached by a role
// that does not yet possess the keys it needs, i.e. that the pattern is
// well-formed independent of which concrete keys are supplied at
// runtime.
func validatePattern(p HandshakePattern) error {
	initiator := &roleKnowledge{}
	responder := &roleKnowledge{}

	for _, t := range p.InitiatorPreMessages {
		switch t {
		case TokenE:
			initiator.haveE = true
			responder.haveRE = true
		case TokenS:
			initiator.haveS = true
			responder.haveRS = true
		default:
			return fmt.Errorf("%s: non-key token in initiator pre-message", p.Name)
		}
	}
	for _, t := range p.ResponderPreMessages {
		switch t {
		case TokenE:
			responder.haveE = true
			initiator.haveRE = true
		case TokenS:
			responder.haveS = true
			initiator.haveRS = true
		default:
			return fmt.Errorf("%s: non-key token in responder pre-message", p.Name)
		}
	}

	for i, msg := range p.Messages {
		sender, receiver := initiator, responder
		senderIsInitiator := i%2 == 0
		if !senderIsInitiator {
			sender, receiver = responder, initiator
		}
		for _, t := range msg {
			switch t {
			case TokenE:
				sender.haveE = true
			case TokenS:
				// S may be the first declaration of the sender's static
				// identity; local possession of a configured static
				// keypair is a runtime precondition checked by
				// HandshakeState, not a pattern-shape fact.
				sender.haveS = true
			case TokenEE:
				if !sender.haveE || !sender.haveRE {
					return fmt.Errorf("%s: message %d: ee before both e tokens", p.Name, i)
				}
			case TokenES:
				if senderIsInitiator {
					if !sender.haveE || !sender.haveRS {
						return fmt.Errorf("%s: message %d: es requires e and rs", p.Name, i)
					}
				} else {
					if !sender.haveS || !sender.haveRE {
						return fmt.Errorf("%s: message %d: es requires s and re", p.Name, i)
					}
				}
			case TokenSE:
				if senderIsInitiator {
					if !sender.haveS || !sender.haveRE {
						return fmt.Errorf("%s: message %d: se requires s and re", p.Name, i)
					}
				} else {
					if !sender.haveE || !sender.haveRS {
						return fmt.Errorf("%s: message %d: se requires e and rs", p.Name, i)
					}
				}
			case TokenSS:
				if !sender.haveS || !sender.haveRS {
					return fmt.Errorf("%s: message %d: ss requires s and rs", p.Name, i)
				}
			case TokenPSK:
				// PSK mixes a caller-supplied secret; it never depends on
				// DH key possession.
			default:
				return fmt.Errorf("%s: message %d: unknown token", p.Name, i)
			}
		}
		// Keys transmitted in this message become known to the peer
		// starting with the next message.
		for _, t := range msg {
			switch t {
			case TokenE:
				receiver.haveRE = true
			case TokenS:
				receiver.haveRS = true
			}
		}
	}
	return nil
}

// NeedsLocalStatic reports whether p contains an "s" token anywhere, in a
// pre-message or a message, meaning at least one of the two roles needs a
// static keypair. It does not say which role needs it.
func (p HandshakePattern) NeedsLocalStatic() bool {
	for _, t := range p.InitiatorPreMessages {
		if t == TokenS {
			return true
		}
	}
	for _, t := range p.ResponderPreMessages {
		if t == TokenS {
			return true
		}
	}
	for _, msg := range p.Messages {
		for _, t := range msg {
			if t == TokenS {
				return true
			}
		}
	}
	return false
}

// PSKPosition names where a PSK token is inserted by WithPSK, following
// the Noise specification's psk0..pskN naming: psk0 prefixes the first
// message, pskN (N>=1) is appended to the end of message N-1.
type PSKPosition int

// WithPSK returns a copy of base with a PSK token inserted at each given
// position. Position 0 prefixes message 0; position n>=1 appends to the
// end of message n-1. The returned pattern is validated before being
// returned; passing a position beyond the message list is an error.
func WithPSK(base HandshakePattern, positions ...PSKPosition) (HandshakePattern, error) {
	out := HandshakePattern{
		Name:                 base.Name,
		InitiatorPreMessages: base.InitiatorPreMessages,
		ResponderPreMessages: base.ResponderPreMessages,
		Messages:             make([][]Token, len(base.Messages)),
	}
	for i, m := range base.Messages {
		cp := make([]Token, len(m))
		copy(cp, m)
		out.Messages[i] = cp
	}
	for _, pos := range positions {
		if pos == 0 {
			out.Messages[0] = append([]Token{TokenPSK}, out.Messages[0]...)
			out.Name += "psk0"
			continue
		}
		idx := int(pos) - 1
		if idx < 0 || idx >= len(out.Messages) {
			return HandshakePattern{}, fmt.Errorf("noise: psk position %d out of range for pattern %s", pos, base.Name)
		}
		out.Messages[idx] = append(out.Messages[idx], TokenPSK)
		out.Name += fmt.Sprintf("psk%d", pos)
	}
	if err := validatePattern(out); err != nil {
		return HandshakePattern{}, err
	}
	return out, nil
}
